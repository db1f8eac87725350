package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/facet-erp/facet-erp/internal/app"
	"github.com/facet-erp/facet-erp/internal/document"
	"github.com/facet-erp/facet-erp/internal/document/render"
	"github.com/facet-erp/facet-erp/internal/inventory"
	"github.com/facet-erp/facet-erp/internal/platform/cache"
	"github.com/facet-erp/facet-erp/internal/platform/db"
	"github.com/facet-erp/facet-erp/internal/recipients"
	"github.com/facet-erp/facet-erp/jobs"
)

// artifactBackend adapts a render.Backend to the flat byte surface the
// document render job consumes.
type artifactBackend struct {
	backend render.Backend
}

func (a artifactBackend) Name() string { return a.backend.Name() }

func (a artifactBackend) Render(ctx context.Context, snap document.Snapshot) ([]byte, string, error) {
	art, err := a.backend.Render(ctx, snap)
	if err != nil {
		return nil, "", err
	}
	return art.Data, art.Filename, nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, inventory cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	renderCfg := render.DefaultConfig()
	renderCfg.AssetDir = cfg.AssetDir

	htmlBackend, err := render.NewHTMLBackend(renderCfg)
	if err != nil {
		logger.Error("init html renderer", slog.Any("error", err))
		os.Exit(1)
	}
	chromiumBackend := render.NewHeadlessBackend(htmlBackend, &render.ChromiumConverter{
		ExecPath: cfg.ChromiumPath,
		Timeout:  cfg.PDFTimeout,
	})
	gotenbergBackend := render.NewHeadlessBackend(htmlBackend, render.NewGotenbergConverter(cfg.GotenbergURL))
	drawBackend := render.NewDirectDrawBackend(renderCfg)
	backends := map[string]document.RenderBackend{
		chromiumBackend.Name():  artifactBackend{backend: chromiumBackend},
		gotenbergBackend.Name(): artifactBackend{backend: gotenbergBackend},
		drawBackend.Name():      artifactBackend{backend: drawBackend},
	}

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	recipientRepo := recipients.NewRepository(pool)
	recipientService := recipients.NewService(recipientRepo, logger)

	documentRepo := document.NewRepository(pool)
	documentService := document.NewService(documentRepo, recipients.NewResolver(recipientService), logger)

	renderJob := document.NewRenderJob(document.RenderJobConfig{
		Service:        documentService,
		Backends:       backends,
		DefaultBackend: cfg.PDFBackend,
		StorageDir:     cfg.DocStorageDir,
		Jobs:           jobsClient,
		Logger:         logger,
	})

	mailer := jobs.NewSMTPMailer(cfg.SMTPAddr(), cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, logger)
	sendEmailHandler := jobs.NewSendEmailHandler(mailer, logger)

	var inventoryCache *inventory.Cache
	if redisClient != nil {
		inventoryCache = inventory.NewCache(redisClient, cfg.InventoryCacheTTL)
	}
	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, inventoryCache, logger)
	warmupHandler := func(ctx context.Context, task *asynq.Task) error {
		return inventoryService.WarmSearchCache(ctx)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeDocumentRender, Handler: renderJob.Handle},
			{Type: jobs.TaskTypeSendEmail, Handler: sendEmailHandler},
			{Type: jobs.TaskTypeInventoryWarmup, Handler: warmupHandler},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: jobs.NewInventoryWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

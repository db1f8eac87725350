package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/facet-erp/facet-erp/internal/app"
	"github.com/facet-erp/facet-erp/internal/cards"
	"github.com/facet-erp/facet-erp/internal/document"
	documenthttp "github.com/facet-erp/facet-erp/internal/document/http"
	"github.com/facet-erp/facet-erp/internal/document/render"
	"github.com/facet-erp/facet-erp/internal/inventory"
	"github.com/facet-erp/facet-erp/internal/observability"
	"github.com/facet-erp/facet-erp/internal/platform/cache"
	"github.com/facet-erp/facet-erp/internal/platform/db"
	"github.com/facet-erp/facet-erp/internal/recipients"
	"github.com/facet-erp/facet-erp/internal/sales"
	"github.com/facet-erp/facet-erp/internal/vendors"
	"github.com/facet-erp/facet-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	pdfBackends := map[string]render.Backend{
		chromiumBackend.Name():  chromiumBackend,
		gotenbergBackend.Name(): gotenbergBackend,
		drawBackend.Name():      drawBackend,
	}
	if _, ok := pdfBackends[cfg.PDFBackend]; !ok {
		logger.Error("unknown pdf backend", slog.String("backend", cfg.PDFBackend))
		os.Exit(1)
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

	metrics := observability.NewMetrics()

	recipientRepo := recipients.NewRepository(pool)
	recipientService := recipients.NewService(recipientRepo, logger)
	recipientHandler := recipients.NewHandler(logger, recipientService)

	documentRepo := document.NewRepository(pool)
	documentService := document.NewService(documentRepo, recipients.NewResolver(recipientService), logger)
	documentHandler := documenthttp.NewHandler(logger, documentService, htmlBackend, pdfBackends, cfg.PDFBackend, jobsClient, metrics)

	var inventoryCache *inventory.Cache
	if redisClient != nil {
		inventoryCache = inventory.NewCache(redisClient, cfg.InventoryCacheTTL)
	}
	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, inventoryCache, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, logger)
	salesHandler := sales.NewHandler(logger, salesService)

	vendorRepo := vendors.NewRepository(pool)
	vendorService := vendors.NewService(vendorRepo, logger)
	vendorHandler := vendors.NewHandler(logger, vendorService)

	cardRepo := cards.NewRepository(pool)
	cardService := cards.NewService(cardRepo, logger)
	cardHandler := cards.NewHandler(logger, cardService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DocumentHandler:  documentHandler,
		RecipientHandler: recipientHandler,
		InventoryHandler: inventoryHandler,
		SalesHandler:     salesHandler,
		VendorHandler:    vendorHandler,
		CardHandler:      cardHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

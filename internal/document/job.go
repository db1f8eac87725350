package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/facet-erp/facet-erp/jobs"
)

// RenderBackend is the slice of the render surface the job needs. Keeps the
// worker wiring free of a render package import cycle.
type RenderBackend interface {
	Name() string
	Render(ctx context.Context, snap Snapshot) ([]byte, string, error)
}

// RenderJobConfig wires dependencies required by the worker job.
type RenderJobConfig struct {
	Service        *Service
	Backends       map[string]RenderBackend
	DefaultBackend string
	StorageDir     string
	Jobs           *jobs.Client
	Logger         *slog.Logger
}

// RenderJob renders a document PDF on the worker and hands the file to the
// mailer queue.
type RenderJob struct {
	service        *Service
	backends       map[string]RenderBackend
	defaultBackend string
	storageDir     string
	jobs           *jobs.Client
	logger         *slog.Logger
}

// NewRenderJob constructs a RenderJob handler.
func NewRenderJob(cfg RenderJobConfig) *RenderJob {
	return &RenderJob{
		service:        cfg.Service,
		backends:       cfg.Backends,
		defaultBackend: cfg.DefaultBackend,
		storageDir:     cfg.StorageDir,
		jobs:           cfg.Jobs,
		logger:         cfg.Logger,
	}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *RenderJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.service == nil || len(j.backends) == 0 {
		return fmt.Errorf("document render job not configured")
	}
	var payload jobs.DocumentRenderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.DocumentID == 0 || payload.Email == "" {
		return asynq.SkipRetry
	}

	rec, err := j.service.GetDocument(ctx, payload.DocumentID)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return asynq.SkipRetry
		}
		return err
	}

	name := payload.Backend
	if name == "" {
		name = j.defaultBackend
	}
	backend, ok := j.backends[name]
	if !ok {
		return asynq.SkipRetry
	}

	pdf, filename, err := backend.Render(ctx, rec.Snapshot)
	if err != nil {
		return err
	}
	path, attachName, err := j.save(filename, pdf)
	if err != nil {
		return err
	}

	number := rec.Snapshot.Header.Number
	if _, err := j.jobs.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:             payload.Email,
		Subject:        fmt.Sprintf("%s %s from Facet Diamonds", rec.Snapshot.Kind.Title(), number),
		Body:           fmt.Sprintf("Please find %s %s attached.", strings.ToLower(rec.Snapshot.Kind.Title()), number),
		AttachmentPath: path,
		AttachmentName: attachName,
	}); err != nil {
		return err
	}

	j.logger.Info("document rendered",
		slog.Int64("document_id", rec.ID),
		slog.String("backend", backend.Name()),
		slog.String("file", path))
	return nil
}

func (j *RenderJob) save(filename string, pdf []byte) (string, string, error) {
	dir := j.storageDir
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "facet-documents")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	safe := safeFileName(filename)
	// The uuid prefix keeps concurrent renders of the same document from
	// clobbering each other.
	path := filepath.Join(dir, uuid.NewString()+"-"+safe)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", "", err
	}
	return path, safe, nil
}

// safeFileName strips path separators from a render filename. Invoice numbers
// contain a slash, so the stored name has to be flattened.
func safeFileName(filename string) string {
	return strings.NewReplacer("/", "-", "\\", "-").Replace(filename)
}

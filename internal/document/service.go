package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/facet-erp/facet-erp/internal/platform/httpx"
)

// ErrDocumentNotFound indicates the requested document does not exist.
var ErrDocumentNotFound = fmt.Errorf("document: %w", httpx.ErrNotFound)

// ErrNumberConflict indicates a concurrent issuance raced the same document
// number. The repository returns it on a unique-constraint violation.
var ErrNumberConflict = fmt.Errorf("document: number already issued: %w", httpx.ErrDuplicate)

// Record is a persisted document with its identity and audit fields.
type Record struct {
	ID          int64
	RecipientID int64
	Snapshot    Snapshot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LineItemInput carries one line of a create request.
type LineItemInput struct {
	Description   string
	Carat         decimal.Decimal
	Color         string
	Clarity       string
	Lab           string
	ReportNo      string
	PricePerCarat decimal.Decimal
}

// CreateDocumentInput carries a create request. The number is always
// generated server-side.
type CreateDocumentInput struct {
	Kind             Kind
	Date             time.Time
	DueDate          time.Time
	PaymentTermsDays int
	RecipientID      int64
	Description      string
	ShipmentCost     decimal.Decimal
	Discount         decimal.Decimal
	CollectedPayment decimal.Decimal
	Items            []LineItemInput
}

// ListDocumentsRequest filters document listings.
type ListDocumentsRequest struct {
	Kind   Kind
	Limit  int
	Offset int
}

// RepositoryPort defines the persistence surface the service needs.
type RepositoryPort interface {
	CreateDocument(ctx context.Context, rec Record) (*Record, error)
	GetDocument(ctx context.Context, id int64) (*Record, error)
	ListDocuments(ctx context.Context, req ListDocumentsRequest) ([]Record, error)
	LastNumber(ctx context.Context, kind Kind) (string, error)
}

// RecipientResolver resolves the bill-to profile referenced by a header.
type RecipientResolver interface {
	Resolve(ctx context.Context, id int64) (*Recipient, error)
}

// Service owns document creation and retrieval.
type Service struct {
	repo       RepositoryPort
	recipients RecipientResolver
	logger     *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, recipients RecipientResolver, logger *slog.Logger) *Service {
	return &Service{repo: repo, recipients: recipients, logger: logger}
}

// CreateDocument generates the next number, validates the snapshot at the
// model boundary and persists it. A lost number race is retried once against
// the freshly re-read last number; the database unique constraint stays the
// source of truth.
func (s *Service) CreateDocument(ctx context.Context, input CreateDocumentInput) (*Record, error) {
	if input.RecipientID == 0 {
		return nil, &ValidationError{Field: "recipient_id", Reason: "required"}
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	if input.PaymentTermsDays == 0 {
		input.PaymentTermsDays = 30
	}

	items := make([]LineItem, 0, len(input.Items))
	for _, in := range input.Items {
		items = append(items, LineItem{
			Description:   in.Description,
			Carat:         in.Carat,
			Color:         in.Color,
			Clarity:       in.Clarity,
			Lab:           in.Lab,
			ReportNo:      in.ReportNo,
			PricePerCarat: in.PricePerCarat,
		})
	}

	for attempt := 0; ; attempt++ {
		last, err := s.repo.LastNumber(ctx, input.Kind)
		if err != nil {
			return nil, err
		}
		number, err := NextNumber(input.Kind, last, input.Date)
		if err != nil {
			return nil, err
		}

		snap := Snapshot{
			Kind: input.Kind,
			Header: Header{
				Number:           number,
				Date:             input.Date,
				DueDate:          input.DueDate,
				PaymentTermsDays: input.PaymentTermsDays,
				Description:      input.Description,
				ShipmentCost:     input.ShipmentCost,
				Discount:         input.Discount,
				CollectedPayment: input.CollectedPayment,
			},
			Items: items,
		}
		if err := snap.Validate(); err != nil {
			return nil, err
		}

		rec, err := s.repo.CreateDocument(ctx, Record{RecipientID: input.RecipientID, Snapshot: snap})
		if errors.Is(err, ErrNumberConflict) && attempt == 0 {
			s.logger.Warn("document number conflict, retrying", slog.String("number", number))
			continue
		}
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
}

// GetDocument loads a record and resolves its recipient. A failed lookup
// leaves the recipient nil so renderers show the "not available" block
// instead of omitting it.
func (s *Service) GetDocument(ctx context.Context, id int64) (*Record, error) {
	rec, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	recipient, err := s.recipients.Resolve(ctx, rec.RecipientID)
	if err != nil {
		s.logger.Warn("resolve recipient",
			slog.Int64("document_id", id),
			slog.Int64("recipient_id", rec.RecipientID),
			slog.Any("error", err))
	} else {
		rec.Snapshot.Header.Recipient = recipient
	}
	return rec, nil
}

// ListDocuments returns documents matching the request.
func (s *Service) ListDocuments(ctx context.Context, req ListDocumentsRequest) ([]Record, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}
	return s.repo.ListDocuments(ctx, req)
}

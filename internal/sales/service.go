package sales

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// RepositoryPort defines the persistence surface the service needs.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateSaleInput) (*Sale, error)
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, req ListSalesRequest) ([]Sale, error)
}

// Service owns sale recording and roll-ups.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates and stores a new sale.
func (s *Service) Create(ctx context.Context, input CreateSaleInput) (*Sale, error) {
	input.BuyerName = strings.TrimSpace(input.BuyerName)
	if input.BuyerName == "" {
		return nil, ErrInvalidSale
	}
	if input.SaleAmount.Sign() <= 0 {
		return nil, ErrInvalidSale
	}
	if input.CostAmount.Sign() < 0 || input.ShippingCost.Sign() < 0 || input.GSTAmount.Sign() < 0 {
		return nil, ErrInvalidSale
	}
	if input.SaleDate.IsZero() {
		input.SaleDate = time.Now()
	}
	return s.repo.Create(ctx, input)
}

// Get loads one sale.
func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.Get(ctx, id)
}

// List returns sales in the range, newest first.
func (s *Service) List(ctx context.Context, req ListSalesRequest) ([]Sale, error) {
	if req.Limit <= 0 || req.Limit > 1000 {
		req.Limit = 200
	}
	return s.repo.List(ctx, req)
}

// MonthlySummary rolls up one calendar month.
func (s *Service) MonthlySummary(ctx context.Context, year int, month time.Month) (Summary, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return s.RangeSummary(ctx, from, to)
}

// RangeSummary rolls up an arbitrary [from, to) range.
func (s *Service) RangeSummary(ctx context.Context, from, to time.Time) (Summary, error) {
	sales, err := s.repo.List(ctx, ListSalesRequest{From: from, To: to, Limit: 10000})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(from, to, sales), nil
}

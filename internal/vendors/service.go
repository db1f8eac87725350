package vendors

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RepositoryPort defines the persistence surface the service needs.
type RepositoryPort interface {
	CreatePurchase(ctx context.Context, input CreatePurchaseInput) (*Purchase, error)
	GetPurchase(ctx context.Context, id int64) (*Purchase, error)
	ListPurchases(ctx context.Context, vendor string, limit, offset int) ([]Purchase, error)
	SetPaid(ctx context.Context, id int64, paid bool) error
	CreatePayment(ctx context.Context, input RecordPaymentInput) (*Payment, error)
	SumPayments(ctx context.Context, purchaseID int64) (decimal.Decimal, error)
	ListPayments(ctx context.Context, purchaseID int64) ([]Payment, error)
	OutstandingByVendor(ctx context.Context) ([]Balance, error)
}

// Service owns purchase and payment recording.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreatePurchase validates and stores a new supplier invoice.
func (s *Service) CreatePurchase(ctx context.Context, input CreatePurchaseInput) (*Purchase, error) {
	input.VendorName = strings.TrimSpace(input.VendorName)
	if input.VendorName == "" || input.Amount.Sign() <= 0 {
		return nil, ErrInvalidPurchase
	}
	if input.PurchaseDate.IsZero() {
		input.PurchaseDate = time.Now()
	}
	return s.repo.CreatePurchase(ctx, input)
}

// GetPurchase loads one purchase with its payments.
func (s *Service) GetPurchase(ctx context.Context, id int64) (*Purchase, []Payment, error) {
	purchase, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.repo.ListPayments(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return purchase, payments, nil
}

// ListPurchases returns purchases, optionally filtered by vendor name.
func (s *Service) ListPurchases(ctx context.Context, vendor string, limit, offset int) ([]Purchase, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListPurchases(ctx, strings.TrimSpace(vendor), limit, offset)
}

// RecordPayment stores a remittance and flips the purchase to paid when the
// payments cover the full amount.
func (s *Service) RecordPayment(ctx context.Context, input RecordPaymentInput) (*Payment, error) {
	if input.PurchaseID == 0 || input.Amount.Sign() <= 0 {
		return nil, ErrInvalidPayment
	}
	purchase, err := s.repo.GetPurchase(ctx, input.PurchaseID)
	if err != nil {
		return nil, err
	}
	paid, err := s.repo.SumPayments(ctx, input.PurchaseID)
	if err != nil {
		return nil, err
	}
	remaining := purchase.Amount.Sub(paid)
	if input.Amount.GreaterThan(remaining) {
		return nil, ErrOverpayment
	}
	if input.PaidAt.IsZero() {
		input.PaidAt = time.Now()
	}
	payment, err := s.repo.CreatePayment(ctx, input)
	if err != nil {
		return nil, err
	}
	if input.Amount.Equal(remaining) {
		if err := s.repo.SetPaid(ctx, purchase.ID, true); err != nil {
			s.logger.Warn("mark purchase paid", slog.Int64("purchase_id", purchase.ID), slog.Any("error", err))
		}
	}
	return payment, nil
}

// TogglePaid flips the paid flag manually, for settlements that happen
// outside recorded payments.
func (s *Service) TogglePaid(ctx context.Context, id int64) (*Purchase, error) {
	purchase, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPaid(ctx, id, !purchase.Paid); err != nil {
		return nil, err
	}
	purchase.Paid = !purchase.Paid
	return purchase, nil
}

// Outstanding returns per-vendor balances for unpaid purchases.
func (s *Service) Outstanding(ctx context.Context) ([]Balance, error) {
	return s.repo.OutstandingByVendor(ctx)
}

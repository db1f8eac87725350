// Package cards records company credit card spending and rolls it up per
// card and month.
package cards

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/facet-erp/facet-erp/internal/platform/httpx"
)

var (
	// ErrNotFound indicates the transaction does not exist.
	ErrNotFound = fmt.Errorf("cards: transaction %w", httpx.ErrNotFound)
	// ErrInvalidTransaction indicates the transaction failed validation.
	ErrInvalidTransaction = fmt.Errorf("cards: invalid transaction: %w", httpx.ErrValidation)
)

// Transaction is one card charge or credit. Refunds carry a negative amount.
type Transaction struct {
	ID        int64           `json:"id"`
	CardLabel string          `json:"card_label"`
	TxDate    time.Time       `json:"tx_date"`
	Merchant  string          `json:"merchant"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateTransactionInput carries a create request.
type CreateTransactionInput struct {
	CardLabel string
	TxDate    time.Time
	Merchant  string
	Amount    decimal.Decimal
	Category  string
	Notes     string
}

// ListTransactionsRequest filters listings by card and date range.
type ListTransactionsRequest struct {
	CardLabel string
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

// CardTotal is the roll-up for one card in a period.
type CardTotal struct {
	CardLabel string          `json:"card_label"`
	TxCount   int             `json:"tx_count"`
	Total     decimal.Decimal `json:"total"`
}

// RepositoryPort defines the persistence surface the service needs.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateTransactionInput) (*Transaction, error)
	List(ctx context.Context, req ListTransactionsRequest) ([]Transaction, error)
}

// Service owns card spend recording.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates and stores a new transaction.
func (s *Service) Create(ctx context.Context, input CreateTransactionInput) (*Transaction, error) {
	input.CardLabel = strings.TrimSpace(input.CardLabel)
	input.Merchant = strings.TrimSpace(input.Merchant)
	if input.CardLabel == "" || input.Merchant == "" || input.Amount.IsZero() {
		return nil, ErrInvalidTransaction
	}
	if input.TxDate.IsZero() {
		input.TxDate = time.Now()
	}
	return s.repo.Create(ctx, input)
}

// List returns transactions matching the request, newest first.
func (s *Service) List(ctx context.Context, req ListTransactionsRequest) ([]Transaction, error) {
	if req.Limit <= 0 || req.Limit > 1000 {
		req.Limit = 200
	}
	return s.repo.List(ctx, req)
}

// MonthlyTotals rolls one calendar month up per card.
func (s *Service) MonthlyTotals(ctx context.Context, year int, month time.Month) ([]CardTotal, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	txs, err := s.repo.List(ctx, ListTransactionsRequest{From: from, To: from.AddDate(0, 1, 0), Limit: 10000})
	if err != nil {
		return nil, err
	}
	byCard := map[string]*CardTotal{}
	var order []string
	for _, tx := range txs {
		total, ok := byCard[tx.CardLabel]
		if !ok {
			total = &CardTotal{CardLabel: tx.CardLabel}
			byCard[tx.CardLabel] = total
			order = append(order, tx.CardLabel)
		}
		total.TxCount++
		total.Total = total.Total.Add(tx.Amount)
	}
	out := make([]CardTotal, 0, len(order))
	for _, label := range order {
		out = append(out, *byCard[label])
	}
	return out, nil
}

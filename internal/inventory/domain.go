// Package inventory tracks the loose diamond stock and serves the search
// surface used when composing invoices and memos.
package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/facet-erp/facet-erp/internal/platform/httpx"
)

// Status tracks where a stone is in its lifecycle.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusOnMemo    Status = "ON_MEMO"
	StatusSold      Status = "SOLD"
)

var (
	// ErrNotFound indicates the stone does not exist.
	ErrNotFound = fmt.Errorf("inventory: stone %w", httpx.ErrNotFound)
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = fmt.Errorf("inventory: invalid status: %w", httpx.ErrValidation)
	// ErrInvalidStone indicates the stone failed validation.
	ErrInvalidStone = fmt.Errorf("inventory: invalid stone: %w", httpx.ErrValidation)
)

// Diamond is one stone in stock.
type Diamond struct {
	ID            int64           `json:"id"`
	StockRef      string          `json:"stock_ref"`
	Shape         string          `json:"shape"`
	Carat         decimal.Decimal `json:"carat"`
	Color         string          `json:"color"`
	Clarity       string          `json:"clarity"`
	Cut           string          `json:"cut"`
	Lab           string          `json:"lab"`
	ReportNo      string          `json:"report_no"`
	PricePerCarat decimal.Decimal `json:"price_per_carat"`
	Status        Status          `json:"status"`
	Location      string          `json:"location"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TotalPrice returns carat multiplied by price per carat.
func (d Diamond) TotalPrice() decimal.Decimal {
	return d.Carat.Mul(d.PricePerCarat)
}

// SearchFilter narrows a stock search. Zero values mean "no constraint".
type SearchFilter struct {
	Shape    string
	Color    string
	Clarity  string
	Lab      string
	Status   Status
	MinCarat decimal.Decimal
	MaxCarat decimal.Decimal
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
	Limit    int
	Offset   int
}

// CreateDiamondInput carries a new stone.
type CreateDiamondInput struct {
	StockRef      string
	Shape         string
	Carat         decimal.Decimal
	Color         string
	Clarity       string
	Cut           string
	Lab           string
	ReportNo      string
	PricePerCarat decimal.Decimal
	Location      string
}

// ParseStatus validates a status string.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusAvailable, StatusOnMemo, StatusSold:
		return Status(value), nil
	default:
		return "", ErrInvalidStatus
	}
}

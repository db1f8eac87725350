// Package sales records completed sales and rolls their profit up by period.
package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/facet-erp/facet-erp/internal/platform/httpx"
)

// ErrNotFound indicates the sale does not exist.
var ErrNotFound = fmt.Errorf("sales: sale %w", httpx.ErrNotFound)

// ErrInvalidSale indicates the sale failed validation.
var ErrInvalidSale = fmt.Errorf("sales: invalid sale: %w", httpx.ErrValidation)

// Sale is one completed transaction. Profit is derived, never stored.
type Sale struct {
	ID             int64           `json:"id"`
	SaleDate       time.Time       `json:"sale_date"`
	BuyerName      string          `json:"buyer_name"`
	DocumentNumber string          `json:"document_number,omitempty"`
	SaleAmount     decimal.Decimal `json:"sale_amount"`
	CostAmount     decimal.Decimal `json:"cost_amount"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	GSTAmount      decimal.Decimal `json:"gst_amount"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Profit returns sale amount minus cost, shipping and GST.
func (s Sale) Profit() decimal.Decimal {
	return s.SaleAmount.Sub(s.CostAmount).Sub(s.ShippingCost).Sub(s.GSTAmount)
}

// CreateSaleInput carries a create request.
type CreateSaleInput struct {
	SaleDate       time.Time
	BuyerName      string
	DocumentNumber string
	SaleAmount     decimal.Decimal
	CostAmount     decimal.Decimal
	ShippingCost   decimal.Decimal
	GSTAmount      decimal.Decimal
	Notes          string
}

// ListSalesRequest filters sale listings by date range.
type ListSalesRequest struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// Summary is the roll-up for a period.
type Summary struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	SaleCount     int             `json:"sale_count"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	TotalShipping decimal.Decimal `json:"total_shipping"`
	TotalGST      decimal.Decimal `json:"total_gst"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
}

// Summarize folds sales into a period summary.
func Summarize(from, to time.Time, sales []Sale) Summary {
	sum := Summary{From: from, To: to}
	for _, s := range sales {
		sum.SaleCount++
		sum.TotalSales = sum.TotalSales.Add(s.SaleAmount)
		sum.TotalCost = sum.TotalCost.Add(s.CostAmount)
		sum.TotalShipping = sum.TotalShipping.Add(s.ShippingCost)
		sum.TotalGST = sum.TotalGST.Add(s.GSTAmount)
		sum.TotalProfit = sum.TotalProfit.Add(s.Profit())
	}
	return sum
}

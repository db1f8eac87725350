// Package vendors tracks purchases from rough and polished suppliers and the
// payments made against them.
package vendors

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/facet-erp/facet-erp/internal/platform/httpx"
)

var (
	// ErrNotFound indicates the purchase does not exist.
	ErrNotFound = fmt.Errorf("vendors: purchase %w", httpx.ErrNotFound)
	// ErrInvalidPurchase indicates the purchase failed validation.
	ErrInvalidPurchase = fmt.Errorf("vendors: invalid purchase: %w", httpx.ErrValidation)
	// ErrInvalidPayment indicates the payment failed validation.
	ErrInvalidPayment = fmt.Errorf("vendors: invalid payment: %w", httpx.ErrValidation)
	// ErrOverpayment indicates the payment exceeds the remaining balance.
	// Kept apart from the validation sentinel; it maps to 422, not 400.
	ErrOverpayment = errors.New("vendors: payment exceeds outstanding balance")
)

// Purchase is one supplier invoice.
type Purchase struct {
	ID           int64           `json:"id"`
	VendorName   string          `json:"vendor_name"`
	InvoiceRef   string          `json:"invoice_ref"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Amount       decimal.Decimal `json:"amount"`
	Paid         bool            `json:"paid"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Payment is one remittance against a purchase.
type Payment struct {
	ID         int64           `json:"id"`
	PurchaseID int64           `json:"purchase_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     time.Time       `json:"paid_at"`
	Method     string          `json:"method,omitempty"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CreatePurchaseInput carries a create request.
type CreatePurchaseInput struct {
	VendorName   string
	InvoiceRef   string
	PurchaseDate time.Time
	Amount       decimal.Decimal
	Notes        string
}

// RecordPaymentInput carries a payment against a purchase.
type RecordPaymentInput struct {
	PurchaseID int64
	Amount     decimal.Decimal
	PaidAt     time.Time
	Method     string
	Note       string
}

// Balance is the per-vendor outstanding position.
type Balance struct {
	VendorName     string          `json:"vendor_name"`
	TotalPurchased decimal.Decimal `json:"total_purchased"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	Outstanding    decimal.Decimal `json:"outstanding"`
}

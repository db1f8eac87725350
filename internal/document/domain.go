package document

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates invoices from memos. The two share layout; only the
// title text and numbering prefix differ.
type Kind string

const (
	KindInvoice Kind = "INVOICE"
	KindMemo    Kind = "MEMO"
)

// Prefix returns the numbering prefix for the kind.
func (k Kind) Prefix() string {
	if k == KindMemo {
		return "MO"
	}
	return "CD"
}

// Title returns the section title printed on the document.
func (k Kind) Title() string {
	if k == KindMemo {
		return "Memo"
	}
	return "Invoice"
}

// Recipient is the bill-to company profile referenced by a document header.
type Recipient struct {
	ID           int64
	CompanyName  string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Country      string
	PostalCode   string
}

// Header identifies one invoice or memo.
type Header struct {
	Number           string
	Date             time.Time
	DueDate          time.Time
	PaymentTermsDays int
	Recipient        *Recipient
	Description      string
	ShipmentCost     decimal.Decimal
	Discount         decimal.Decimal
	CollectedPayment decimal.Decimal
}

// LineItem is one diamond entry on a document.
type LineItem struct {
	Description   string
	Carat         decimal.Decimal
	Color         string
	Clarity       string
	Lab           string
	ReportNo      string
	PricePerCarat decimal.Decimal
}

// Total returns carat multiplied by price per carat. Inputs are assumed
// validated; see Snapshot.Validate.
func (li LineItem) Total() decimal.Decimal {
	return LineTotal(li.Carat, li.PricePerCarat)
}

// Snapshot is an immutable document handed to renderers. Edits happen
// upstream and produce a new snapshot.
type Snapshot struct {
	Kind   Kind
	Header Header
	Items  []LineItem
}

// Totals carries the derived amounts for a snapshot. Never persisted
// independently of its inputs.
type Totals struct {
	Subtotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	AmountInWords string
}

// ValidationError names the offending field so callers can surface it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document: invalid %s: %s", e.Field, e.Reason)
}

// Validate re-checks the snapshot invariants before rendering or persistence.
func (s *Snapshot) Validate() error {
	if s.Kind != KindInvoice && s.Kind != KindMemo {
		return &ValidationError{Field: "kind", Reason: "must be INVOICE or MEMO"}
	}
	if s.Header.Number == "" {
		return &ValidationError{Field: "number", Reason: "required"}
	}
	if s.Header.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "required"}
	}
	if s.Header.PaymentTermsDays < 1 {
		return &ValidationError{Field: "payment_terms_days", Reason: "must be at least 1"}
	}
	if len(s.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "must have at least one item"}
	}
	for i, item := range s.Items {
		if item.Carat.Sign() <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].carat", i), Reason: "must be positive"}
		}
		if item.PricePerCarat.Sign() <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].price_per_carat", i), Reason: "must be positive"}
		}
	}
	for _, adj := range []struct {
		field string
		value decimal.Decimal
	}{
		{"shipment_cost", s.Header.ShipmentCost},
		{"discount", s.Header.Discount},
		{"collected_payment", s.Header.CollectedPayment},
	} {
		if adj.value.Sign() < 0 {
			return &ValidationError{Field: adj.field, Reason: "must not be negative"}
		}
	}
	return nil
}

// EffectiveDueDate returns the explicit due date, or date plus payment terms
// when none was given.
func (h Header) EffectiveDueDate() time.Time {
	if !h.DueDate.IsZero() {
		return h.DueDate
	}
	return h.Date.AddDate(0, 0, h.PaymentTermsDays)
}

// ComputeTotals derives the totals block for the snapshot.
func (s *Snapshot) ComputeTotals() (Totals, error) {
	subtotal := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.Total())
	}
	grand := GrandTotal(s.Items, s.Header.Discount, s.Header.CollectedPayment, s.Header.ShipmentCost)
	words, err := AmountInWords(grand)
	if err != nil {
		return Totals{}, err
	}
	return Totals{Subtotal: subtotal, GrandTotal: grand, AmountInWords: words}, nil
}

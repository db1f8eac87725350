// Package render turns document snapshots into print-ready artifacts. One
// layout model feeds pluggable backends: self-contained HTML, headless
// Chromium rasterization (local chromedp or remote Gotenberg), and a
// direct-drawing PDF canvas.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/facet-erp/facet-erp/internal/document"
)

// Artifact is the output of one rendering pass.
type Artifact struct {
	ContentType string
	Filename    string
	Data        []byte
}

// Backend renders a validated snapshot deterministically. Implementations
// must not mutate the snapshot.
type Backend interface {
	Name() string
	Render(ctx context.Context, doc document.Snapshot) (Artifact, error)
}

// Rendering stages, used to tell "asset missing" from "renderer crashed"
// from "timed out" when a backend fails.
const (
	StageValidate  = "validate"
	StageAsset     = "asset"
	StageTemplate  = "template"
	StageLaunch    = "launch"
	StageNavigate  = "navigate"
	StageRasterize = "rasterize"
	StageDraw      = "draw"
	StageTimeout   = "timeout"
)

// RenderError wraps a backend failure with the backend name and stage so the
// caller can decide whether to retry on the alternate backend.
type RenderError struct {
	Backend string
	Stage   string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: backend %s failed at %s: %v", e.Backend, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// CompanyInfo is the issuing company block printed at the top of every
// document.
type CompanyInfo struct {
	Name         string
	AddressLine1 string
	AddressLine2 string
	Phone        string
	Email        string
}

// AccountDetails is the remittance block.
type AccountDetails struct {
	BankName      string
	AccountName   string
	AccountNumber string
	RoutingNumber string
	SwiftCode     string
}

// Config carries the static inputs shared by all backends. AssetDir is the
// single configured asset root; backends never probe alternative paths.
type Config struct {
	AssetDir    string
	LogoFile    string
	Company     CompanyInfo
	Account     AccountDetails
	Disclaimer  string
	LegalFooter string
}

// DefaultConfig returns the stock company profile. AssetDir stays empty so
// the logo degrades to its placeholder unless configured.
func DefaultConfig() Config {
	return Config{
		LogoFile: "logo.png",
		Company: CompanyInfo{
			Name:         "Facet Diamonds Inc.",
			AddressLine1: "580 Fifth Avenue, Suite 2100",
			AddressLine2: "New York, NY 10036, USA",
			Phone:        "+1 (212) 555-0168",
			Email:        "accounts@facetdiamonds.example",
		},
		Account: AccountDetails{
			BankName:      "First Meridian Bank",
			AccountName:   "Facet Diamonds Inc.",
			AccountNumber: "4830112976",
			RoutingNumber: "026009593",
			SwiftCode:     "FMRDUS33",
		},
		Disclaimer: "All diamonds remain the property of Facet Diamonds Inc. until payment " +
			"is received in full. Goods are shipped at the buyer's risk. Claims must be " +
			"reported within 5 business days of receipt.",
		LegalFooter: "This document is issued subject to the terms of the Diamond Trading " +
			"Agreement on file. Jurisdiction: New York, NY.",
	}
}

// usdPrinter applies the single currency contract for every document kind
// and backend: USD, en-US grouping, two decimal places.
var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders a decimal amount under the document currency contract.
func FormatUSD(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return usdPrinter.Sprintf("$%.2f", f)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

// pdfFilename derives the suggested download name from the document number.
func pdfFilename(number string) string {
	return number + ".pdf"
}

func htmlFilename(number string) string {
	return number + ".html"
}

package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"html/template"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/facet-erp/facet-erp/internal/document"
)

// LogoPlaceholder is rendered in place of the logo when the asset cannot be
// read. Its presence in output marks the degraded path.
const LogoPlaceholder = "[COMPANY LOGO]"

// HTMLBackend renders a self-contained HTML document: inline styles, @page
// A4 with fixed margins, no external stylesheet. Printing it through a
// browser dialog reproduces the layout without manual adjustment.
type HTMLBackend struct {
	cfg Config
	tpl *template.Template
}

// NewHTMLBackend parses the document template once.
func NewHTMLBackend(cfg Config) (*HTMLBackend, error) {
	tpl, err := template.New("document").Funcs(template.FuncMap{
		"usd":  FormatUSD,
		"date": formatDate,
	}).Parse(documentTemplate)
	if err != nil {
		return nil, &RenderError{Backend: "html", Stage: StageTemplate, Err: err}
	}
	return &HTMLBackend{cfg: cfg, tpl: tpl}, nil
}

// Name identifies the backend in errors and metrics.
func (b *HTMLBackend) Name() string { return "html" }

type htmlLine struct {
	Description   string
	Carat         string
	Color         string
	Clarity       string
	Lab           string
	ReportNo      string
	PricePerCarat string
	Total         string
}

type htmlData struct {
	Title            string
	Number           string
	Date             string
	DueDate          string
	Description      string
	LogoDataURI      template.URL
	LogoPlaceholder  string
	Company          CompanyInfo
	Account          AccountDetails
	RecipientLines   []string
	RecipientMissing bool
	Items            []htmlLine
	TotalCarats      string
	Subtotal         string
	Discount         string
	CollectedPayment string
	ShipmentCost     string
	GrandTotal       string
	AmountInWords    string
	Disclaimer       string
	LegalFooter      string
}

// Render produces the HTML artifact for the snapshot.
func (b *HTMLBackend) Render(_ context.Context, doc document.Snapshot) (Artifact, error) {
	if err := doc.Validate(); err != nil {
		return Artifact{}, &RenderError{Backend: b.Name(), Stage: StageValidate, Err: err}
	}
	totals, err := doc.ComputeTotals()
	if err != nil {
		return Artifact{}, &RenderError{Backend: b.Name(), Stage: StageValidate, Err: err}
	}

	data := htmlData{
		Title:            doc.Kind.Title(),
		Number:           doc.Header.Number,
		Date:             formatDate(doc.Header.Date),
		DueDate:          formatDate(doc.Header.EffectiveDueDate()),
		Description:      doc.Header.Description,
		Company:          b.cfg.Company,
		Account:          b.cfg.Account,
		TotalCarats:      totalCarats(doc.Items).StringFixed(2),
		Subtotal:         FormatUSD(totals.Subtotal),
		Discount:         FormatUSD(doc.Header.Discount),
		CollectedPayment: FormatUSD(doc.Header.CollectedPayment),
		ShipmentCost:     FormatUSD(doc.Header.ShipmentCost),
		GrandTotal:       FormatUSD(totals.GrandTotal),
		AmountInWords:    totals.AmountInWords,
		Disclaimer:       b.cfg.Disclaimer,
		LegalFooter:      b.cfg.LegalFooter,
	}

	if uri, ok := b.logoDataURI(); ok {
		data.LogoDataURI = template.URL(uri)
	} else {
		data.LogoPlaceholder = LogoPlaceholder
	}

	data.RecipientLines, data.RecipientMissing = recipientLines(doc.Header.Recipient)

	for _, item := range doc.Items {
		data.Items = append(data.Items, htmlLine{
			Description:   item.Description,
			Carat:         item.Carat.StringFixed(2),
			Color:         item.Color,
			Clarity:       item.Clarity,
			Lab:           item.Lab,
			ReportNo:      item.ReportNo,
			PricePerCarat: FormatUSD(item.PricePerCarat),
			Total:         FormatUSD(item.Total()),
		})
	}

	buf := &bytes.Buffer{}
	if err := b.tpl.Execute(buf, data); err != nil {
		return Artifact{}, &RenderError{Backend: b.Name(), Stage: StageTemplate, Err: err}
	}
	return Artifact{
		ContentType: "text/html; charset=utf-8",
		Filename:    htmlFilename(doc.Header.Number),
		Data:        buf.Bytes(),
	}, nil
}

// logoDataURI reads the configured logo best-effort. A missing or unreadable
// asset degrades to the placeholder, never to a failed render.
func (b *HTMLBackend) logoDataURI() (string, bool) {
	if b.cfg.AssetDir == "" || b.cfg.LogoFile == "" {
		return "", false
	}
	raw, err := os.ReadFile(filepath.Join(b.cfg.AssetDir, b.cfg.LogoFile))
	if err != nil {
		return "", false
	}
	mimeType := "image/png"
	switch filepath.Ext(b.cfg.LogoFile) {
	case ".jpg", ".jpeg":
		mimeType = "image/jpeg"
	case ".svg":
		mimeType = "image/svg+xml"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw), true
}

// recipientLines flattens the recipient block. A nil recipient (lookup
// failure upstream) renders as a visible "not available" line instead of an
// empty block.
func recipientLines(r *document.Recipient) ([]string, bool) {
	if r == nil {
		return nil, true
	}
	lines := make([]string, 0, 4)
	if r.CompanyName != "" {
		lines = append(lines, r.CompanyName)
	}
	if r.AddressLine1 != "" {
		lines = append(lines, r.AddressLine1)
	}
	if r.AddressLine2 != "" {
		lines = append(lines, r.AddressLine2)
	}
	locality := joinNonEmpty(", ", r.City, r.State, r.PostalCode)
	if locality != "" {
		lines = append(lines, locality)
	}
	if r.Country != "" {
		lines = append(lines, r.Country)
	}
	if len(lines) == 0 {
		return nil, true
	}
	return lines, false
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}

// totalCarats sums item carats for the table footer.
func totalCarats(items []document.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Carat)
	}
	return sum
}

var documentTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Number}}</title>
<style>
  @page { size: A4; margin: 10mm; }
  body { font-family: 'Helvetica Neue', Arial, sans-serif; color: #1a1a2e; font-size: 12px; margin: 0; }
  .top { display: flex; justify-content: space-between; align-items: flex-start; }
  .logo img { max-height: 64px; }
  .logo-placeholder { border: 1px dashed #94a3b8; color: #64748b; padding: 14px 22px; font-size: 11px; }
  .company { text-align: right; line-height: 1.5; }
  .company .name { font-size: 15px; font-weight: 700; }
  .docmeta { margin-top: 18px; display: flex; justify-content: space-between; }
  .docmeta .number { font-size: 14px; font-weight: 700; }
  .recipient { margin-top: 14px; }
  .recipient .label, .section-label { font-size: 10px; text-transform: uppercase; letter-spacing: 0.08em; color: #64748b; }
  .recipient .missing { color: #b91c1c; font-style: italic; }
  h1.doc-title { font-size: 18px; letter-spacing: 0.12em; text-transform: uppercase; margin: 20px 0 8px; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 6px; }
  table.items th { background: #f1f5f9; border-bottom: 1.5px solid #334155; font-size: 10px; text-transform: uppercase; padding: 6px; text-align: left; }
  table.items td { border-bottom: 1px solid #e2e8f0; padding: 6px; }
  table.items th.num, table.items td.num { text-align: right; }
  table.items tfoot td { font-weight: 700; border-top: 1.5px solid #334155; }
  .below { display: flex; justify-content: space-between; margin-top: 16px; }
  .account { line-height: 1.6; }
  .totals { min-width: 230px; }
  .totals .row { display: flex; justify-content: space-between; padding: 2px 0; }
  .totals .grand { font-weight: 700; border-top: 1.5px solid #334155; margin-top: 4px; padding-top: 4px; }
  .words { margin-top: 12px; font-style: italic; }
  .disclaimer { margin-top: 22px; font-size: 10px; color: #475569; }
  .signature { margin-top: 40px; display: flex; justify-content: flex-end; }
  .signature .line { border-top: 1px solid #334155; width: 220px; text-align: center; padding-top: 4px; font-size: 10px; }
  .legal { margin-top: 28px; font-size: 9px; color: #94a3b8; text-align: center; }
</style>
</head>
<body>
  <div class="top">
    <div class="logo">
      {{if .LogoDataURI}}<img src="{{.LogoDataURI}}" alt="logo">{{else}}<div class="logo-placeholder">{{.LogoPlaceholder}}</div>{{end}}
    </div>
    <div class="company">
      <div class="name">{{.Company.Name}}</div>
      <div>{{.Company.AddressLine1}}</div>
      <div>{{.Company.AddressLine2}}</div>
      <div>{{.Company.Phone}} &middot; {{.Company.Email}}</div>
    </div>
  </div>

  <div class="docmeta">
    <div>
      <div class="number">{{.Number}}</div>
      {{if .Description}}<div>{{.Description}}</div>{{end}}
    </div>
    <div>
      <div>Date: {{.Date}}</div>
      <div>Due Date: {{.DueDate}}</div>
    </div>
  </div>

  <div class="recipient">
    <div class="label">Bill To</div>
    {{if .RecipientMissing}}
      <div class="missing">Recipient details not available</div>
    {{else}}
      {{range .RecipientLines}}<div>{{.}}</div>{{end}}
    {{end}}
  </div>

  <h1 class="doc-title">{{.Title}}</h1>

  <table class="items">
    <thead>
      <tr>
        <th>Description</th>
        <th class="num">Carat</th>
        <th>Color</th>
        <th>Clarity</th>
        <th>Lab</th>
        <th>Report No</th>
        <th class="num">Price/Ct</th>
        <th class="num">Total</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td>{{.Description}}</td>
        <td class="num">{{.Carat}}</td>
        <td>{{.Color}}</td>
        <td>{{.Clarity}}</td>
        <td>{{.Lab}}</td>
        <td>{{.ReportNo}}</td>
        <td class="num">{{.PricePerCarat}}</td>
        <td class="num">{{.Total}}</td>
      </tr>
      {{end}}
    </tbody>
    <tfoot>
      <tr>
        <td>Subtotal</td>
        <td class="num">{{.TotalCarats}}</td>
        <td colspan="5"></td>
        <td class="num">{{.Subtotal}}</td>
      </tr>
    </tfoot>
  </table>

  <div class="below">
    <div class="account">
      <div class="section-label">Account Details</div>
      <div>{{.Account.BankName}}</div>
      <div>Account Name: {{.Account.AccountName}}</div>
      <div>Account No: {{.Account.AccountNumber}}</div>
      <div>Routing: {{.Account.RoutingNumber}} &middot; SWIFT: {{.Account.SwiftCode}}</div>
    </div>
    <div class="totals">
      <div class="row"><span>Subtotal</span><span>{{.Subtotal}}</span></div>
      <div class="row"><span>Discount</span><span>&minus;{{.Discount}}</span></div>
      <div class="row"><span>Payment Received</span><span>&minus;{{.CollectedPayment}}</span></div>
      <div class="row"><span>Shipping</span><span>{{.ShipmentCost}}</span></div>
      <div class="row grand"><span>Total Due</span><span>{{.GrandTotal}}</span></div>
    </div>
  </div>

  <div class="words">{{.AmountInWords}}</div>

  <div class="disclaimer">{{.Disclaimer}}</div>

  <div class="signature">
    <div class="line">Authorized Signature</div>
  </div>

  <div class="legal">{{.LegalFooter}}</div>
</body>
</html>
`

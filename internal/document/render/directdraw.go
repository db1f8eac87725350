package render

import (
	"context"
	"os"
	"path/filepath"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/facet-erp/facet-erp/internal/document"
)

// DirectDrawBackend lays the document out on a PDF canvas in millimeter
// coordinates. It mirrors the HTML backend's section order so the numeric
// content of the two outputs always agrees.
type DirectDrawBackend struct {
	cfg Config
}

// NewDirectDrawBackend constructs the canvas backend.
func NewDirectDrawBackend(cfg Config) *DirectDrawBackend {
	return &DirectDrawBackend{cfg: cfg}
}

// Name identifies the backend in errors and metrics.
func (b *DirectDrawBackend) Name() string { return "draw" }

// Render draws the snapshot onto an A4 page and returns the PDF bytes.
func (b *DirectDrawBackend) Render(_ context.Context, doc document.Snapshot) (Artifact, error) {
	if err := doc.Validate(); err != nil {
		return Artifact{}, &RenderError{Backend: b.Name(), Stage: StageValidate, Err: err}
	}
	totals, err := doc.ComputeTotals()
	if err != nil {
		return Artifact{}, &RenderError{Backend: b.Name(), Stage: StageValidate, Err: err}
	}

	m := maroto.New(config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		Build())

	b.addHeader(m)
	b.addMeta(m, doc)
	b.addRecipient(m, doc.Header.Recipient)
	b.addTitle(m, doc.Kind)
	b.addItemTable(m, doc.Items, totals)
	b.addAccountAndTotals(m, doc, totals)
	b.addClosing(m, totals)

	out, err := m.Generate()
	if err != nil {
		return Artifact{}, &RenderError{Backend: b.Name(), Stage: StageDraw, Err: err}
	}
	return Artifact{
		ContentType: "application/pdf",
		Filename:    pdfFilename(doc.Header.Number),
		Data:        out.GetBytes(),
	}, nil
}

func (b *DirectDrawBackend) addHeader(m core.Maroto) {
	logoCol := b.logoCol()
	m.AddRow(24,
		logoCol,
		col.New(7).Add(
			text.New(b.cfg.Company.Name, props.Text{Size: 13, Style: fontstyle.Bold, Align: align.Right}),
			text.New(b.cfg.Company.AddressLine1, props.Text{Size: 9, Top: 6, Align: align.Right}),
			text.New(b.cfg.Company.AddressLine2, props.Text{Size: 9, Top: 10, Align: align.Right}),
			text.New(b.cfg.Company.Phone+"  "+b.cfg.Company.Email, props.Text{Size: 8, Top: 14, Align: align.Right}),
		),
	)
	m.AddRow(3, line.NewCol(12))
}

// logoCol loads the configured logo best-effort; failures degrade to the
// placeholder text, never to a failed render.
func (b *DirectDrawBackend) logoCol() core.Col {
	if b.cfg.AssetDir != "" && b.cfg.LogoFile != "" {
		raw, err := os.ReadFile(filepath.Join(b.cfg.AssetDir, b.cfg.LogoFile))
		if err == nil {
			ext := extension.Png
			switch filepath.Ext(b.cfg.LogoFile) {
			case ".jpg", ".jpeg":
				ext = extension.Jpg
			}
			return image.NewFromBytesCol(5, raw, ext, props.Rect{Percent: 90})
		}
	}
	return col.New(5).Add(
		text.New(LogoPlaceholder, props.Text{Size: 9, Style: fontstyle.Italic, Top: 9}),
	)
}

func (b *DirectDrawBackend) addMeta(m core.Maroto, doc document.Snapshot) {
	m.AddRow(14,
		col.New(7).Add(
			text.New(doc.Header.Number, props.Text{Size: 11, Style: fontstyle.Bold}),
			text.New(doc.Header.Description, props.Text{Size: 9, Top: 6}),
		),
		col.New(5).Add(
			text.New("Date: "+formatDate(doc.Header.Date), props.Text{Size: 9, Align: align.Right}),
			text.New("Due Date: "+formatDate(doc.Header.EffectiveDueDate()), props.Text{Size: 9, Top: 5, Align: align.Right}),
		),
	)
}

func (b *DirectDrawBackend) addRecipient(m core.Maroto, r *document.Recipient) {
	m.AddRow(5, col.New(12).Add(
		text.New("BILL TO", props.Text{Size: 7, Style: fontstyle.Bold}),
	))
	lines, missing := recipientLines(r)
	if missing {
		m.AddRow(6, col.New(12).Add(
			text.New("Recipient details not available", props.Text{Size: 9, Style: fontstyle.Italic}),
		))
		return
	}
	for _, l := range lines {
		m.AddRow(5, col.New(12).Add(text.New(l, props.Text{Size: 9})))
	}
}

func (b *DirectDrawBackend) addTitle(m core.Maroto, kind document.Kind) {
	m.AddRow(12, col.New(12).Add(
		text.New(kind.Title(), props.Text{Size: 15, Style: fontstyle.Bold, Top: 3}),
	))
}

func (b *DirectDrawBackend) addItemTable(m core.Maroto, items []document.LineItem, totals document.Totals) {
	headerStyle := props.Text{Size: 8, Style: fontstyle.Bold}
	m.AddRow(7,
		col.New(3).Add(text.New("Description", headerStyle)),
		col.New(1).Add(text.New("Carat", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right})),
		col.New(1).Add(text.New("Color", headerStyle)),
		col.New(1).Add(text.New("Clarity", headerStyle)),
		col.New(1).Add(text.New("Lab", headerStyle)),
		col.New(2).Add(text.New("Report No", headerStyle)),
		col.New(1).Add(text.New("Price/Ct", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right})),
		col.New(2).Add(text.New("Total", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right})),
	)
	m.AddRow(1, line.NewCol(12))

	cell := props.Text{Size: 8}
	num := props.Text{Size: 8, Align: align.Right}
	for _, item := range items {
		m.AddRow(6,
			col.New(3).Add(text.New(item.Description, cell)),
			col.New(1).Add(text.New(item.Carat.StringFixed(2), num)),
			col.New(1).Add(text.New(item.Color, cell)),
			col.New(1).Add(text.New(item.Clarity, cell)),
			col.New(1).Add(text.New(item.Lab, cell)),
			col.New(2).Add(text.New(item.ReportNo, cell)),
			col.New(1).Add(text.New(FormatUSD(item.PricePerCarat), num)),
			col.New(2).Add(text.New(FormatUSD(item.Total()), num)),
		)
	}

	m.AddRow(1, line.NewCol(12))
	m.AddRow(7,
		col.New(3).Add(text.New("Subtotal", props.Text{Size: 8, Style: fontstyle.Bold})),
		col.New(1).Add(text.New(totalCarats(items).StringFixed(2), props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right})),
		col.New(6),
		col.New(2).Add(text.New(FormatUSD(totals.Subtotal), props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right})),
	)
}

func (b *DirectDrawBackend) addAccountAndTotals(m core.Maroto, doc document.Snapshot, totals document.Totals) {
	label := props.Text{Size: 8}
	amount := props.Text{Size: 8, Align: align.Right}

	account := col.New(6).Add(
		text.New("ACCOUNT DETAILS", props.Text{Size: 7, Style: fontstyle.Bold}),
		text.New(b.cfg.Account.BankName, props.Text{Size: 8, Top: 4}),
		text.New("Account Name: "+b.cfg.Account.AccountName, props.Text{Size: 8, Top: 8}),
		text.New("Account No: "+b.cfg.Account.AccountNumber, props.Text{Size: 8, Top: 12}),
		text.New("Routing: "+b.cfg.Account.RoutingNumber+"  SWIFT: "+b.cfg.Account.SwiftCode, props.Text{Size: 8, Top: 16}),
	)

	m.AddRows(
		row.New(22).Add(
			account,
			col.New(2),
			col.New(2).Add(
				text.New("Subtotal", label),
				text.New("Discount", props.Text{Size: 8, Top: 4}),
				text.New("Payment Received", props.Text{Size: 8, Top: 8}),
				text.New("Shipping", props.Text{Size: 8, Top: 12}),
				text.New("Total Due", props.Text{Size: 9, Style: fontstyle.Bold, Top: 17}),
			),
			col.New(2).Add(
				text.New(FormatUSD(totals.Subtotal), amount),
				text.New("-"+FormatUSD(doc.Header.Discount), props.Text{Size: 8, Top: 4, Align: align.Right}),
				text.New("-"+FormatUSD(doc.Header.CollectedPayment), props.Text{Size: 8, Top: 8, Align: align.Right}),
				text.New(FormatUSD(doc.Header.ShipmentCost), props.Text{Size: 8, Top: 12, Align: align.Right}),
				text.New(FormatUSD(totals.GrandTotal), props.Text{Size: 9, Style: fontstyle.Bold, Top: 17, Align: align.Right}),
			),
		),
	)
}

func (b *DirectDrawBackend) addClosing(m core.Maroto, totals document.Totals) {
	m.AddRow(8, col.New(12).Add(
		text.New(totals.AmountInWords, props.Text{Size: 9, Style: fontstyle.Italic, Top: 2}),
	))
	m.AddRow(12, col.New(12).Add(
		text.New(b.cfg.Disclaimer, props.Text{Size: 7, Top: 3}),
	))
	m.AddRow(16,
		col.New(8),
		col.New(4).Add(
			text.New("_______________________", props.Text{Size: 9, Top: 8, Align: align.Center}),
			text.New("Authorized Signature", props.Text{Size: 7, Top: 13, Align: align.Center}),
		),
	)
	m.AddRow(8, col.New(12).Add(
		text.New(b.cfg.LegalFooter, props.Text{Size: 6, Top: 3, Align: align.Center}),
	))
}

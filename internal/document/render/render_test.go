package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/facet-erp/facet-erp/internal/document"
)

func sampleSnapshot() document.Snapshot {
	return document.Snapshot{
		Kind: document.KindInvoice,
		Header: document.Header{
			Number:           "CD-0005A/1403",
			Date:             time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			PaymentTermsDays: 30,
			Recipient: &document.Recipient{
				CompanyName:  "Brillante Gems BV",
				AddressLine1: "Hoveniersstraat 30",
				City:         "Antwerp",
				PostalCode:   "2018",
				Country:      "Belgium",
			},
			Description:  "March shipment",
			Discount:     decimal.RequireFromString("50"),
			ShipmentCost: decimal.RequireFromString("25"),
		},
		Items: []document.LineItem{
			{Description: "Round Brilliant", Carat: decimal.RequireFromString("1.00"), Color: "D", Clarity: "VS1", Lab: "GIA", ReportNo: "2101234567", PricePerCarat: decimal.RequireFromString("500.00")},
			{Description: "Princess Cut", Carat: decimal.RequireFromString("0.50"), Color: "F", Clarity: "VVS2", Lab: "IGI", ReportNo: "LG501234", PricePerCarat: decimal.RequireFromString("1200.00")},
		},
	}
}

func TestHTMLBackendRender(t *testing.T) {
	backend, err := NewHTMLBackend(DefaultConfig())
	require.NoError(t, err)

	art, err := backend.Render(context.Background(), sampleSnapshot())
	require.NoError(t, err)
	require.Equal(t, "text/html; charset=utf-8", art.ContentType)
	require.Equal(t, "CD-0005A/1403.html", art.Filename)

	html := string(art.Data)
	require.Contains(t, html, "CD-0005A/1403")
	require.Contains(t, html, "@page { size: A4; margin: 10mm; }")
	require.Contains(t, html, "Brillante Gems BV")
	require.Contains(t, html, "$500.00")
	require.Contains(t, html, "$600.00")
	require.Contains(t, html, "$1,100.00")
	require.Contains(t, html, "$1,075.00")
	require.Contains(t, html, "One Thousand Seventy Five Dollars Only")
	require.Contains(t, html, "2101234567")
	require.Contains(t, html, "Authorized Signature")
}

func TestHTMLBackendMissingLogoRendersPlaceholder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AssetDir = t.TempDir() // no logo.png inside

	backend, err := NewHTMLBackend(cfg)
	require.NoError(t, err)

	art, err := backend.Render(context.Background(), sampleSnapshot())
	require.NoError(t, err)
	require.Contains(t, string(art.Data), LogoPlaceholder)
}

func TestHTMLBackendEmbedsLogoWhenPresent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte("\x89PNG\r\n\x1a\nfake"), 0o644))

	cfg := DefaultConfig()
	cfg.AssetDir = dir

	backend, err := NewHTMLBackend(cfg)
	require.NoError(t, err)

	art, err := backend.Render(context.Background(), sampleSnapshot())
	require.NoError(t, err)
	require.Contains(t, string(art.Data), "data:image/png;base64,")
	require.NotContains(t, string(art.Data), LogoPlaceholder)
}

func TestHTMLBackendMissingRecipient(t *testing.T) {
	backend, err := NewHTMLBackend(DefaultConfig())
	require.NoError(t, err)

	snap := sampleSnapshot()
	snap.Header.Recipient = nil

	art, err := backend.Render(context.Background(), snap)
	require.NoError(t, err)
	require.Contains(t, string(art.Data), "Recipient details not available")
}

func TestHTMLBackendRejectsInvalidSnapshot(t *testing.T) {
	backend, err := NewHTMLBackend(DefaultConfig())
	require.NoError(t, err)

	snap := sampleSnapshot()
	snap.Items = nil

	_, err = backend.Render(context.Background(), snap)
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "html", rerr.Backend)
	require.Equal(t, StageValidate, rerr.Stage)

	var verr *document.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "items", verr.Field)
}

func TestDirectDrawBackendRender(t *testing.T) {
	backend := NewDirectDrawBackend(DefaultConfig())

	art, err := backend.Render(context.Background(), sampleSnapshot())
	require.NoError(t, err)
	require.Equal(t, "application/pdf", art.ContentType)
	require.Equal(t, "CD-0005A/1403.pdf", art.Filename)
	require.True(t, len(art.Data) > 4)
	require.Equal(t, "%PDF", string(art.Data[:4]))
}

// The HTML and direct-draw backends share the totals computation and the USD
// formatter, so their numeric content must agree for the same snapshot.
func TestBackendsAgreeOnNumbers(t *testing.T) {
	snap := sampleSnapshot()
	totals, err := snap.ComputeTotals()
	require.NoError(t, err)
	require.Equal(t, "$1,075.00", FormatUSD(totals.GrandTotal))

	htmlBackend, err := NewHTMLBackend(DefaultConfig())
	require.NoError(t, err)
	htmlArt, err := htmlBackend.Render(context.Background(), snap)
	require.NoError(t, err)
	require.Contains(t, string(htmlArt.Data), FormatUSD(totals.GrandTotal))

	drawArt, err := NewDirectDrawBackend(DefaultConfig()).Render(context.Background(), snap)
	require.NoError(t, err)
	require.Equal(t, htmlArt.Filename[:len(htmlArt.Filename)-len(".html")], drawArt.Filename[:len(drawArt.Filename)-len(".pdf")])
}

type fakeConverter struct {
	name string
	out  []byte
	err  error
	got  string
}

func (f *fakeConverter) Name() string { return f.name }

func (f *fakeConverter) ConvertHTML(_ context.Context, html string) ([]byte, error) {
	f.got = html
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func TestHeadlessBackendWrapsConverter(t *testing.T) {
	htmlBackend, err := NewHTMLBackend(DefaultConfig())
	require.NoError(t, err)

	conv := &fakeConverter{name: "chromium", out: []byte("%PDF-fake")}
	backend := NewHeadlessBackend(htmlBackend, conv)

	art, err := backend.Render(context.Background(), sampleSnapshot())
	require.NoError(t, err)
	require.Equal(t, "application/pdf", art.ContentType)
	require.Equal(t, "CD-0005A/1403.pdf", art.Filename)
	require.Equal(t, []byte("%PDF-fake"), art.Data)
	require.Contains(t, conv.got, "CD-0005A/1403")
}

func TestHeadlessBackendPropagatesConverterError(t *testing.T) {
	htmlBackend, err := NewHTMLBackend(DefaultConfig())
	require.NoError(t, err)

	cause := errors.New("browser crashed")
	conv := &fakeConverter{name: "chromium", err: &RenderError{Backend: "chromium", Stage: StageRasterize, Err: cause}}
	backend := NewHeadlessBackend(htmlBackend, conv)

	_, err = backend.Render(context.Background(), sampleSnapshot())
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "chromium", rerr.Backend)
	require.Equal(t, StageRasterize, rerr.Stage)
	require.ErrorIs(t, err, cause)
}

func TestGotenbergConverter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "8.27", r.FormValue("paperWidth"))
		require.Equal(t, "11.69", r.FormValue("paperHeight"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-remote"))
	}))
	defer srv.Close()

	conv := NewGotenbergConverter(srv.URL)
	out, err := conv.ConvertHTML(context.Background(), "<html></html>")
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-remote"), out)
}

func TestGotenbergConverterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium exited", http.StatusInternalServerError)
	}))
	defer srv.Close()

	conv := NewGotenbergConverter(srv.URL)
	_, err := conv.ConvertHTML(context.Background(), "<html></html>")
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "gotenberg", rerr.Backend)
	require.Equal(t, StageRasterize, rerr.Stage)
}

func TestFormatUSD(t *testing.T) {
	require.Equal(t, "$1,234.56", FormatUSD(decimal.RequireFromString("1234.56")))
	require.Equal(t, "$0.00", FormatUSD(decimal.Zero))
	require.Equal(t, "$1,000,000.00", FormatUSD(decimal.RequireFromString("1000000")))
}

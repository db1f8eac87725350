package render

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/facet-erp/facet-erp/internal/document"
)

// A4 dimensions and margin in inches, as PrintToPDF expects.
const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
	marginIn   = 0.39 // 10mm
)

// HTMLConverter rasterizes a self-contained HTML string to PDF bytes.
// Implemented by the local Chromium runner and the remote Gotenberg client.
type HTMLConverter interface {
	Name() string
	ConvertHTML(ctx context.Context, html string) ([]byte, error)
}

// ChromiumConverter drives a local headless Chromium via chromedp. The
// browser process is acquired per conversion and released on every exit
// path; the whole sequence is bounded by Timeout.
type ChromiumConverter struct {
	ExecPath string
	Timeout  time.Duration
}

// Name identifies the converter in render errors.
func (c *ChromiumConverter) Name() string { return "chromium" }

// ConvertHTML loads the HTML into a fresh headless browser and prints it to
// PDF. Launch, navigation and rasterization failures are terminal for the
// request; the returned error distinguishes a timeout from a crash.
func (c *ChromiumConverter) ConvertHTML(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	runCtx, cancelRun := chromedp.NewContext(allocCtx)
	defer cancelRun()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	runCtx, cancelTimeout := context.WithTimeout(runCtx, timeout)
	defer cancelTimeout()

	var pdf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("data:text/html,"+url.PathEscape(html)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, perr := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthIn).
				WithPaperHeight(a4HeightIn).
				WithMarginTop(marginIn).
				WithMarginBottom(marginIn).
				WithMarginLeft(marginIn).
				WithMarginRight(marginIn).
				Do(ctx)
			if perr != nil {
				return perr
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		stage := StageRasterize
		if errors.Is(err, context.DeadlineExceeded) {
			stage = StageTimeout
		}
		return nil, &RenderError{Backend: c.Name(), Stage: stage, Err: err}
	}
	return pdf, nil
}

// HeadlessBackend wraps the HTML backend output and rasterizes it with an
// HTMLConverter. The two outputs stay visually equivalent because they share
// the template.
type HeadlessBackend struct {
	html *HTMLBackend
	conv HTMLConverter
}

// NewHeadlessBackend wires a converter behind the shared HTML layout.
func NewHeadlessBackend(html *HTMLBackend, conv HTMLConverter) *HeadlessBackend {
	return &HeadlessBackend{html: html, conv: conv}
}

// Name reports the underlying converter name.
func (b *HeadlessBackend) Name() string { return b.conv.Name() }

// Render produces a PDF artifact for the snapshot.
func (b *HeadlessBackend) Render(ctx context.Context, doc document.Snapshot) (Artifact, error) {
	htmlArt, err := b.html.Render(ctx, doc)
	if err != nil {
		var rerr *RenderError
		if errors.As(err, &rerr) {
			return Artifact{}, &RenderError{Backend: b.Name(), Stage: rerr.Stage, Err: rerr.Err}
		}
		return Artifact{}, &RenderError{Backend: b.Name(), Stage: StageTemplate, Err: err}
	}
	pdf, err := b.conv.ConvertHTML(ctx, string(htmlArt.Data))
	if err != nil {
		var rerr *RenderError
		if errors.As(err, &rerr) {
			return Artifact{}, rerr
		}
		return Artifact{}, &RenderError{Backend: b.Name(), Stage: StageRasterize, Err: err}
	}
	return Artifact{
		ContentType: "application/pdf",
		Filename:    pdfFilename(doc.Header.Number),
		Data:        pdf,
	}, nil
}

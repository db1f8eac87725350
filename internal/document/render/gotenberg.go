package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// GotenbergConverter sends HTML to a remote Gotenberg service, which runs
// the headless Chromium for us. Used instead of ChromiumConverter when the
// host has no local browser binary.
type GotenbergConverter struct {
	baseURL    string
	httpClient *http.Client
}

// NewGotenbergConverter constructs a converter against the given base URL.
func NewGotenbergConverter(baseURL string) *GotenbergConverter {
	return &GotenbergConverter{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name identifies the converter in render errors.
func (c *GotenbergConverter) Name() string { return "gotenberg" }

// Ping checks if the remote service is available.
func (c *GotenbergConverter) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// ConvertHTML posts the document HTML to Gotenberg's Chromium route with the
// A4 page geometry every backend shares.
func (c *GotenbergConverter) ConvertHTML(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, &RenderError{Backend: c.Name(), Stage: StageTemplate, Err: err}
	}
	if _, err := io.Copy(part, bytes.NewBufferString(html)); err != nil {
		return nil, &RenderError{Backend: c.Name(), Stage: StageTemplate, Err: err}
	}
	fields := map[string]string{
		"paperWidth":   fmt.Sprintf("%.2f", a4WidthIn),
		"paperHeight":  fmt.Sprintf("%.2f", a4HeightIn),
		"marginTop":    fmt.Sprintf("%.2f", marginIn),
		"marginBottom": fmt.Sprintf("%.2f", marginIn),
		"marginLeft":   fmt.Sprintf("%.2f", marginIn),
		"marginRight":  fmt.Sprintf("%.2f", marginIn),
		// Bounded grace period for embedded assets to finish loading.
		"waitDelay": "500ms",
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, &RenderError{Backend: c.Name(), Stage: StageTemplate, Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &RenderError{Backend: c.Name(), Stage: StageTemplate, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/forms/chromium/convert/html", c.baseURL), body)
	if err != nil {
		return nil, &RenderError{Backend: c.Name(), Stage: StageLaunch, Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		stage := StageLaunch
		if errors.Is(err, context.DeadlineExceeded) {
			stage = StageTimeout
		}
		return nil, &RenderError{Backend: c.Name(), Stage: stage, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &RenderError{
			Backend: c.Name(),
			Stage:   StageRasterize,
			Err:     fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(detail)),
		}
	}
	return io.ReadAll(resp.Body)
}

package documenthttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/facet-erp/facet-erp/internal/document"
	"github.com/facet-erp/facet-erp/internal/document/render"
)

type stubRepo struct {
	records []document.Record
	nextID  int64
}

func (s *stubRepo) CreateDocument(_ context.Context, rec document.Record) (*document.Record, error) {
	s.nextID++
	rec.ID = s.nextID
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	s.records = append(s.records, rec)
	return &rec, nil
}

func (s *stubRepo) GetDocument(_ context.Context, id int64) (*document.Record, error) {
	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, document.ErrDocumentNotFound
}

func (s *stubRepo) ListDocuments(_ context.Context, req document.ListDocumentsRequest) ([]document.Record, error) {
	out := make([]document.Record, 0, len(s.records))
	for _, rec := range s.records {
		if req.Kind != "" && rec.Snapshot.Kind != req.Kind {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *stubRepo) LastNumber(_ context.Context, kind document.Kind) (string, error) {
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Snapshot.Kind == kind {
			return s.records[i].Snapshot.Header.Number, nil
		}
	}
	return "", nil
}

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, id int64) (*document.Recipient, error) {
	return &document.Recipient{ID: id, CompanyName: "Meridian Gems LLC", City: "Antwerp", Country: "Belgium"}, nil
}

type stubPDFBackend struct {
	fail bool
}

func (b stubPDFBackend) Name() string { return "stub" }

func (b stubPDFBackend) Render(_ context.Context, doc document.Snapshot) (render.Artifact, error) {
	if b.fail {
		return render.Artifact{}, &render.RenderError{Backend: b.Name(), Stage: render.StageRasterize, Err: context.DeadlineExceeded}
	}
	return render.Artifact{
		ContentType: "application/pdf",
		Filename:    doc.Header.Number + ".pdf",
		Data:        []byte("%PDF-1.7 stub"),
	}, nil
}

func newTestHandler(t *testing.T, backend render.Backend) (*Handler, *stubRepo) {
	t.Helper()
	repo := &stubRepo{}
	logger := slog.New(slog.DiscardHandler)
	service := document.NewService(repo, stubResolver{}, logger)
	html, err := render.NewHTMLBackend(render.DefaultConfig())
	require.NoError(t, err)
	pdf := map[string]render.Backend{"stub": backend}
	return NewHandler(logger, service, html, pdf, "stub", nil, nil), repo
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.MountRoutes(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func createBody() string {
	return `{
		"kind": "invoice",
		"date": "2024-03-14",
		"recipient_id": 7,
		"shipment_cost": "120",
		"items": [
			{"description": "Round Brilliant", "carat": "1.52", "color": "F", "clarity": "VS1", "lab": "GIA", "report_no": "2201234567", "price_per_carat": "8200"}
		]
	}`
}

func TestCreateDocumentReturnsGeneratedNumber(t *testing.T) {
	h, _ := newTestHandler(t, stubPDFBackend{})

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(createBody()))
	rr := serve(h, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp documentResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "CD-0001A/1403", resp.Number)
	require.Equal(t, "invoice", resp.Kind)
	require.Equal(t, "2024-04-13", resp.DueDate)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "12464", resp.Items[0].Total)
	require.Equal(t, "12584", resp.GrandTotal)
	require.NotEmpty(t, resp.AmountInWords)
}

func TestCreateDocumentRejectsUnknownKind(t *testing.T) {
	h, _ := newTestHandler(t, stubPDFBackend{})

	body := strings.Replace(createBody(), "invoice", "quotation", 1)
	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(body))
	rr := serve(h, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateDocumentRejectsMissingItems(t *testing.T) {
	h, _ := newTestHandler(t, stubPDFBackend{})

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"kind":"memo","recipient_id":7,"items":[]}`))
	rr := serve(h, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDetailReturnsNotFound(t *testing.T) {
	h, _ := newTestHandler(t, stubPDFBackend{})

	req := httptest.NewRequest(http.MethodGet, "/documents/42", nil)
	rr := serve(h, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListFiltersByKind(t *testing.T) {
	h, _ := newTestHandler(t, stubPDFBackend{})

	rr := serve(h, httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(createBody())))
	require.Equal(t, http.StatusCreated, rr.Code)
	memoBody := strings.Replace(createBody(), "invoice", "memo", 1)
	rr = serve(h, httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(memoBody)))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/documents?kind=memo", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var listResp struct {
		Documents []documentResponse `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listResp))
	require.Len(t, listResp.Documents, 1)
	require.Equal(t, "MO-0001", listResp.Documents[0].Number)
}

func TestRenderHTMLReturnsPage(t *testing.T) {
	h, _ := newTestHandler(t, stubPDFBackend{})

	rr := serve(h, httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(createBody())))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/documents/1/html", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rr.Body.String(), "CD-0001A/1403")
	require.Contains(t, rr.Body.String(), "Meridian Gems LLC")
}

func TestRenderPDFSetsAttachmentFilename(t *testing.T) {
	h, _ := newTestHandler(t, stubPDFBackend{})

	rr := serve(h, httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(createBody())))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/documents/1/pdf", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "CD-0001A/1403.pdf")
}

func TestRenderPDFRejectsUnknownBackend(t *testing.T) {
	h, _ := newTestHandler(t, stubPDFBackend{})

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/documents/1/pdf?backend=laser", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRenderPDFMapsBackendFailureToBadGateway(t *testing.T) {
	h, _ := newTestHandler(t, stubPDFBackend{fail: true})

	rr := serve(h, httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(createBody())))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/documents/1/pdf", nil))
	require.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestDeliverValidatesEmail(t *testing.T) {
	h, _ := newTestHandler(t, stubPDFBackend{})

	rr := serve(h, httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(createBody())))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = serve(h, httptest.NewRequest(http.MethodPost, "/documents/1/deliver", strings.NewReader(`{"email":"not-an-email"}`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

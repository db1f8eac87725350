// Package documenthttp exposes the invoice and memo JSON API.
package documenthttp

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/facet-erp/facet-erp/internal/document"
	"github.com/facet-erp/facet-erp/internal/document/render"
	"github.com/facet-erp/facet-erp/internal/observability"
	"github.com/facet-erp/facet-erp/internal/platform/httpx"
	"github.com/facet-erp/facet-erp/jobs"
)

const dateLayout = "2006-01-02"

// Handler wires HTTP endpoints for documents.
type Handler struct {
	logger     *slog.Logger
	service    *document.Service
	html       *render.HTMLBackend
	pdf        map[string]render.Backend
	defaultPDF string
	jobs       *jobs.Client
	metrics    *observability.Metrics
	validate   *validator.Validate
}

// NewHandler constructs a Handler value. pdfBackends maps the query parameter
// value to the backend that serves it; defaultPDF picks the one used when the
// parameter is absent.
func NewHandler(logger *slog.Logger, service *document.Service, html *render.HTMLBackend, pdfBackends map[string]render.Backend, defaultPDF string, jobsClient *jobs.Client, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		html:       html,
		pdf:        pdfBackends,
		defaultPDF: defaultPDF,
		jobs:       jobsClient,
		metrics:    metrics,
		validate:   validator.New(),
	}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
		r.Get("/{id}/html", h.renderHTML)
		r.Get("/{id}/pdf", h.renderPDF)
		r.Post("/{id}/deliver", h.deliver)
	})
}

type lineItemRequest struct {
	Description   string          `json:"description"`
	Carat         decimal.Decimal `json:"carat" validate:"required"`
	Color         string          `json:"color"`
	Clarity       string          `json:"clarity"`
	Lab           string          `json:"lab"`
	ReportNo      string          `json:"report_no"`
	PricePerCarat decimal.Decimal `json:"price_per_carat" validate:"required"`
}

type createDocumentRequest struct {
	Kind             string            `json:"kind" validate:"required"`
	Date             string            `json:"date"`
	DueDate          string            `json:"due_date"`
	PaymentTermsDays int               `json:"payment_terms_days" validate:"omitempty,min=1"`
	RecipientID      int64             `json:"recipient_id" validate:"required,min=1"`
	Description      string            `json:"description"`
	ShipmentCost     decimal.Decimal   `json:"shipment_cost"`
	Discount         decimal.Decimal   `json:"discount"`
	CollectedPayment decimal.Decimal   `json:"collected_payment"`
	Items            []lineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type lineItemResponse struct {
	Description   string `json:"description"`
	Carat         string `json:"carat"`
	Color         string `json:"color"`
	Clarity       string `json:"clarity"`
	Lab           string `json:"lab"`
	ReportNo      string `json:"report_no"`
	PricePerCarat string `json:"price_per_carat"`
	Total         string `json:"total"`
}

type documentResponse struct {
	ID               int64              `json:"id"`
	Kind             string             `json:"kind"`
	Number           string             `json:"number"`
	Date             string             `json:"date"`
	DueDate          string             `json:"due_date"`
	PaymentTermsDays int                `json:"payment_terms_days"`
	RecipientID      int64              `json:"recipient_id"`
	Description      string             `json:"description,omitempty"`
	ShipmentCost     string             `json:"shipment_cost"`
	Discount         string             `json:"discount"`
	CollectedPayment string             `json:"collected_payment"`
	Items            []lineItemResponse `json:"items,omitempty"`
	Subtotal         string             `json:"subtotal,omitempty"`
	GrandTotal       string             `json:"grand_total,omitempty"`
	AmountInWords    string             `json:"amount_in_words,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// create handles POST /documents. The number is generated server-side and
// returned in the response.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	kind, ok := parseKind(req.Kind)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "kind must be invoice or memo")
		return
	}

	input := document.CreateDocumentInput{
		Kind:             kind,
		PaymentTermsDays: req.PaymentTermsDays,
		RecipientID:      req.RecipientID,
		Description:      req.Description,
		ShipmentCost:     req.ShipmentCost,
		Discount:         req.Discount,
		CollectedPayment: req.CollectedPayment,
	}
	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		input.Date = date
	}
	if req.DueDate != "" {
		due, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "due_date must be YYYY-MM-DD")
			return
		}
		input.DueDate = due
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, document.LineItemInput{
			Description:   item.Description,
			Carat:         item.Carat,
			Color:         item.Color,
			Clarity:       item.Clarity,
			Lab:           item.Lab,
			ReportNo:      item.ReportNo,
			PricePerCarat: item.PricePerCarat,
		})
	}

	rec, err := h.service.CreateDocument(r.Context(), input)
	if err != nil {
		h.respondError(w, r, "create document", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(rec, true))
}

// list handles GET /documents.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := document.ListDocumentsRequest{
		Limit:  parseInt(r.URL.Query().Get("limit")),
		Offset: parseInt(r.URL.Query().Get("offset")),
	}
	if kindParam := r.URL.Query().Get("kind"); kindParam != "" {
		kind, ok := parseKind(kindParam)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "kind must be invoice or memo")
			return
		}
		req.Kind = kind
	}

	records, err := h.service.ListDocuments(r.Context(), req)
	if err != nil {
		h.respondError(w, r, "list documents", err)
		return
	}
	out := make([]documentResponse, 0, len(records))
	for i := range records {
		out = append(out, toResponse(&records[i], false))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": out})
}

// detail handles GET /documents/{id}.
func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(rec, true))
}

// renderHTML handles GET /documents/{id}/html. The returned page carries
// print CSS so a browser's print dialog produces the same layout as the
// PDF backends.
func (h *Handler) renderHTML(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	art, err := h.html.Render(r.Context(), rec.Snapshot)
	if err != nil {
		h.respondError(w, r, "render html", err)
		return
	}
	w.Header().Set("Content-Type", art.ContentType)
	_, _ = w.Write(art.Data)
}

// renderPDF handles GET /documents/{id}/pdf?backend=chromium|draw.
func (h *Handler) renderPDF(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("backend")
	if name == "" {
		name = h.defaultPDF
	}
	backend, ok := h.pdf[name]
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Unknown Backend", "backend must be one of: "+strings.Join(h.backendNames(), ", "))
		return
	}

	rec, loaded := h.load(w, r)
	if !loaded {
		return
	}
	art, err := backend.Render(r.Context(), rec.Snapshot)
	h.metrics.ObserveRender(name, err)
	if err != nil {
		h.respondError(w, r, "render pdf", err)
		return
	}
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	_, _ = w.Write(art.Data)
}

type deliverRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// deliver handles POST /documents/{id}/deliver. Rendering and mailing run on
// the worker; the response only acknowledges the enqueue.
func (h *Handler) deliver(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}

	var req deliverRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	info, err := h.jobs.EnqueueDocumentRender(r.Context(), jobs.DocumentRenderPayload{
		DocumentID: rec.ID,
		Email:      req.Email,
	})
	if err != nil {
		h.respondError(w, r, "enqueue delivery", err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{
		"document_id": rec.ID,
		"task_id":     info.ID,
	})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*document.Record, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be an integer")
		return nil, false
	}
	rec, err := h.service.GetDocument(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "get document", err)
		return nil, false
	}
	return rec, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *document.ValidationError
	var rerr *render.RenderError
	switch {
	case errors.As(err, &verr):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", verr.Error())
	case errors.Is(err, document.ErrAmountTooLarge):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Amount Too Large", err.Error())
	case errors.As(err, &rerr):
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", rerr.Backend+" backend failed during "+rerr.Stage)
	default:
		if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrDuplicate) {
			h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
		}
		httpx.RespondError(w, err)
	}
}

func (h *Handler) backendNames() []string {
	names := make([]string, 0, len(h.pdf))
	for name := range h.pdf {
		names = append(names, name)
	}
	return names
}

func parseKind(value string) (document.Kind, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(document.KindInvoice):
		return document.KindInvoice, true
	case string(document.KindMemo):
		return document.KindMemo, true
	default:
		return "", false
	}
}

func parseInt(value string) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return v
}

func toResponse(rec *document.Record, withItems bool) documentResponse {
	resp := documentResponse{
		ID:               rec.ID,
		Kind:             strings.ToLower(string(rec.Snapshot.Kind)),
		Number:           rec.Snapshot.Header.Number,
		Date:             rec.Snapshot.Header.Date.Format(dateLayout),
		DueDate:          rec.Snapshot.Header.EffectiveDueDate().Format(dateLayout),
		PaymentTermsDays: rec.Snapshot.Header.PaymentTermsDays,
		RecipientID:      rec.RecipientID,
		Description:      rec.Snapshot.Header.Description,
		ShipmentCost:     rec.Snapshot.Header.ShipmentCost.String(),
		Discount:         rec.Snapshot.Header.Discount.String(),
		CollectedPayment: rec.Snapshot.Header.CollectedPayment.String(),
		CreatedAt:        rec.CreatedAt,
	}
	if !withItems {
		return resp
	}
	for _, item := range rec.Snapshot.Items {
		resp.Items = append(resp.Items, lineItemResponse{
			Description:   item.Description,
			Carat:         item.Carat.String(),
			Color:         item.Color,
			Clarity:       item.Clarity,
			Lab:           item.Lab,
			ReportNo:      item.ReportNo,
			PricePerCarat: item.PricePerCarat.String(),
			Total:         item.Total().String(),
		})
	}
	if totals, err := rec.Snapshot.ComputeTotals(); err == nil {
		resp.Subtotal = totals.Subtotal.String()
		resp.GrandTotal = totals.GrandTotal.String()
		resp.AmountInWords = totals.AmountInWords
	}
	return resp
}

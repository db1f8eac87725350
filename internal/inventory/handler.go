package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/facet-erp/facet-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the stock.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/inventory/diamonds", func(r chi.Router) {
		r.Get("/", h.search)
		r.Post("/", h.create)
		r.Get("/{id}", h.detail)
		r.Patch("/{id}/status", h.updateStatus)
	})
}

type createDiamondRequest struct {
	StockRef      string          `json:"stock_ref" validate:"required"`
	Shape         string          `json:"shape" validate:"required"`
	Carat         decimal.Decimal `json:"carat" validate:"required"`
	Color         string          `json:"color"`
	Clarity       string          `json:"clarity"`
	Cut           string          `json:"cut"`
	Lab           string          `json:"lab"`
	ReportNo      string          `json:"report_no"`
	PricePerCarat decimal.Decimal `json:"price_per_carat" validate:"required"`
	Location      string          `json:"location"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDiamondRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	d, err := h.service.Create(r.Context(), CreateDiamondInput{
		StockRef:      req.StockRef,
		Shape:         req.Shape,
		Carat:         req.Carat,
		Color:         req.Color,
		Clarity:       req.Clarity,
		Cut:           req.Cut,
		Lab:           req.Lab,
		ReportNo:      req.ReportNo,
		PricePerCarat: req.PricePerCarat,
		Location:      req.Location,
	})
	if err != nil {
		h.respondError(w, "create diamond", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be an integer")
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get diamond", err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be an integer")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	status, err := ParseStatus(strings.ToUpper(req.Status))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "status must be AVAILABLE, ON_MEMO or SOLD")
		return
	}
	if err := h.service.UpdateStatus(r.Context(), id, status); err != nil {
		h.respondError(w, "update diamond status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := SearchFilter{
		Shape:    q.Get("shape"),
		Color:    q.Get("color"),
		Clarity:  q.Get("clarity"),
		Lab:      q.Get("lab"),
		MinCarat: parseDecimal(q.Get("min_carat")),
		MaxCarat: parseDecimal(q.Get("max_carat")),
		MinPrice: parseDecimal(q.Get("min_price")),
		MaxPrice: parseDecimal(q.Get("max_price")),
		Limit:    parseIntDefault(q.Get("limit"), 0),
		Offset:   parseIntDefault(q.Get("offset"), 0),
	}
	if statusParam := q.Get("status"); statusParam != "" {
		status, err := ParseStatus(strings.ToUpper(statusParam))
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "status must be AVAILABLE, ON_MEMO or SOLD")
			return
		}
		filter.Status = status
	}

	stones, err := h.service.Search(r.Context(), filter)
	if err != nil {
		h.respondError(w, "search diamonds", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"diamonds": stones})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func parseDecimal(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseIntDefault(value string, def int) int {
	if value == "" {
		return def
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return v
}

package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/facet-erp/facet-erp/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Handler wires HTTP endpoints for sales.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/sales", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
		r.Get("/summary", h.summary)
	})
}

type createSaleRequest struct {
	SaleDate       string          `json:"sale_date"`
	BuyerName      string          `json:"buyer_name" validate:"required"`
	DocumentNumber string          `json:"document_number"`
	SaleAmount     decimal.Decimal `json:"sale_amount" validate:"required"`
	CostAmount     decimal.Decimal `json:"cost_amount"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	GSTAmount      decimal.Decimal `json:"gst_amount"`
	Notes          string          `json:"notes"`
}

type saleResponse struct {
	Sale
	Profit string `json:"profit"`
}

func toSaleResponse(s *Sale) saleResponse {
	return saleResponse{Sale: *s, Profit: s.Profit().String()}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CreateSaleInput{
		BuyerName:      req.BuyerName,
		DocumentNumber: req.DocumentNumber,
		SaleAmount:     req.SaleAmount,
		CostAmount:     req.CostAmount,
		ShippingCost:   req.ShippingCost,
		GSTAmount:      req.GSTAmount,
		Notes:          req.Notes,
	}
	if req.SaleDate != "" {
		date, err := time.Parse(dateLayout, req.SaleDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "sale_date must be YYYY-MM-DD")
			return
		}
		input.SaleDate = date
	}
	sale, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create sale", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toSaleResponse(sale))
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be an integer")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSaleResponse(sale))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListSalesRequest{}
	q := r.URL.Query()
	if from := q.Get("from"); from != "" {
		date, err := time.Parse(dateLayout, from)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be YYYY-MM-DD")
			return
		}
		req.From = date
	}
	if to := q.Get("to"); to != "" {
		date, err := time.Parse(dateLayout, to)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must be YYYY-MM-DD")
			return
		}
		req.To = date
	}
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.Offset, _ = strconv.Atoi(q.Get("offset"))

	sales, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, "list sales", err)
		return
	}
	out := make([]saleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, toSaleResponse(&sales[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales": out})
}

// summary handles GET /sales/summary?year=2026&month=3. Without year/month it
// rolls up the current month.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "month must be 1-12")
		return
	}

	sum, err := h.service.MonthlySummary(r.Context(), year, time.Month(month))
	if err != nil {
		h.respondError(w, "sales summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

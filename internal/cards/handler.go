package cards

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

// Handler wires HTTP endpoints for card transactions.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers card routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/cards/transactions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/totals", h.totals)
	})
}

type createTransactionRequest struct {
	CardLabel string          `json:"card_label" validate:"required"`
	TxDate    string          `json:"tx_date"`
	Merchant  string          `json:"merchant" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Category  string          `json:"category"`
	Notes     string          `json:"notes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CreateTransactionInput{
		CardLabel: req.CardLabel,
		Merchant:  req.Merchant,
		Amount:    req.Amount,
		Category:  req.Category,
		Notes:     req.Notes,
	}
	if req.TxDate != "" {
		date, err := time.Parse(dateLayout, req.TxDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "tx_date must be YYYY-MM-DD")
			return
		}
		input.TxDate = date
	}
	tx, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create card transaction", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListTransactionsRequest{CardLabel: q.Get("card")}
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.Offset, _ = strconv.Atoi(q.Get("offset"))
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

	txs, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, "list card transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

// totals handles GET /cards/transactions/totals?year=2026&month=3.
func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
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

	totals, err := h.service.MonthlyTotals(r.Context(), year, time.Month(month))
	if err != nil {
		h.respondError(w, "card totals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"totals": totals})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

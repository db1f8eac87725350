package vendors

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

// Handler wires HTTP endpoints for vendor purchases.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers vendor routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/vendors", func(r chi.Router) {
		r.Get("/outstanding", h.outstanding)
		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", h.createPurchase)
			r.Get("/", h.listPurchases)
			r.Get("/{id}", h.purchaseDetail)
			r.Post("/{id}/payments", h.recordPayment)
			r.Post("/{id}/payment-status", h.togglePaid)
		})
	})
}

type createPurchaseRequest struct {
	VendorName   string          `json:"vendor_name" validate:"required"`
	InvoiceRef   string          `json:"invoice_ref"`
	PurchaseDate string          `json:"purchase_date"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	Notes        string          `json:"notes"`
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CreatePurchaseInput{
		VendorName: req.VendorName,
		InvoiceRef: req.InvoiceRef,
		Amount:     req.Amount,
		Notes:      req.Notes,
	}
	if req.PurchaseDate != "" {
		date, err := time.Parse(dateLayout, req.PurchaseDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "purchase_date must be YYYY-MM-DD")
			return
		}
		input.PurchaseDate = date
	}
	purchase, err := h.service.CreatePurchase(r.Context(), input)
	if err != nil {
		h.respondError(w, "create purchase", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, purchase)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	purchases, err := h.service.ListPurchases(r.Context(), r.URL.Query().Get("vendor"), limit, offset)
	if err != nil {
		h.respondError(w, "list purchases", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"purchases": purchases})
}

func (h *Handler) purchaseDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	purchase, payments, err := h.service.GetPurchase(r.Context(), id)
	if err != nil {
		h.respondError(w, "get purchase", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"purchase": purchase,
		"payments": payments,
	})
}

type recordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	PaidAt string          `json:"paid_at"`
	Method string          `json:"method"`
	Note   string          `json:"note"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req recordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := RecordPaymentInput{
		PurchaseID: id,
		Amount:     req.Amount,
		Method:     req.Method,
		Note:       req.Note,
	}
	if req.PaidAt != "" {
		paidAt, err := time.Parse(dateLayout, req.PaidAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "paid_at must be YYYY-MM-DD")
			return
		}
		input.PaidAt = paidAt
	}
	payment, err := h.service.RecordPayment(r.Context(), input)
	if err != nil {
		h.respondError(w, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) togglePaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	purchase, err := h.service.TogglePaid(r.Context(), id)
	if err != nil {
		h.respondError(w, "toggle paid", err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchase)
}

func (h *Handler) outstanding(w http.ResponseWriter, r *http.Request) {
	balances, err := h.service.Outstanding(r.Context())
	if err != nil {
		h.respondError(w, "outstanding balances", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"balances": balances})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrOverpayment) {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Overpayment", err.Error())
		return
	}
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

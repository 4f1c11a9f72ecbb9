package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/washdesk/api/internal/domain"
	"github.com/washdesk/api/internal/platform/auth"
	"github.com/washdesk/api/internal/platform/httpx"
	"github.com/washdesk/api/internal/services"
)

const maxTransactionBodySize = 8 * 1024

// TransactionHandlers exposes the operator's sale records.
type TransactionHandlers struct {
	authn        *auth.Authenticator
	transactions services.TransactionService
}

// NewTransactionHandlers constructs handlers for the /transactions endpoints.
func NewTransactionHandlers(authn *auth.Authenticator, transactions services.TransactionService) *TransactionHandlers {
	return &TransactionHandlers{
		authn:        authn,
		transactions: transactions,
	}
}

// Routes wires the /transactions endpoints onto the provided router.
func (h *TransactionHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/", h.record)
	r.Get("/", h.listByDate)
	r.Delete("/{transactionId}", h.delete)
}

type recordTransactionRequest struct {
	ServiceType string `json:"service_type"`
	CarSize     string `json:"car_size"`
	UseCoupon   bool   `json:"use_coupon"`
	StaffID     string `json:"staff_id"`
}

type transactionPayload struct {
	ID            string `json:"id"`
	Timestamp     string `json:"timestamp"`
	ServiceType   string `json:"service_type"`
	CarSize       string `json:"car_size,omitempty"`
	CouponApplied bool   `json:"coupon_applied"`
	StaffID       string `json:"staff_id"`
	StaffName     string `json:"staff_name"`
	StaffNameEN   string `json:"staff_name_en,omitempty"`
	Price         int64  `json:"price"`
	Commission    int64  `json:"commission"`
}

func buildTransactionPayload(tx domain.Transaction) transactionPayload {
	payload := transactionPayload{
		ID:            tx.ID,
		Timestamp:     formatTime(tx.Timestamp),
		ServiceType:   tx.ServiceTypeID,
		CouponApplied: tx.CouponApplied,
		StaffID:       tx.StaffID,
		StaffName:     tx.StaffName,
		StaffNameEN:   tx.StaffNameEN,
		Price:         tx.Price,
		Commission:    tx.Commission,
	}
	if tx.CarSize != nil {
		payload.CarSize = string(*tx.CarSize)
	}
	return payload
}

func (h *TransactionHandlers) record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.transactions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("transaction_service_unavailable", "transaction service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxTransactionBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req recordTransactionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	cmd := services.RecordTransactionCommand{
		OperatorID:    uid,
		ServiceTypeID: req.ServiceType,
		UseCoupon:     req.UseCoupon,
		StaffID:       req.StaffID,
	}
	if size := strings.TrimSpace(req.CarSize); size != "" {
		carSize := domain.CarSize(size)
		cmd.CarSize = &carSize
	}

	tx, err := h.transactions.Record(ctx, cmd)
	if err != nil {
		h.writeTransactionError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{"transaction": buildTransactionPayload(tx)})
}

func (h *TransactionHandlers) listByDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.transactions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("transaction_service_unavailable", "transaction service is unavailable", http.StatusServiceUnavailable))
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "date must be formatted as YYYY-MM-DD", http.StatusBadRequest))
		return
	}

	transactions, err := h.transactions.ListByDate(ctx, services.TransactionListQuery{OperatorID: uid, Date: date})
	if err != nil {
		h.writeTransactionError(ctx, w, err)
		return
	}

	payload := make([]transactionPayload, 0, len(transactions))
	for _, tx := range transactions {
		payload = append(payload, buildTransactionPayload(tx))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"transactions": payload})
}

func (h *TransactionHandlers) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.transactions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("transaction_service_unavailable", "transaction service is unavailable", http.StatusServiceUnavailable))
		return
	}

	transactionID := strings.TrimSpace(chi.URLParam(r, "transactionId"))
	if transactionID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "transaction id is required", http.StatusBadRequest))
		return
	}

	if err := h.transactions.Delete(ctx, services.DeleteTransactionCommand{OperatorID: uid, TransactionID: transactionID}); err != nil {
		h.writeTransactionError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandlers) writeTransactionError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrTransactionIncompleteSelection):
		httpx.WriteError(ctx, w, httpx.NewError("incomplete_selection", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrTransactionInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrTransactionStaffNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("staff_not_found", "staff member not found", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrTransactionNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("transaction_not_found", "transaction not found", http.StatusNotFound))
	case errors.Is(err, services.ErrTransactionConflict):
		httpx.WriteError(ctx, w, httpx.NewError("transaction_conflict", "transaction already exists", http.StatusConflict))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_timeout", "request cancelled", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("transaction_service_unavailable", "transaction service is unavailable", http.StatusServiceUnavailable))
	}
}

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

const maxStaffBodySize = 4 * 1024

// StaffHandlers manages the operator's roster.
type StaffHandlers struct {
	authn *auth.Authenticator
	staff services.StaffService
}

// NewStaffHandlers constructs handlers for the /staff endpoints.
func NewStaffHandlers(authn *auth.Authenticator, staff services.StaffService) *StaffHandlers {
	return &StaffHandlers{
		authn: authn,
		staff: staff,
	}
}

// Routes wires the /staff endpoints onto the provided router.
func (h *StaffHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{staffId}", h.delete)
}

type createStaffRequest struct {
	Name   string `json:"name"`
	NameEN string `json:"name_en"`
}

type staffPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NameEN    string `json:"name_en,omitempty"`
	CreatedAt string `json:"created_at"`
}

func buildStaffPayload(member domain.Staff) staffPayload {
	return staffPayload{
		ID:        member.ID,
		Name:      member.Name,
		NameEN:    member.NameEN,
		CreatedAt: formatTime(member.CreatedAt),
	}
}

func (h *StaffHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.staff == nil {
		httpx.WriteError(ctx, w, httpx.NewError("staff_service_unavailable", "staff service is unavailable", http.StatusServiceUnavailable))
		return
	}

	roster, err := h.staff.List(ctx, uid)
	if err != nil {
		h.writeStaffError(ctx, w, err)
		return
	}

	payload := make([]staffPayload, 0, len(roster))
	for _, member := range roster {
		payload = append(payload, buildStaffPayload(member))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"staff": payload})
}

func (h *StaffHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.staff == nil {
		httpx.WriteError(ctx, w, httpx.NewError("staff_service_unavailable", "staff service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxStaffBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req createStaffRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	member, err := h.staff.Create(ctx, services.CreateStaffCommand{
		OperatorID: uid,
		Name:       req.Name,
		NameEN:     req.NameEN,
	})
	if err != nil {
		h.writeStaffError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{"staff": buildStaffPayload(member)})
}

func (h *StaffHandlers) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.staff == nil {
		httpx.WriteError(ctx, w, httpx.NewError("staff_service_unavailable", "staff service is unavailable", http.StatusServiceUnavailable))
		return
	}

	staffID := strings.TrimSpace(chi.URLParam(r, "staffId"))
	if staffID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "staff id is required", http.StatusBadRequest))
		return
	}

	if err := h.staff.Delete(ctx, services.DeleteStaffCommand{OperatorID: uid, StaffID: staffID}); err != nil {
		h.writeStaffError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StaffHandlers) writeStaffError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrStaffInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrStaffNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("staff_not_found", "staff member not found", http.StatusNotFound))
	case errors.Is(err, services.ErrStaffConflict):
		httpx.WriteError(ctx, w, httpx.NewError("staff_conflict", "staff member already exists", http.StatusConflict))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_timeout", "request cancelled", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("staff_service_unavailable", "staff service is unavailable", http.StatusServiceUnavailable))
	}
}

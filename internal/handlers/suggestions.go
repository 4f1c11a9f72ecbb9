package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/washdesk/api/internal/platform/auth"
	"github.com/washdesk/api/internal/platform/httpx"
	"github.com/washdesk/api/internal/services"
)

const maxSuggestionBodySize = 4 * 1024

// SuggestionHandlers exposes the AI-assisted service suggestions.
type SuggestionHandlers struct {
	authn       *auth.Authenticator
	suggestions services.SuggestionService
}

// NewSuggestionHandlers constructs handlers for the /suggestions endpoints.
func NewSuggestionHandlers(authn *auth.Authenticator, suggestions services.SuggestionService) *SuggestionHandlers {
	return &SuggestionHandlers{
		authn:       authn,
		suggestions: suggestions,
	}
}

// Routes wires the /suggestions endpoints onto the provided router.
func (h *SuggestionHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/", h.suggest)
}

type suggestRequest struct {
	Prompt string `json:"prompt"`
}

type suggestionMatchPayload struct {
	Text        string `json:"text"`
	ServiceType string `json:"service_type,omitempty"`
}

func (h *SuggestionHandlers) suggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.suggestions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("suggestion_service_unavailable", "suggestion service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxSuggestionBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req suggestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	result, err := h.suggestions.Suggest(ctx, services.SuggestionQuery{OperatorID: uid, Prompt: req.Prompt})
	if err != nil {
		h.writeSuggestionError(ctx, w, err)
		return
	}

	payload := make([]suggestionMatchPayload, 0, len(result.Suggestions))
	for _, match := range result.Suggestions {
		payload = append(payload, suggestionMatchPayload{
			Text:        match.Text,
			ServiceType: match.ServiceTypeID,
		})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"suggestions": payload})
}

func (h *SuggestionHandlers) writeSuggestionError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrSuggestionInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_timeout", "request cancelled", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("suggestion_service_unavailable", "suggestion service is unavailable", http.StatusServiceUnavailable))
	}
}

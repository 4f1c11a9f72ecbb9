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

const maxQuoteBodySize = 4 * 1024

// CatalogHandlers serves the service catalog and pricing previews.
type CatalogHandlers struct {
	authn    *auth.Authenticator
	catalog  domain.Catalog
	resolver *services.PricingResolver
}

// NewCatalogHandlers constructs handlers for the /catalog endpoints.
func NewCatalogHandlers(authn *auth.Authenticator, catalog domain.Catalog, resolver *services.PricingResolver) *CatalogHandlers {
	return &CatalogHandlers{
		authn:    authn,
		catalog:  catalog,
		resolver: resolver,
	}
}

// Routes wires the /catalog endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.listCatalog)
	r.Post("/quote", h.quote)
}

type priceEntryPayload struct {
	Price            int64  `json:"price"`
	Commission       int64  `json:"commission"`
	CouponCommission *int64 `json:"couponCommission,omitempty"`
}

type serviceTypePayload struct {
	ID        string                       `json:"id"`
	LabelEN   string                       `json:"labelEn"`
	LabelAR   string                       `json:"labelAr"`
	NeedsSize bool                         `json:"needsSize"`
	HasCoupon bool                         `json:"hasCoupon"`
	Prices    map[string]priceEntryPayload `json:"prices"`
}

func (h *CatalogHandlers) listCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireIdentity(ctx, w); !ok {
		return
	}

	entries := h.catalog.Services()
	payload := make([]serviceTypePayload, 0, len(entries))
	for _, entry := range entries {
		prices := make(map[string]priceEntryPayload, len(entry.Prices))
		for key, price := range entry.Prices {
			item := priceEntryPayload{Price: price.Price, Commission: price.Commission}
			if price.CouponCommission != nil {
				value := *price.CouponCommission
				item.CouponCommission = &value
			}
			prices[key] = item
		}
		payload = append(payload, serviceTypePayload{
			ID:        entry.ID,
			LabelEN:   entry.LabelEN,
			LabelAR:   entry.LabelAR,
			NeedsSize: entry.NeedsSize,
			HasCoupon: entry.HasCoupon,
			Prices:    prices,
		})
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{"services": payload})
}

type quoteRequest struct {
	ServiceType string `json:"service_type"`
	CarSize     string `json:"car_size"`
	UseCoupon   bool   `json:"use_coupon"`
}

type quotePayload struct {
	Incomplete    bool   `json:"incomplete"`
	Reason        string `json:"reason,omitempty"`
	ServiceType   string `json:"service_type,omitempty"`
	PriceKey      string `json:"price_key,omitempty"`
	Price         int64  `json:"price"`
	Commission    int64  `json:"commission"`
	CouponApplied bool   `json:"coupon_applied"`
}

func (h *CatalogHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireIdentity(ctx, w); !ok {
		return
	}
	if h.resolver == nil {
		httpx.WriteError(ctx, w, httpx.NewError("pricing_unavailable", "pricing is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxQuoteBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req quoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	selection := services.PriceSelection{
		ServiceTypeID: req.ServiceType,
		UseCoupon:     req.UseCoupon,
	}
	if size := strings.TrimSpace(req.CarSize); size != "" {
		carSize := domain.CarSize(size)
		selection.CarSize = &carSize
	}

	resolution, err := h.resolver.Resolve(selection)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPricingInvalidCarSize):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("pricing_unavailable", "pricing is unavailable", http.StatusServiceUnavailable))
		}
		return
	}

	if resolution.Incomplete {
		writeJSONResponse(w, http.StatusOK, quotePayload{Incomplete: true, Reason: resolution.Reason})
		return
	}

	resolved := resolution.Resolved
	writeJSONResponse(w, http.StatusOK, quotePayload{
		ServiceType:   resolved.ServiceTypeID,
		PriceKey:      resolved.PriceKey,
		Price:         resolved.Price,
		Commission:    resolved.Commission,
		CouponApplied: resolved.CouponApplied,
	})
}

func requireIdentity(ctx context.Context, w http.ResponseWriter) (string, bool) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return "", false
	}
	return identity.UID, true
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

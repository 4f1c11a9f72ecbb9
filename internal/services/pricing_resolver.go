package services

import (
	"errors"
	"fmt"
	"strings"

	domain "github.com/washdesk/api/internal/domain"
)

var (
	// ErrPricingInvalidCarSize indicates the car size value is not one of the size keys.
	ErrPricingInvalidCarSize = errors.New("pricing: invalid car size")
	// ErrPricingCatalogMisconfigured indicates the catalog lacks a price entry it is required to have.
	ErrPricingCatalogMisconfigured = errors.New("pricing: catalog misconfigured")
)

// Incomplete reasons reported when a selection cannot be priced yet.
const (
	IncompleteServiceType        = "service_type_required"
	IncompleteUnknownServiceType = "service_type_unknown"
	IncompleteCarSize            = "car_size_required"
)

// PriceSelection is the caller's raw selection. CarSize is nil when the user
// has not picked one; UseCoupon is the requested flag, before any downgrade.
type PriceSelection struct {
	ServiceTypeID string
	CarSize       *domain.CarSize
	UseCoupon     bool
}

// ResolvedPrice is the priced outcome of a complete selection. CouponApplied
// is the effective flag: false when the coupon was requested but the resolved
// price key carries no coupon commission.
type ResolvedPrice struct {
	ServiceTypeID string
	PriceKey      string
	Price         int64
	Commission    int64
	CouponApplied bool
}

// PriceResolution carries either a resolved price or an incomplete marker.
// Incomplete selections are an expected UI state, not a failure.
type PriceResolution struct {
	Incomplete bool
	Reason     string
	Resolved   ResolvedPrice
}

// PricingResolver prices selections against an immutable catalog. It performs
// no I/O and is safe for concurrent use.
type PricingResolver struct {
	catalog domain.Catalog
}

// NewPricingResolver wraps the catalog in a resolver.
func NewPricingResolver(catalog domain.Catalog) *PricingResolver {
	return &PricingResolver{catalog: catalog}
}

// Resolve prices the selection. An empty or unknown service type, or a
// missing car size for a sized service, yields an incomplete resolution. A
// car size supplied for a sizeless service is ignored. The coupon downgrades
// silently when the resolved price key has no coupon commission; when it does
// apply, the price drops to zero and the coupon commission replaces the base
// commission.
func (r *PricingResolver) Resolve(sel PriceSelection) (PriceResolution, error) {
	serviceTypeID := strings.TrimSpace(sel.ServiceTypeID)
	if serviceTypeID == "" {
		return PriceResolution{Incomplete: true, Reason: IncompleteServiceType}, nil
	}

	// A service type the catalog does not know is the same intermediate state
	// as no selection at all: the caller has not landed on a priceable entry.
	entry, ok := r.catalog.Entry(serviceTypeID)
	if !ok {
		return PriceResolution{Incomplete: true, Reason: IncompleteUnknownServiceType}, nil
	}

	priceKey := domain.PriceKeyDefault
	if entry.NeedsSize {
		if sel.CarSize == nil {
			return PriceResolution{Incomplete: true, Reason: IncompleteCarSize}, nil
		}
		if !domain.ValidCarSize(*sel.CarSize) {
			return PriceResolution{}, fmt.Errorf("%w: %q", ErrPricingInvalidCarSize, *sel.CarSize)
		}
		priceKey = string(*sel.CarSize)
	}

	price, ok := entry.PriceFor(priceKey)
	if !ok {
		return PriceResolution{}, fmt.Errorf("%w: service type %q has no %q entry", ErrPricingCatalogMisconfigured, entry.ID, priceKey)
	}

	resolved := ResolvedPrice{
		ServiceTypeID: entry.ID,
		PriceKey:      priceKey,
		Price:         price.Price,
		Commission:    price.Commission,
	}
	// A redeemed coupon covers the wash itself: the customer pays nothing,
	// the staff member still earns the coupon commission.
	if sel.UseCoupon && entry.HasCoupon && price.CouponCommission != nil {
		resolved.Price = 0
		resolved.Commission = *price.CouponCommission
		resolved.CouponApplied = true
	}

	return PriceResolution{Resolved: resolved}, nil
}

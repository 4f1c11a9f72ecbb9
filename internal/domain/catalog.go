package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Catalog is the immutable set of service types known at process start. It is
// validated once during construction; no component mutates it afterwards.
type Catalog struct {
	entries map[string]ServiceType
	order   []string
}

// NewCatalog validates the supplied service types and builds a catalog.
// Entries with NeedsSize must price all three size keys and nothing else;
// entries without must price exactly the default key. A violation is a static
// data bug and rejects the whole catalog.
func NewCatalog(types []ServiceType) (Catalog, error) {
	if len(types) == 0 {
		return Catalog{}, fmt.Errorf("catalog: no service types defined")
	}

	entries := make(map[string]ServiceType, len(types))
	order := make([]string, 0, len(types))
	for _, st := range types {
		id := strings.TrimSpace(st.ID)
		if id == "" {
			return Catalog{}, fmt.Errorf("catalog: service type with empty id")
		}
		if _, exists := entries[id]; exists {
			return Catalog{}, fmt.Errorf("catalog: duplicate service type %q", id)
		}
		if err := validateServiceType(st); err != nil {
			return Catalog{}, err
		}
		st.ID = id
		entries[id] = st
		order = append(order, id)
	}

	return Catalog{entries: entries, order: order}, nil
}

func validateServiceType(st ServiceType) error {
	if st.NeedsSize {
		for _, size := range CarSizes() {
			if _, ok := st.Prices[string(size)]; !ok {
				return fmt.Errorf("catalog: service type %q requires a %s price entry", st.ID, size)
			}
		}
		if len(st.Prices) != len(CarSizes()) {
			return fmt.Errorf("catalog: service type %q has extra price keys", st.ID)
		}
	} else {
		if _, ok := st.Prices[PriceKeyDefault]; !ok {
			return fmt.Errorf("catalog: service type %q requires a default price entry", st.ID)
		}
		if len(st.Prices) != 1 {
			return fmt.Errorf("catalog: service type %q must define only the default price entry", st.ID)
		}
	}

	for key, entry := range st.Prices {
		if entry.Price < 0 || entry.Commission < 0 {
			return fmt.Errorf("catalog: service type %q has a negative amount for key %q", st.ID, key)
		}
		if entry.CouponCommission != nil && *entry.CouponCommission < 0 {
			return fmt.Errorf("catalog: service type %q has a negative coupon commission for key %q", st.ID, key)
		}
	}
	return nil
}

// Entry returns the service type for the given id.
func (c Catalog) Entry(serviceTypeID string) (ServiceType, bool) {
	entry, ok := c.entries[strings.TrimSpace(serviceTypeID)]
	return entry, ok
}

// Services returns the catalog entries in their declared order.
func (c Catalog) Services() []ServiceType {
	out := make([]ServiceType, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// Len reports the number of catalog entries.
func (c Catalog) Len() int { return len(c.entries) }

// MatchLabel resolves a free-text service name to a service type id by
// case-insensitive equality against either label. First declared match wins;
// no fuzzy matching.
func (c Catalog) MatchLabel(candidate string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(candidate))
	if needle == "" {
		return "", false
	}
	for _, id := range c.order {
		entry := c.entries[id]
		if strings.ToLower(strings.TrimSpace(entry.LabelEN)) == needle {
			return id, true
		}
		if strings.ToLower(strings.TrimSpace(entry.LabelAR)) == needle {
			return id, true
		}
	}
	return "", false
}

func couponCommission(amount int64) *int64 {
	return &amount
}

// DefaultCatalog returns the built-in pricing table. Amounts are whole SAR.
func DefaultCatalog() Catalog {
	catalog, err := NewCatalog(defaultServiceTypes())
	if err != nil {
		// The built-in table is covered by tests; reaching this is a bug.
		panic(err)
	}
	return catalog
}

func defaultServiceTypes() []ServiceType {
	return []ServiceType{
		{
			ID:        "whole-wash",
			LabelEN:   "Whole Wash",
			LabelAR:   "غسيل كامل",
			NeedsSize: true,
			HasCoupon: true,
			Prices: map[string]PriceEntry{
				string(CarSizeSmall):  {Price: 20, Commission: 8, CouponCommission: couponCommission(4)},
				string(CarSizeMedium): {Price: 25, Commission: 10, CouponCommission: couponCommission(5)},
				string(CarSizeBig):    {Price: 30, Commission: 12, CouponCommission: couponCommission(6)},
			},
		},
		{
			ID:      "inside-only",
			LabelEN: "Inside Only",
			LabelAR: "غسيل داخلي فقط",
			Prices: map[string]PriceEntry{
				PriceKeyDefault: {Price: 10, Commission: 4},
			},
		},
		{
			ID:        "outside-only",
			LabelEN:   "Outside Only",
			LabelAR:   "غسيل خارجي فقط",
			NeedsSize: true,
			Prices: map[string]PriceEntry{
				string(CarSizeSmall):  {Price: 15, Commission: 5},
				string(CarSizeMedium): {Price: 20, Commission: 8},
				string(CarSizeBig):    {Price: 25, Commission: 10},
			},
		},
		{
			ID:      "spray-only",
			LabelEN: "Spray Only",
			LabelAR: "رش فقط",
			Prices: map[string]PriceEntry{
				PriceKeyDefault: {Price: 10, Commission: 4},
			},
		},
		{
			ID:      "engine-wash-only",
			LabelEN: "Engine Wash Only",
			LabelAR: "غسيل المكينة فقط",
			Prices: map[string]PriceEntry{
				PriceKeyDefault: {Price: 10, Commission: 4},
			},
		},
		{
			ID:      "mirrors-only",
			LabelEN: "Mirrors Only",
			LabelAR: "المرايا فقط",
			Prices: map[string]PriceEntry{
				PriceKeyDefault: {Price: 5, Commission: 2},
			},
		},
		{
			ID:      "carpets-covering",
			LabelEN: "Carpets Covering",
			LabelAR: "تلبيس الدعاسات",
			Prices: map[string]PriceEntry{
				PriceKeyDefault: {Price: 10, Commission: 2},
			},
		},
	}
}

type catalogFile struct {
	Services []catalogFileService `json:"services"`
}

type catalogFileService struct {
	ID        string                       `json:"id"`
	LabelEN   string                       `json:"label_en"`
	LabelAR   string                       `json:"label_ar"`
	NeedsSize bool                         `json:"needs_size"`
	HasCoupon bool                         `json:"has_coupon"`
	Prices    map[string]catalogFilePrices `json:"prices"`
}

type catalogFilePrices struct {
	Price            int64  `json:"price"`
	Commission       int64  `json:"commission"`
	CouponCommission *int64 `json:"coupon_commission,omitempty"`
}

// LoadCatalogFile reads a catalog override from a JSON file and validates it
// with the same rules as the built-in table.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	types := make([]ServiceType, 0, len(file.Services))
	for _, svc := range file.Services {
		prices := make(map[string]PriceEntry, len(svc.Prices))
		keys := make([]string, 0, len(svc.Prices))
		for key := range svc.Prices {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			raw := svc.Prices[key]
			entry := PriceEntry{Price: raw.Price, Commission: raw.Commission}
			if raw.CouponCommission != nil {
				value := *raw.CouponCommission
				entry.CouponCommission = &value
			}
			prices[key] = entry
		}
		types = append(types, ServiceType{
			ID:        svc.ID,
			LabelEN:   svc.LabelEN,
			LabelAR:   svc.LabelAR,
			NeedsSize: svc.NeedsSize,
			HasCoupon: svc.HasCoupon,
			Prices:    prices,
		})
	}

	return NewCatalog(types)
}

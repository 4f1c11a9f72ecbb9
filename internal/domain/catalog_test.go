package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalogValidates(t *testing.T) {
	catalog := DefaultCatalog()
	if catalog.Len() != 7 {
		t.Fatalf("expected 7 service types, got %d", catalog.Len())
	}

	whole, ok := catalog.Entry("whole-wash")
	if !ok {
		t.Fatalf("expected whole-wash entry")
	}
	if !whole.NeedsSize || !whole.HasCoupon {
		t.Fatalf("whole-wash should require size and carry a coupon path")
	}
	medium, ok := whole.PriceFor(string(CarSizeMedium))
	if !ok {
		t.Fatalf("expected medium price entry")
	}
	if medium.Price != 25 || medium.Commission != 10 {
		t.Fatalf("unexpected medium pricing: %+v", medium)
	}
	if medium.CouponCommission == nil || *medium.CouponCommission != 5 {
		t.Fatalf("unexpected medium coupon commission: %+v", medium.CouponCommission)
	}

	inside, ok := catalog.Entry("inside-only")
	if !ok {
		t.Fatalf("expected inside-only entry")
	}
	if inside.NeedsSize || inside.HasCoupon {
		t.Fatalf("inside-only should be sizeless without a coupon path")
	}
	def, ok := inside.PriceFor(PriceKeyDefault)
	if !ok || def.Price != 10 || def.Commission != 4 {
		t.Fatalf("unexpected inside-only default pricing: %+v", def)
	}
}

func TestNewCatalogRejectsMissingSizeKey(t *testing.T) {
	_, err := NewCatalog([]ServiceType{{
		ID:        "broken",
		NeedsSize: true,
		Prices: map[string]PriceEntry{
			string(CarSizeSmall):  {Price: 10, Commission: 2},
			string(CarSizeMedium): {Price: 12, Commission: 3},
		},
	}})
	if err == nil {
		t.Fatalf("expected validation error for missing big price entry")
	}
	if !strings.Contains(err.Error(), "big") {
		t.Fatalf("expected error to name missing key, got %v", err)
	}
}

func TestNewCatalogRejectsExtraDefaultKey(t *testing.T) {
	_, err := NewCatalog([]ServiceType{{
		ID: "broken",
		Prices: map[string]PriceEntry{
			PriceKeyDefault:      {Price: 10, Commission: 2},
			string(CarSizeSmall): {Price: 8, Commission: 1},
		},
	}})
	if err == nil {
		t.Fatalf("expected validation error for extra price key")
	}
}

func TestNewCatalogRejectsDuplicateIDs(t *testing.T) {
	entry := ServiceType{
		ID:     "dup",
		Prices: map[string]PriceEntry{PriceKeyDefault: {Price: 1, Commission: 1}},
	}
	if _, err := NewCatalog([]ServiceType{entry, entry}); err == nil {
		t.Fatalf("expected duplicate id to be rejected")
	}
}

func TestMatchLabel(t *testing.T) {
	catalog := DefaultCatalog()

	cases := []struct {
		name      string
		candidate string
		wantID    string
		wantOK    bool
	}{
		{name: "exact", candidate: "Whole Wash", wantID: "whole-wash", wantOK: true},
		{name: "case insensitive", candidate: "whole wash", wantID: "whole-wash", wantOK: true},
		{name: "padded", candidate: "  Inside Only  ", wantID: "inside-only", wantOK: true},
		{name: "arabic label", candidate: "غسيل كامل", wantID: "whole-wash", wantOK: true},
		{name: "unknown", candidate: "Underbody Wash", wantOK: false},
		{name: "empty", candidate: "   ", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := catalog.MatchLabel(tc.candidate)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if id != tc.wantID {
				t.Fatalf("expected id %q, got %q", tc.wantID, id)
			}
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	payload := `{
		"services": [
			{
				"id": "basic",
				"label_en": "Basic",
				"label_ar": "أساسي",
				"needs_size": false,
				"prices": {"default": {"price": 12, "commission": 3}}
			},
			{
				"id": "premium",
				"label_en": "Premium",
				"label_ar": "مميز",
				"needs_size": true,
				"has_coupon": true,
				"prices": {
					"small": {"price": 20, "commission": 5, "coupon_commission": 2},
					"medium": {"price": 25, "commission": 7, "coupon_commission": 3},
					"big": {"price": 30, "commission": 9, "coupon_commission": 4}
				}
			}
		]
	}`

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write catalog file: %v", err)
	}

	catalog, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("expected catalog to load: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", catalog.Len())
	}
	premium, ok := catalog.Entry("premium")
	if !ok {
		t.Fatalf("expected premium entry")
	}
	small, _ := premium.PriceFor(string(CarSizeSmall))
	if small.CouponCommission == nil || *small.CouponCommission != 2 {
		t.Fatalf("unexpected coupon commission: %+v", small.CouponCommission)
	}
}

func TestLoadCatalogFileRejectsInvalid(t *testing.T) {
	payload := `{
		"services": [
			{
				"id": "broken",
				"needs_size": true,
				"prices": {"small": {"price": 10, "commission": 2}}
			}
		]
	}`

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write catalog file: %v", err)
	}

	if _, err := LoadCatalogFile(path); err == nil {
		t.Fatalf("expected invalid catalog to be rejected")
	}
}

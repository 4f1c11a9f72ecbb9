package domain

import "time"

// CarSize identifies the vehicle size bucket used as a price-table key.
type CarSize string

const (
	CarSizeSmall  CarSize = "small"
	CarSizeMedium CarSize = "medium"
	CarSizeBig    CarSize = "big"
)

// PriceKeyDefault is the price-table key for services whose price does not
// depend on the vehicle size.
const PriceKeyDefault = "default"

// ValidCarSize reports whether the value is one of the three size keys.
func ValidCarSize(size CarSize) bool {
	switch size {
	case CarSizeSmall, CarSizeMedium, CarSizeBig:
		return true
	default:
		return false
	}
}

// CarSizes lists the valid size keys in display order.
func CarSizes() []CarSize {
	return []CarSize{CarSizeSmall, CarSizeMedium, CarSizeBig}
}

// PriceEntry holds the amounts charged and owed for one price key. Amounts are
// whole currency units; CouponCommission is nil when the coupon path is not
// configured for this key.
type PriceEntry struct {
	Price            int64
	Commission       int64
	CouponCommission *int64
}

// ServiceType is one catalog entry: a category of wash service with its own
// pricing rules and human-readable labels.
type ServiceType struct {
	ID        string
	LabelEN   string
	LabelAR   string
	NeedsSize bool
	HasCoupon bool
	Prices    map[string]PriceEntry
}

// PriceFor returns the price entry for the supplied price key.
func (s ServiceType) PriceFor(key string) (PriceEntry, bool) {
	entry, ok := s.Prices[key]
	return entry, ok
}

// Staff is a mutable roster entry. Transactions copy the names by value at
// creation time, so renaming or removing staff never alters past records.
type Staff struct {
	ID         string
	OperatorID string
	Name       string
	NameEN     string
	CreatedAt  time.Time
}

// Transaction records one completed service sale. Price and Commission are the
// resolver's output frozen at submission time; they are never recomputed from
// the catalog afterwards. CarSize is nil exactly when the catalog entry does
// not require a size. CouponApplied is the effective flag after any silent
// downgrade, not the raw request.
type Transaction struct {
	ID            string
	OperatorID    string
	Timestamp     time.Time
	ServiceTypeID string
	CarSize       *CarSize
	CouponApplied bool
	StaffID       string
	StaffName     string
	StaffNameEN   string
	Price         int64
	Commission    int64
}

// ReportSummary is the rolled-up view of one reporting window: exact integer
// sums plus commission grouped by staff display name. Two staff ids sharing a
// display name merge under one key; the grouping key is the name.
type ReportSummary struct {
	TotalSales      int64
	TotalCommission int64
	ByStaff         map[string]int64
}

// Health status literals reported by dependency probes.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusError    = "error"
)

// HealthCheck captures the probe outcome for one external dependency.
type HealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// HealthReport aggregates dependency probes into an overall readiness verdict.
type HealthReport struct {
	Status      string
	Checks      map[string]HealthCheck
	GeneratedAt time.Time
}

package services

import (
	"context"
	"time"

	domain "github.com/washdesk/api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Catalog       = domain.Catalog
	ServiceType   = domain.ServiceType
	CarSize       = domain.CarSize
	Staff         = domain.Staff
	Transaction   = domain.Transaction
	ReportSummary = domain.ReportSummary
	HealthReport  = domain.HealthReport
)

// TransactionService orchestrates sale recording and retrieval. Pricing is
// always recomputed server-side from the startup catalog; client-supplied
// amounts are never trusted.
type TransactionService interface {
	Record(ctx context.Context, cmd RecordTransactionCommand) (Transaction, error)
	ListByDate(ctx context.Context, query TransactionListQuery) ([]Transaction, error)
	Delete(ctx context.Context, cmd DeleteTransactionCommand) error
}

// StaffService manages the operator's roster. Transactions snapshot staff
// names at submission, so roster edits never rewrite history.
type StaffService interface {
	Create(ctx context.Context, cmd CreateStaffCommand) (Staff, error)
	List(ctx context.Context, operatorID string) ([]Staff, error)
	Delete(ctx context.Context, cmd DeleteStaffCommand) error
}

// ReportService aggregates a single day's transactions into totals and
// renders the CSV export.
type ReportService interface {
	DailyReport(ctx context.Context, query DailyReportQuery) (DailyReport, error)
	ExportDailyCSV(ctx context.Context, query DailyExportQuery) (DailyExport, error)
}

// SuggestionService turns free-text prompts into service suggestions matched
// against the catalog labels.
type SuggestionService interface {
	Suggest(ctx context.Context, query SuggestionQuery) (SuggestionResult, error)
}

// SystemService exposes dependency health for the readiness probe.
type SystemService interface {
	HealthReport(ctx context.Context) (HealthReport, error)
}

// SuggestionProvider is the upstream model endpoint producing raw suggestion
// strings for a sanitized prompt.
type SuggestionProvider interface {
	Suggest(ctx context.Context, prompt string) ([]string, error)
}

// TransactionEventMessage is the payload published after transaction writes.
type TransactionEventMessage struct {
	Event         string    `json:"event"`
	TransactionID string    `json:"transactionId"`
	OperatorID    string    `json:"operatorId"`
	ServiceTypeID string    `json:"serviceType"`
	Price         int64     `json:"price"`
	Commission    int64     `json:"commission"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// TransactionEventPublisher delivers transaction events to downstream
// consumers. Publishing is best-effort; failures never fail the write path.
type TransactionEventPublisher interface {
	PublishTransactionEvent(ctx context.Context, message TransactionEventMessage) (string, error)
}

// ReportArchiver persists a rendered CSV export to durable storage.
type ReportArchiver interface {
	ArchiveCSV(ctx context.Context, operatorID, date string, data []byte) (string, error)
}

package repositories

import (
	"context"
	"time"

	domain "github.com/washdesk/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// TransactionRepository persists recorded wash transactions scoped by operator.
type TransactionRepository interface {
	Insert(ctx context.Context, tx domain.Transaction) error
	FindByID(ctx context.Context, operatorID, transactionID string) (domain.Transaction, error)
	ListByDay(ctx context.Context, operatorID string, dayStart, dayEnd time.Time) ([]domain.Transaction, error)
	Delete(ctx context.Context, operatorID, transactionID string) error
}

// StaffRepository owns the operator's staff roster.
type StaffRepository interface {
	Insert(ctx context.Context, staff domain.Staff) error
	FindByID(ctx context.Context, operatorID, staffID string) (domain.Staff, error)
	ListByOperator(ctx context.Context, operatorID string) ([]domain.Staff, error)
	Delete(ctx context.Context, operatorID, staffID string) error
}

// HealthRepository evaluates dependency probes for readiness reporting.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.HealthReport, error)
}

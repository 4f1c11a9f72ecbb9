package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/washdesk/api/internal/domain"
	"github.com/washdesk/api/internal/repositories"
)

var (
	// ErrTransactionInvalidInput signals missing or malformed request data.
	ErrTransactionInvalidInput = errors.New("transaction: invalid input")
	// ErrTransactionIncompleteSelection indicates the selection cannot be priced yet.
	ErrTransactionIncompleteSelection = errors.New("transaction: incomplete selection")
	// ErrTransactionStaffNotFound indicates the referenced staff member is not on the roster.
	ErrTransactionStaffNotFound = errors.New("transaction: staff not found")
	// ErrTransactionNotFound indicates the transaction does not exist for this operator.
	ErrTransactionNotFound = errors.New("transaction: not found")
	// ErrTransactionConflict indicates a write collided with existing state.
	ErrTransactionConflict = errors.New("transaction: conflict")
	// ErrTransactionUnavailable indicates the backing store could not serve the request.
	ErrTransactionUnavailable = errors.New("transaction: service unavailable")
)

const transactionIDPrefix = "txn_"

// Events published after transaction writes.
const (
	EventTransactionRecorded = "transaction.recorded"
	EventTransactionDeleted  = "transaction.deleted"
)

// RecordTransactionCommand captures one sale as entered at the register.
type RecordTransactionCommand struct {
	OperatorID    string
	ServiceTypeID string
	CarSize       *domain.CarSize
	UseCoupon     bool
	StaffID       string
}

// TransactionListQuery selects one operator's civil day.
type TransactionListQuery struct {
	OperatorID string
	Date       time.Time
}

// DeleteTransactionCommand removes a mis-entered record.
type DeleteTransactionCommand struct {
	OperatorID    string
	TransactionID string
}

// TransactionServiceDeps wires the stores, resolver, and optional publisher.
type TransactionServiceDeps struct {
	Transactions repositories.TransactionRepository
	Staff        repositories.StaffRepository
	Resolver     *PricingResolver
	Publisher    TransactionEventPublisher
	Clock        func() time.Time
	IDGenerator  func() string
	Logger       func(context.Context, string, map[string]any)
}

type transactionService struct {
	transactions repositories.TransactionRepository
	staff        repositories.StaffRepository
	resolver     *PricingResolver
	publisher    TransactionEventPublisher
	now          func() time.Time
	newID        func() string
	logger       func(context.Context, string, map[string]any)
}

var _ TransactionService = (*transactionService)(nil)

// NewTransactionService constructs a TransactionService.
func NewTransactionService(deps TransactionServiceDeps) (TransactionService, error) {
	if deps.Transactions == nil {
		return nil, errors.New("transaction service: transaction repository is required")
	}
	if deps.Staff == nil {
		return nil, errors.New("transaction service: staff repository is required")
	}
	if deps.Resolver == nil {
		return nil, errors.New("transaction service: pricing resolver is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &transactionService{
		transactions: deps.Transactions,
		staff:        deps.Staff,
		resolver:     deps.Resolver,
		publisher:    deps.Publisher,
		now:          func() time.Time { return clock().UTC() },
		newID:        func() string { return transactionIDPrefix + strings.ToLower(idGen()) },
		logger:       logger,
	}, nil
}

// Record prices the selection against the startup catalog, snapshots the
// staff names, and appends the transaction. The stored coupon flag is the
// effective one after any downgrade.
func (s *transactionService) Record(ctx context.Context, cmd RecordTransactionCommand) (Transaction, error) {
	operatorID := strings.TrimSpace(cmd.OperatorID)
	staffID := strings.TrimSpace(cmd.StaffID)
	if operatorID == "" || staffID == "" {
		return Transaction{}, ErrTransactionInvalidInput
	}

	resolution, err := s.resolver.Resolve(PriceSelection{
		ServiceTypeID: cmd.ServiceTypeID,
		CarSize:       cmd.CarSize,
		UseCoupon:     cmd.UseCoupon,
	})
	if err != nil {
		if errors.Is(err, ErrPricingInvalidCarSize) {
			return Transaction{}, fmt.Errorf("%w: %v", ErrTransactionInvalidInput, err)
		}
		return Transaction{}, err
	}
	if resolution.Incomplete {
		return Transaction{}, fmt.Errorf("%w: %s", ErrTransactionIncompleteSelection, resolution.Reason)
	}

	staff, err := s.staff.FindByID(ctx, operatorID, staffID)
	if err != nil {
		if isRepoNotFound(err) {
			return Transaction{}, fmt.Errorf("%w: %s", ErrTransactionStaffNotFound, staffID)
		}
		return Transaction{}, s.translateRepoError(err)
	}

	resolved := resolution.Resolved
	tx := Transaction{
		ID:            s.newID(),
		OperatorID:    operatorID,
		Timestamp:     s.now(),
		ServiceTypeID: resolved.ServiceTypeID,
		CouponApplied: resolved.CouponApplied,
		StaffID:       staff.ID,
		StaffName:     staff.Name,
		StaffNameEN:   staff.NameEN,
		Price:         resolved.Price,
		Commission:    resolved.Commission,
	}
	if resolved.PriceKey != domain.PriceKeyDefault {
		size := domain.CarSize(resolved.PriceKey)
		tx.CarSize = &size
	}

	if err := s.transactions.Insert(ctx, tx); err != nil {
		return Transaction{}, s.translateRepoError(err)
	}

	s.logger(ctx, "transaction.recorded", map[string]any{
		"transaction_id": tx.ID,
		"service_type":   tx.ServiceTypeID,
		"price":          tx.Price,
		"commission":     tx.Commission,
		"coupon":         tx.CouponApplied,
	})
	s.publish(ctx, EventTransactionRecorded, tx)

	return tx, nil
}

func (s *transactionService) ListByDate(ctx context.Context, query TransactionListQuery) ([]Transaction, error) {
	operatorID := strings.TrimSpace(query.OperatorID)
	if operatorID == "" || query.Date.IsZero() {
		return nil, ErrTransactionInvalidInput
	}

	start, end := dayWindow(query.Date)
	transactions, err := s.transactions.ListByDay(ctx, operatorID, start, end)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	return transactions, nil
}

func (s *transactionService) Delete(ctx context.Context, cmd DeleteTransactionCommand) error {
	operatorID := strings.TrimSpace(cmd.OperatorID)
	transactionID := strings.TrimSpace(cmd.TransactionID)
	if operatorID == "" || transactionID == "" {
		return ErrTransactionInvalidInput
	}

	tx, err := s.transactions.FindByID(ctx, operatorID, transactionID)
	if err != nil {
		return s.translateRepoError(err)
	}
	if err := s.transactions.Delete(ctx, operatorID, transactionID); err != nil {
		return s.translateRepoError(err)
	}

	s.logger(ctx, "transaction.deleted", map[string]any{
		"transaction_id": transactionID,
	})
	s.publish(ctx, EventTransactionDeleted, tx)

	return nil
}

// publish is best-effort: a broker outage must never fail the write path.
func (s *transactionService) publish(ctx context.Context, event string, tx Transaction) {
	if s.publisher == nil {
		return
	}
	_, err := s.publisher.PublishTransactionEvent(ctx, TransactionEventMessage{
		Event:         event,
		TransactionID: tx.ID,
		OperatorID:    tx.OperatorID,
		ServiceTypeID: tx.ServiceTypeID,
		Price:         tx.Price,
		Commission:    tx.Commission,
		OccurredAt:    s.now(),
	})
	if err != nil {
		s.logger(ctx, "transaction.publish_failed", map[string]any{
			"transaction_id": tx.ID,
			"event":          event,
			"error":          err.Error(),
		})
	}
}

func (s *transactionService) translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case isRepoNotFound(err):
		return fmt.Errorf("%w: %v", ErrTransactionNotFound, err)
	case isRepoConflict(err):
		return fmt.Errorf("%w: %v", ErrTransactionConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransactionUnavailable, err)
	}
}

package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/washdesk/api/internal/domain"
	pfirestore "github.com/washdesk/api/internal/platform/firestore"
	"github.com/washdesk/api/internal/repositories"
)

const transactionsCollection = "services"

// TransactionRepository persists recorded wash transactions in Firestore.
type TransactionRepository struct {
	base *pfirestore.BaseRepository[domain.Transaction]
}

// NewTransactionRepository constructs a Firestore-backed transaction repository.
func NewTransactionRepository(provider *pfirestore.Provider) (*TransactionRepository, error) {
	if provider == nil {
		return nil, errors.New("transaction repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.Transaction) (any, error) {
		return encodeTransactionDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Transaction, error) {
		var doc transactionDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.Transaction{}, err
		}
		doc.ID = snap.Ref.ID
		return decodeTransactionDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.Transaction](provider, transactionsCollection, encoder, decoder)
	return &TransactionRepository{base: base}, nil
}

// Insert stores a new transaction document, failing on ID collisions.
func (r *TransactionRepository) Insert(ctx context.Context, tx domain.Transaction) error {
	if r == nil || r.base == nil {
		return errors.New("transaction repository not initialised")
	}
	tx.ID = strings.TrimSpace(tx.ID)
	if tx.ID == "" {
		return errors.New("transaction repository: id is required")
	}
	if strings.TrimSpace(tx.OperatorID) == "" {
		return errors.New("transaction repository: operator id is required")
	}

	if _, err := r.base.Create(ctx, tx.ID, tx); err != nil {
		return err
	}
	return nil
}

// FindByID loads a transaction and verifies it belongs to the operator.
func (r *TransactionRepository) FindByID(ctx context.Context, operatorID, transactionID string) (domain.Transaction, error) {
	if r == nil || r.base == nil {
		return domain.Transaction{}, errors.New("transaction repository not initialised")
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return domain.Transaction{}, errors.New("transaction repository: id is required")
	}

	doc, err := r.base.Get(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if doc.Data.OperatorID != strings.TrimSpace(operatorID) {
		// A foreign operator's document is indistinguishable from a missing one.
		return domain.Transaction{}, pfirestore.WrapError("services.get", status.Error(codes.NotFound, "transaction not found"))
	}
	return doc.Data, nil
}

// ListByDay returns the operator's transactions recorded in [dayStart, dayEnd), newest first.
func (r *TransactionRepository) ListByDay(ctx context.Context, operatorID string, dayStart, dayEnd time.Time) ([]domain.Transaction, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("transaction repository not initialised")
	}
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return nil, errors.New("transaction repository: operator id is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "==", operatorID).
			Where("timestamp", ">=", dayStart).
			Where("timestamp", "<", dayEnd)
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Transaction, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Delete removes the operator's transaction by ID.
func (r *TransactionRepository) Delete(ctx context.Context, operatorID, transactionID string) error {
	if r == nil || r.base == nil {
		return errors.New("transaction repository not initialised")
	}

	// Ownership check before the delete; Firestore deletes are otherwise unconditional.
	if _, err := r.FindByID(ctx, operatorID, transactionID); err != nil {
		return err
	}
	if _, err := r.base.Delete(ctx, transactionID); err != nil {
		return err
	}
	return nil
}

func encodeTransactionDocument(tx domain.Transaction) transactionDocument {
	doc := transactionDocument{
		OperatorID:    strings.TrimSpace(tx.OperatorID),
		Timestamp:     tx.Timestamp.UTC(),
		ServiceTypeID: strings.TrimSpace(tx.ServiceTypeID),
		CouponApplied: tx.CouponApplied,
		StaffID:       strings.TrimSpace(tx.StaffID),
		StaffName:     tx.StaffName,
		StaffNameEN:   tx.StaffNameEN,
		Price:         tx.Price,
		Commission:    tx.Commission,
	}
	if tx.CarSize != nil {
		size := string(*tx.CarSize)
		doc.CarSize = &size
	}
	return doc
}

func decodeTransactionDocument(doc transactionDocument) domain.Transaction {
	tx := domain.Transaction{
		ID:            doc.ID,
		OperatorID:    doc.OperatorID,
		Timestamp:     doc.Timestamp.UTC(),
		ServiceTypeID: doc.ServiceTypeID,
		CouponApplied: doc.CouponApplied,
		StaffID:       doc.StaffID,
		StaffName:     doc.StaffName,
		StaffNameEN:   doc.StaffNameEN,
		Price:         doc.Price,
		Commission:    doc.Commission,
	}
	if doc.CarSize != nil && *doc.CarSize != "" {
		size := domain.CarSize(*doc.CarSize)
		tx.CarSize = &size
	}
	return tx
}

type transactionDocument struct {
	ID            string    `firestore:"-"`
	OperatorID    string    `firestore:"userId"`
	Timestamp     time.Time `firestore:"timestamp"`
	ServiceTypeID string    `firestore:"serviceType"`
	CarSize       *string   `firestore:"carSize,omitempty"`
	CouponApplied bool      `firestore:"hasCoupon"`
	StaffID       string    `firestore:"staffId"`
	StaffName     string    `firestore:"staffName"`
	StaffNameEN   string    `firestore:"staffNameEn,omitempty"`
	Price         int64     `firestore:"price"`
	Commission    int64     `firestore:"commission"`
}

var _ repositories.TransactionRepository = (*TransactionRepository)(nil)

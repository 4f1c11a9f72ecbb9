package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/washdesk/api/internal/domain"
	pfirestore "github.com/washdesk/api/internal/platform/firestore"
	"github.com/washdesk/api/internal/repositories"
)

const staffCollection = "staff"

// StaffRepository persists the operator's staff roster in Firestore.
type StaffRepository struct {
	base *pfirestore.BaseRepository[domain.Staff]
}

// NewStaffRepository constructs a Firestore-backed staff repository.
func NewStaffRepository(provider *pfirestore.Provider) (*StaffRepository, error) {
	if provider == nil {
		return nil, errors.New("staff repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.Staff) (any, error) {
		return encodeStaffDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Staff, error) {
		var doc staffDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.Staff{}, err
		}
		doc.ID = snap.Ref.ID
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = snap.CreateTime
		}
		return decodeStaffDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.Staff](provider, staffCollection, encoder, decoder)
	return &StaffRepository{base: base}, nil
}

// Insert stores a new staff document, failing on ID collisions.
func (r *StaffRepository) Insert(ctx context.Context, staff domain.Staff) error {
	if r == nil || r.base == nil {
		return errors.New("staff repository not initialised")
	}
	staff.ID = strings.TrimSpace(staff.ID)
	if staff.ID == "" {
		return errors.New("staff repository: id is required")
	}
	if strings.TrimSpace(staff.OperatorID) == "" {
		return errors.New("staff repository: operator id is required")
	}

	if _, err := r.base.Create(ctx, staff.ID, staff); err != nil {
		return err
	}
	return nil
}

// FindByID loads a staff member and verifies the operator owns the record.
func (r *StaffRepository) FindByID(ctx context.Context, operatorID, staffID string) (domain.Staff, error) {
	if r == nil || r.base == nil {
		return domain.Staff{}, errors.New("staff repository not initialised")
	}
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return domain.Staff{}, errors.New("staff repository: id is required")
	}

	doc, err := r.base.Get(ctx, staffID)
	if err != nil {
		return domain.Staff{}, err
	}
	if doc.Data.OperatorID != strings.TrimSpace(operatorID) {
		return domain.Staff{}, pfirestore.WrapError("staff.get", status.Error(codes.NotFound, "staff not found"))
	}
	return doc.Data, nil
}

// ListByOperator returns the operator's roster ordered by display name.
func (r *StaffRepository) ListByOperator(ctx context.Context, operatorID string) ([]domain.Staff, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("staff repository not initialised")
	}
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return nil, errors.New("staff repository: operator id is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "==", operatorID).OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Staff, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data)
	}
	return out, nil
}

// Delete removes the operator's staff member by ID.
func (r *StaffRepository) Delete(ctx context.Context, operatorID, staffID string) error {
	if r == nil || r.base == nil {
		return errors.New("staff repository not initialised")
	}

	if _, err := r.FindByID(ctx, operatorID, staffID); err != nil {
		return err
	}
	if _, err := r.base.Delete(ctx, staffID); err != nil {
		return err
	}
	return nil
}

func encodeStaffDocument(staff domain.Staff) staffDocument {
	return staffDocument{
		OperatorID: strings.TrimSpace(staff.OperatorID),
		Name:       strings.TrimSpace(staff.Name),
		NameEN:     strings.TrimSpace(staff.NameEN),
		CreatedAt:  staff.CreatedAt.UTC(),
	}
}

func decodeStaffDocument(doc staffDocument) domain.Staff {
	return domain.Staff{
		ID:         doc.ID,
		OperatorID: doc.OperatorID,
		Name:       doc.Name,
		NameEN:     doc.NameEN,
		CreatedAt:  doc.CreatedAt.UTC(),
	}
}

type staffDocument struct {
	ID         string    `firestore:"-"`
	OperatorID string    `firestore:"userId"`
	Name       string    `firestore:"name"`
	NameEN     string    `firestore:"nameEn,omitempty"`
	CreatedAt  time.Time `firestore:"createdAt"`
}

var _ repositories.StaffRepository = (*StaffRepository)(nil)

package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/washdesk/api/internal/domain"
)

type recordingStaffStore struct {
	inserted  []domain.Staff
	roster    []domain.Staff
	deleted   []string
	insertErr error
	listErr   error
	deleteErr error
}

func (r *recordingStaffStore) Insert(ctx context.Context, staff domain.Staff) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, staff)
	return nil
}

func (r *recordingStaffStore) FindByID(ctx context.Context, operatorID, staffID string) (domain.Staff, error) {
	return domain.Staff{}, &classifiedError{msg: "missing", notFound: true}
}

func (r *recordingStaffStore) ListByOperator(ctx context.Context, operatorID string) ([]domain.Staff, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.roster, nil
}

func (r *recordingStaffStore) Delete(ctx context.Context, operatorID, staffID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, staffID)
	return nil
}

func newTestStaffService(t *testing.T, store *recordingStaffStore) StaffService {
	t.Helper()
	svc, err := NewStaffService(StaffServiceDeps{
		Staff:       store,
		Clock:       func() time.Time { return time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC) },
		IDGenerator: func() string { return "01J0TESTULID" },
	})
	if err != nil {
		t.Fatalf("NewStaffService: %v", err)
	}
	return svc
}

func TestCreateStaffTrimsAndStamps(t *testing.T) {
	store := &recordingStaffStore{}
	svc := newTestStaffService(t, store)

	member, err := svc.Create(context.Background(), CreateStaffCommand{
		OperatorID: "op_1",
		Name:       "  أحمد  ",
		NameEN:     " Ahmed ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !strings.HasPrefix(member.ID, "stf_") {
		t.Fatalf("id %q lacks prefix", member.ID)
	}
	if member.Name != "أحمد" || member.NameEN != "Ahmed" {
		t.Fatalf("names %q/%q not trimmed", member.Name, member.NameEN)
	}
	if member.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not stamped")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d rows", len(store.inserted))
	}
}

func TestCreateStaffValidatesInput(t *testing.T) {
	svc := newTestStaffService(t, &recordingStaffStore{})

	if _, err := svc.Create(context.Background(), CreateStaffCommand{OperatorID: "op_1"}); !errors.Is(err, ErrStaffInvalidInput) {
		t.Fatalf("missing name: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateStaffCommand{Name: "Ahmed"}); !errors.Is(err, ErrStaffInvalidInput) {
		t.Fatalf("missing operator: %v", err)
	}
	long := strings.Repeat("x", maxStaffNameLength+1)
	if _, err := svc.Create(context.Background(), CreateStaffCommand{OperatorID: "op_1", Name: long}); !errors.Is(err, ErrStaffInvalidInput) {
		t.Fatalf("oversized name: %v", err)
	}
}

func TestListStaffTranslatesErrors(t *testing.T) {
	store := &recordingStaffStore{listErr: &classifiedError{msg: "down", unavailable: true}}
	svc := newTestStaffService(t, store)

	if _, err := svc.List(context.Background(), "op_1"); !errors.Is(err, ErrStaffUnavailable) {
		t.Fatalf("expected ErrStaffUnavailable, got %v", err)
	}
}

func TestDeleteStaffNotFound(t *testing.T) {
	store := &recordingStaffStore{deleteErr: &classifiedError{msg: "missing", notFound: true}}
	svc := newTestStaffService(t, store)

	if err := svc.Delete(context.Background(), DeleteStaffCommand{OperatorID: "op_1", StaffID: "stf_1"}); !errors.Is(err, ErrStaffNotFound) {
		t.Fatalf("expected ErrStaffNotFound, got %v", err)
	}
}

func TestDeleteStaff(t *testing.T) {
	store := &recordingStaffStore{}
	svc := newTestStaffService(t, store)

	if err := svc.Delete(context.Background(), DeleteStaffCommand{OperatorID: "op_1", StaffID: "stf_1"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "stf_1" {
		t.Fatalf("deleted %v", store.deleted)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/washdesk/api/internal/repositories"
)

var (
	// ErrStaffInvalidInput signals missing or malformed staff data.
	ErrStaffInvalidInput = errors.New("staff: invalid input")
	// ErrStaffNotFound indicates the staff member is not on this operator's roster.
	ErrStaffNotFound = errors.New("staff: not found")
	// ErrStaffConflict indicates a write collided with existing state.
	ErrStaffConflict = errors.New("staff: conflict")
	// ErrStaffUnavailable indicates the backing store could not serve the request.
	ErrStaffUnavailable = errors.New("staff: service unavailable")
)

const (
	staffIDPrefix      = "stf_"
	maxStaffNameLength = 80
)

// CreateStaffCommand adds a member to the roster. Name is the native display
// name; NameEN is the optional latin spelling used by english reports.
type CreateStaffCommand struct {
	OperatorID string
	Name       string
	NameEN     string
}

// DeleteStaffCommand removes a roster entry. Past transactions keep their
// name snapshots.
type DeleteStaffCommand struct {
	OperatorID string
	StaffID    string
}

// StaffServiceDeps wires the roster store.
type StaffServiceDeps struct {
	Staff       repositories.StaffRepository
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type staffService struct {
	staff  repositories.StaffRepository
	now    func() time.Time
	newID  func() string
	logger func(context.Context, string, map[string]any)
}

var _ StaffService = (*staffService)(nil)

// NewStaffService constructs a StaffService.
func NewStaffService(deps StaffServiceDeps) (StaffService, error) {
	if deps.Staff == nil {
		return nil, errors.New("staff service: staff repository is required")
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

	return &staffService{
		staff:  deps.Staff,
		now:    func() time.Time { return clock().UTC() },
		newID:  func() string { return staffIDPrefix + strings.ToLower(idGen()) },
		logger: logger,
	}, nil
}

func (s *staffService) Create(ctx context.Context, cmd CreateStaffCommand) (Staff, error) {
	operatorID := strings.TrimSpace(cmd.OperatorID)
	name := strings.TrimSpace(cmd.Name)
	nameEN := strings.TrimSpace(cmd.NameEN)

	if operatorID == "" || name == "" {
		return Staff{}, ErrStaffInvalidInput
	}
	if len([]rune(name)) > maxStaffNameLength || len([]rune(nameEN)) > maxStaffNameLength {
		return Staff{}, fmt.Errorf("%w: name too long", ErrStaffInvalidInput)
	}

	member := Staff{
		ID:         s.newID(),
		OperatorID: operatorID,
		Name:       name,
		NameEN:     nameEN,
		CreatedAt:  s.now(),
	}
	if err := s.staff.Insert(ctx, member); err != nil {
		return Staff{}, s.translateRepoError(err)
	}

	s.logger(ctx, "staff.created", map[string]any{"staff_id": member.ID})
	return member, nil
}

func (s *staffService) List(ctx context.Context, operatorID string) ([]Staff, error) {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return nil, ErrStaffInvalidInput
	}

	roster, err := s.staff.ListByOperator(ctx, operatorID)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	return roster, nil
}

func (s *staffService) Delete(ctx context.Context, cmd DeleteStaffCommand) error {
	operatorID := strings.TrimSpace(cmd.OperatorID)
	staffID := strings.TrimSpace(cmd.StaffID)
	if operatorID == "" || staffID == "" {
		return ErrStaffInvalidInput
	}

	if err := s.staff.Delete(ctx, operatorID, staffID); err != nil {
		return s.translateRepoError(err)
	}

	s.logger(ctx, "staff.deleted", map[string]any{"staff_id": staffID})
	return nil
}

func (s *staffService) translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case isRepoNotFound(err):
		return fmt.Errorf("%w: %v", ErrStaffNotFound, err)
	case isRepoConflict(err):
		return fmt.Errorf("%w: %v", ErrStaffConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrStaffUnavailable, err)
	}
}

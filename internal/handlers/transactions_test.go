package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/washdesk/api/internal/domain"
	"github.com/washdesk/api/internal/services"
)

type stubTransactionService struct {
	recordFunc func(ctx context.Context, cmd services.RecordTransactionCommand) (services.Transaction, error)
	listFunc   func(ctx context.Context, query services.TransactionListQuery) ([]services.Transaction, error)
	deleteFunc func(ctx context.Context, cmd services.DeleteTransactionCommand) error
}

func (s *stubTransactionService) Record(ctx context.Context, cmd services.RecordTransactionCommand) (services.Transaction, error) {
	if s.recordFunc == nil {
		return services.Transaction{}, nil
	}
	return s.recordFunc(ctx, cmd)
}

func (s *stubTransactionService) ListByDate(ctx context.Context, query services.TransactionListQuery) ([]services.Transaction, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx, query)
}

func (s *stubTransactionService) Delete(ctx context.Context, cmd services.DeleteTransactionCommand) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, cmd)
}

func newTransactionRouter(svc services.TransactionService) chi.Router {
	handler := NewTransactionHandlers(nil, svc)
	router := chi.NewRouter()
	router.Route("/transactions", handler.Routes)
	return router
}

func TestTransactionHandlersRecord(t *testing.T) {
	size := domain.CarSizeMedium
	svc := &stubTransactionService{
		recordFunc: func(ctx context.Context, cmd services.RecordTransactionCommand) (services.Transaction, error) {
			if cmd.OperatorID != "op_1" {
				t.Fatalf("operator %q", cmd.OperatorID)
			}
			if cmd.ServiceTypeID != "whole-wash" || cmd.StaffID != "stf_1" || !cmd.UseCoupon {
				t.Fatalf("command %+v", cmd)
			}
			if cmd.CarSize == nil || *cmd.CarSize != domain.CarSizeMedium {
				t.Fatalf("car size %v", cmd.CarSize)
			}
			return services.Transaction{
				ID:            "txn_1",
				OperatorID:    cmd.OperatorID,
				Timestamp:     time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
				ServiceTypeID: cmd.ServiceTypeID,
				CarSize:       &size,
				CouponApplied: true,
				StaffID:       cmd.StaffID,
				StaffName:     "أحمد",
				StaffNameEN:   "Ahmed",
				Price:         0,
				Commission:    5,
			}, nil
		},
	}
	router := newTransactionRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/transactions",
		`{"service_type":"whole-wash","car_size":"medium","use_coupon":true,"staff_id":"stf_1"}`))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Transaction struct {
			ID            string `json:"id"`
			CarSize       string `json:"car_size"`
			CouponApplied bool   `json:"coupon_applied"`
			Price         int64  `json:"price"`
			Commission    int64  `json:"commission"`
		} `json:"transaction"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if body.Transaction.ID != "txn_1" || body.Transaction.CarSize != "medium" {
		t.Fatalf("payload %+v", body.Transaction)
	}
	if body.Transaction.Price != 0 || body.Transaction.Commission != 5 || !body.Transaction.CouponApplied {
		t.Fatalf("payload %+v", body.Transaction)
	}
}

func TestTransactionHandlersRecordIncomplete(t *testing.T) {
	svc := &stubTransactionService{
		recordFunc: func(ctx context.Context, cmd services.RecordTransactionCommand) (services.Transaction, error) {
			return services.Transaction{}, services.ErrTransactionIncompleteSelection
		},
	}
	router := newTransactionRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/transactions",
		`{"service_type":"whole-wash","staff_id":"stf_1"}`))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rr.Code)
	}
}

func TestTransactionHandlersListByDate(t *testing.T) {
	svc := &stubTransactionService{
		listFunc: func(ctx context.Context, query services.TransactionListQuery) ([]services.Transaction, error) {
			want := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
			if !query.Date.Equal(want) {
				t.Fatalf("date %v", query.Date)
			}
			return []services.Transaction{
				{ID: "txn_2", ServiceTypeID: "spray-only", Price: 10, Commission: 4, StaffID: "stf_1", StaffName: "أحمد"},
			}, nil
		},
	}
	router := newTransactionRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/transactions?date=2026-08-30", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Transactions []struct {
			ID      string `json:"id"`
			CarSize string `json:"car_size"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(body.Transactions) != 1 || body.Transactions[0].ID != "txn_2" {
		t.Fatalf("payload %+v", body.Transactions)
	}
	if body.Transactions[0].CarSize != "" {
		t.Fatalf("car_size must be omitted for sizeless rows, got %q", body.Transactions[0].CarSize)
	}
}

func TestTransactionHandlersListRejectsBadDate(t *testing.T) {
	router := newTransactionRouter(&stubTransactionService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/transactions?date=30-08-2026", ""))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestTransactionHandlersDelete(t *testing.T) {
	var deleted services.DeleteTransactionCommand
	svc := &stubTransactionService{
		deleteFunc: func(ctx context.Context, cmd services.DeleteTransactionCommand) error {
			deleted = cmd
			return nil
		},
	}
	router := newTransactionRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodDelete, "/transactions/txn_9", ""))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", rr.Code)
	}
	if deleted.OperatorID != "op_1" || deleted.TransactionID != "txn_9" {
		t.Fatalf("command %+v", deleted)
	}
}

func TestTransactionHandlersDeleteNotFound(t *testing.T) {
	svc := &stubTransactionService{
		deleteFunc: func(ctx context.Context, cmd services.DeleteTransactionCommand) error {
			return services.ErrTransactionNotFound
		},
	}
	router := newTransactionRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodDelete, "/transactions/txn_missing", ""))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rr.Code)
	}
}

func TestTransactionHandlersUnavailable(t *testing.T) {
	svc := &stubTransactionService{
		listFunc: func(ctx context.Context, query services.TransactionListQuery) ([]services.Transaction, error) {
			return nil, services.ErrTransactionUnavailable
		},
	}
	router := newTransactionRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/transactions?date=2026-08-30", ""))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rr.Code)
	}
}

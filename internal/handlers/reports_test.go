package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/washdesk/api/internal/services"
)

type stubReportService struct {
	dailyFunc  func(ctx context.Context, query services.DailyReportQuery) (services.DailyReport, error)
	exportFunc func(ctx context.Context, query services.DailyExportQuery) (services.DailyExport, error)
}

func (s *stubReportService) DailyReport(ctx context.Context, query services.DailyReportQuery) (services.DailyReport, error) {
	if s.dailyFunc == nil {
		return services.DailyReport{}, nil
	}
	return s.dailyFunc(ctx, query)
}

func (s *stubReportService) ExportDailyCSV(ctx context.Context, query services.DailyExportQuery) (services.DailyExport, error) {
	if s.exportFunc == nil {
		return services.DailyExport{}, nil
	}
	return s.exportFunc(ctx, query)
}

func newReportRouter(svc services.ReportService) chi.Router {
	handler := NewReportHandlers(nil, svc)
	router := chi.NewRouter()
	router.Route("/reports", handler.Routes)
	return router
}

func TestReportHandlersDaily(t *testing.T) {
	svc := &stubReportService{
		dailyFunc: func(ctx context.Context, query services.DailyReportQuery) (services.DailyReport, error) {
			if query.OperatorID != "op_1" || query.Lang != "ar" {
				t.Fatalf("query %+v", query)
			}
			want := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
			if !query.Date.Equal(want) {
				t.Fatalf("date %v", query.Date)
			}
			return services.DailyReport{
				Date: "2026-08-30",
				Summary: services.ReportSummary{
					TotalSales:      60,
					TotalCommission: 19,
					ByStaff:         map[string]int64{"أحمد": 15, "سامي": 4},
				},
				Transactions: []services.Transaction{{ID: "txn_1", Price: 25, Commission: 10}},
			}, nil
		},
	}
	router := newReportRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/reports/daily?date=2026-08-30&lang=ar", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Date    string `json:"date"`
		Summary struct {
			TotalSales      int64            `json:"total_sales"`
			TotalCommission int64            `json:"total_commission"`
			ByStaff         map[string]int64 `json:"by_staff"`
		} `json:"summary"`
		Transactions []json.RawMessage `json:"transactions"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if body.Date != "2026-08-30" || body.Summary.TotalSales != 60 || body.Summary.TotalCommission != 19 {
		t.Fatalf("payload %+v", body)
	}
	if body.Summary.ByStaff["أحمد"] != 15 {
		t.Fatalf("byStaff %v", body.Summary.ByStaff)
	}
	if len(body.Transactions) != 1 {
		t.Fatalf("transactions %d", len(body.Transactions))
	}
}

func TestReportHandlersDailyEmptyDay(t *testing.T) {
	svc := &stubReportService{
		dailyFunc: func(ctx context.Context, query services.DailyReportQuery) (services.DailyReport, error) {
			return services.DailyReport{
				Date:    "2026-08-30",
				Summary: services.ReportSummary{ByStaff: map[string]int64{}},
			}, nil
		},
	}
	router := newReportRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/reports/daily?date=2026-08-30", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 for an empty day", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"by_staff":{}`) {
		t.Fatalf("expected empty by_staff object: %s", rr.Body.String())
	}
}

func TestReportHandlersDailyRejectsBadDate(t *testing.T) {
	router := newReportRouter(&stubReportService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/reports/daily?date=yesterday", ""))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestReportHandlersExport(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("time,service\n")...)
	svc := &stubReportService{
		exportFunc: func(ctx context.Context, query services.DailyExportQuery) (services.DailyExport, error) {
			if query.Archive {
				t.Fatal("archive requested without the flag")
			}
			return services.DailyExport{Filename: "daily-report-2026-08-30.csv", Content: content}, nil
		},
	}
	router := newReportRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/reports/daily/export?date=2026-08-30&lang=en", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
		t.Fatalf("content type %q", got)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "daily-report-2026-08-30.csv") {
		t.Fatalf("content disposition %q", got)
	}
	if !bytes.Equal(rr.Body.Bytes(), content) {
		t.Fatal("body differs from export content")
	}
	if rr.Header().Get("X-Archive-Object") != "" {
		t.Fatal("archive header must be absent without archiving")
	}
}

func TestReportHandlersExportArchives(t *testing.T) {
	svc := &stubReportService{
		exportFunc: func(ctx context.Context, query services.DailyExportQuery) (services.DailyExport, error) {
			if !query.Archive {
				t.Fatal("expected archive flag")
			}
			return services.DailyExport{
				Filename:   "daily-report-2026-08-30.csv",
				Content:    []byte("csv"),
				ObjectName: "reports/op_1/2026-08-30.csv",
			}, nil
		},
	}
	router := newReportRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/reports/daily/export?date=2026-08-30&archive=true", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("X-Archive-Object"); got != "reports/op_1/2026-08-30.csv" {
		t.Fatalf("archive object %q", got)
	}
}

func TestReportHandlersExportArchiveFailure(t *testing.T) {
	svc := &stubReportService{
		exportFunc: func(ctx context.Context, query services.DailyExportQuery) (services.DailyExport, error) {
			return services.DailyExport{}, services.ErrReportArchiveFailed
		},
	}
	router := newReportRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/reports/daily/export?date=2026-08-30&archive=true", ""))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status %d, want 502", rr.Code)
	}
}

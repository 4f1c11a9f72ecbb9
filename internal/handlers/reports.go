package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/washdesk/api/internal/platform/auth"
	"github.com/washdesk/api/internal/platform/httpx"
	"github.com/washdesk/api/internal/services"
)

// ReportHandlers serves the daily rollups and CSV exports.
type ReportHandlers struct {
	authn   *auth.Authenticator
	reports services.ReportService
}

// NewReportHandlers constructs handlers for the /reports endpoints.
func NewReportHandlers(authn *auth.Authenticator, reports services.ReportService) *ReportHandlers {
	return &ReportHandlers{
		authn:   authn,
		reports: reports,
	}
}

// Routes wires the /reports endpoints onto the provided router.
func (h *ReportHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/daily", h.daily)
	r.Get("/daily/export", h.export)
}

type reportSummaryPayload struct {
	TotalSales      int64            `json:"total_sales"`
	TotalCommission int64            `json:"total_commission"`
	ByStaff         map[string]int64 `json:"by_staff"`
}

type dailyReportPayload struct {
	Date         string               `json:"date"`
	Summary      reportSummaryPayload `json:"summary"`
	Transactions []transactionPayload `json:"transactions"`
}

func (h *ReportHandlers) daily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.reports == nil {
		httpx.WriteError(ctx, w, httpx.NewError("report_service_unavailable", "report service is unavailable", http.StatusServiceUnavailable))
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "date must be formatted as YYYY-MM-DD", http.StatusBadRequest))
		return
	}

	report, err := h.reports.DailyReport(ctx, services.DailyReportQuery{
		OperatorID: uid,
		Date:       date,
		Lang:       r.URL.Query().Get("lang"),
	})
	if err != nil {
		h.writeReportError(ctx, w, err)
		return
	}

	byStaff := report.Summary.ByStaff
	if byStaff == nil {
		byStaff = map[string]int64{}
	}
	payload := dailyReportPayload{
		Date: report.Date,
		Summary: reportSummaryPayload{
			TotalSales:      report.Summary.TotalSales,
			TotalCommission: report.Summary.TotalCommission,
			ByStaff:         byStaff,
		},
		Transactions: make([]transactionPayload, 0, len(report.Transactions)),
	}
	for _, tx := range report.Transactions {
		payload.Transactions = append(payload.Transactions, buildTransactionPayload(tx))
	}

	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *ReportHandlers) export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.reports == nil {
		httpx.WriteError(ctx, w, httpx.NewError("report_service_unavailable", "report service is unavailable", http.StatusServiceUnavailable))
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "date must be formatted as YYYY-MM-DD", http.StatusBadRequest))
		return
	}

	archive := false
	if raw := strings.TrimSpace(r.URL.Query().Get("archive")); raw != "" {
		archive, err = strconv.ParseBool(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "archive must be a boolean", http.StatusBadRequest))
			return
		}
	}

	export, err := h.reports.ExportDailyCSV(ctx, services.DailyExportQuery{
		OperatorID: uid,
		Date:       date,
		Lang:       r.URL.Query().Get("lang"),
		Archive:    archive,
	})
	if err != nil {
		h.writeReportError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	if export.ObjectName != "" {
		w.Header().Set("X-Archive-Object", export.ObjectName)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Content)
}

func (h *ReportHandlers) writeReportError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrReportInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrReportArchiveFailed):
		httpx.WriteError(ctx, w, httpx.NewError("archive_failed", "report export could not be archived", http.StatusBadGateway))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_timeout", "request cancelled", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("report_service_unavailable", "report service is unavailable", http.StatusServiceUnavailable))
	}
}

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/language"

	domain "github.com/washdesk/api/internal/domain"
	"github.com/washdesk/api/internal/repositories"
)

var (
	// ErrReportInvalidInput signals a bad query such as a missing operator or date.
	ErrReportInvalidInput = errors.New("report: invalid input")
	// ErrReportUnavailable indicates the backing store could not serve the query.
	ErrReportUnavailable = errors.New("report: service unavailable")
	// ErrReportArchiveFailed indicates the export was rendered but could not be archived.
	ErrReportArchiveFailed = errors.New("report: archive failed")
)

// NameSelector picks the display name for a transaction's staff member.
type NameSelector func(domain.Transaction) string

var reportLocaleMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Arabic,
})

// NameSelectorForLang builds a selector for a BCP 47 language tag. Arabic
// requests use the native name; everything else uses the latin name, falling
// back to the native one when no latin spelling exists.
func NameSelectorForLang(lang string) NameSelector {
	tag, _ := language.MatchStrings(reportLocaleMatcher, lang)
	base, _ := tag.Base()
	arabic := base.String() == "ar"

	return func(tx domain.Transaction) string {
		if arabic {
			if name := strings.TrimSpace(tx.StaffName); name != "" {
				return name
			}
			return strings.TrimSpace(tx.StaffNameEN)
		}
		if name := strings.TrimSpace(tx.StaffNameEN); name != "" {
			return name
		}
		return strings.TrimSpace(tx.StaffName)
	}
}

// Aggregate rolls up transactions into a daily summary in a single pass. The
// result is independent of input order. Grouping keys are the display names
// chosen by the selector, so two staff sharing a name merge into one entry.
// Empty input yields zero totals and an empty map.
func Aggregate(transactions []domain.Transaction, selector NameSelector) domain.ReportSummary {
	if selector == nil {
		selector = NameSelectorForLang("")
	}

	summary := domain.ReportSummary{ByStaff: make(map[string]int64, len(transactions))}
	for _, tx := range transactions {
		summary.TotalSales += tx.Price
		summary.TotalCommission += tx.Commission
		summary.ByStaff[selector(tx)] += tx.Commission
	}
	return summary
}

// DailyReportQuery identifies one operator's reporting day. Date carries the
// civil day and its location; the time of day is ignored.
type DailyReportQuery struct {
	OperatorID string
	Date       time.Time
	Lang       string
}

// DailyReport is the rolled-up summary plus the underlying rows.
type DailyReport struct {
	Date         string
	Summary      domain.ReportSummary
	Transactions []domain.Transaction
}

// DailyExportQuery requests a CSV rendering; Archive additionally writes the
// file to the exports bucket.
type DailyExportQuery struct {
	OperatorID string
	Date       time.Time
	Lang       string
	Archive    bool
}

// DailyExport is the rendered CSV. ObjectName is set only when archived.
type DailyExport struct {
	Filename   string
	Content    []byte
	ObjectName string
}

// ReportServiceDeps wires the transaction store and optional archiver.
type ReportServiceDeps struct {
	Transactions repositories.TransactionRepository
	Catalog      domain.Catalog
	Archiver     ReportArchiver
	Logger       func(context.Context, string, map[string]any)
}

type reportService struct {
	transactions repositories.TransactionRepository
	catalog      domain.Catalog
	archiver     ReportArchiver
	logger       func(context.Context, string, map[string]any)
}

var _ ReportService = (*reportService)(nil)

// NewReportService constructs a ReportService.
func NewReportService(deps ReportServiceDeps) (ReportService, error) {
	if deps.Transactions == nil {
		return nil, errors.New("report service: transaction repository is required")
	}
	if deps.Catalog.Len() == 0 {
		return nil, errors.New("report service: catalog is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &reportService{
		transactions: deps.Transactions,
		catalog:      deps.Catalog,
		archiver:     deps.Archiver,
		logger:       logger,
	}, nil
}

func (s *reportService) DailyReport(ctx context.Context, query DailyReportQuery) (DailyReport, error) {
	transactions, day, err := s.loadDay(ctx, query.OperatorID, query.Date)
	if err != nil {
		return DailyReport{}, err
	}

	return DailyReport{
		Date:         day,
		Summary:      Aggregate(transactions, NameSelectorForLang(query.Lang)),
		Transactions: transactions,
	}, nil
}

func (s *reportService) ExportDailyCSV(ctx context.Context, query DailyExportQuery) (DailyExport, error) {
	transactions, day, err := s.loadDay(ctx, query.OperatorID, query.Date)
	if err != nil {
		return DailyExport{}, err
	}

	content, err := s.renderCSV(transactions, query.Lang)
	if err != nil {
		return DailyExport{}, fmt.Errorf("report: render csv: %w", err)
	}

	export := DailyExport{
		Filename: fmt.Sprintf("daily-report-%s.csv", day),
		Content:  content,
	}

	if query.Archive {
		if s.archiver == nil {
			return DailyExport{}, fmt.Errorf("%w: no archiver configured", ErrReportArchiveFailed)
		}
		object, err := s.archiver.ArchiveCSV(ctx, query.OperatorID, day, content)
		if err != nil {
			s.logger(ctx, "report.archive_failed", map[string]any{
				"operator_id": query.OperatorID,
				"date":        day,
				"error":       err.Error(),
			})
			return DailyExport{}, fmt.Errorf("%w: %v", ErrReportArchiveFailed, err)
		}
		export.ObjectName = object
		s.logger(ctx, "report.archived", map[string]any{
			"operator_id": query.OperatorID,
			"date":        day,
			"object":      object,
		})
	}

	return export, nil
}

func (s *reportService) loadDay(ctx context.Context, operatorID string, date time.Time) ([]domain.Transaction, string, error) {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" || date.IsZero() {
		return nil, "", ErrReportInvalidInput
	}

	start, end := dayWindow(date)
	transactions, err := s.transactions.ListByDay(ctx, operatorID, start, end)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %v", ErrReportUnavailable, err)
	}
	return transactions, start.Format("2006-01-02"), nil
}

// utf8BOM makes spreadsheet tools detect the encoding; the export carries
// Arabic staff names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type reportCSVRow struct {
	Time       string `csv:"time"`
	Service    string `csv:"service"`
	CarSize    string `csv:"car_size"`
	Staff      string `csv:"staff"`
	Coupon     string `csv:"coupon"`
	Price      int64  `csv:"price"`
	Commission int64  `csv:"commission"`
}

func (s *reportService) renderCSV(transactions []domain.Transaction, lang string) ([]byte, error) {
	selector := NameSelectorForLang(lang)
	tag, _ := language.MatchStrings(reportLocaleMatcher, lang)
	base, _ := tag.Base()
	arabic := base.String() == "ar"

	rows := make([]reportCSVRow, 0, len(transactions))
	for _, tx := range transactions {
		row := reportCSVRow{
			Time:       tx.Timestamp.Format(time.RFC3339),
			Service:    s.serviceLabel(tx.ServiceTypeID, arabic),
			Staff:      selector(tx),
			Coupon:     "no",
			Price:      tx.Price,
			Commission: tx.Commission,
		}
		if tx.CarSize != nil {
			row.CarSize = string(*tx.CarSize)
		}
		if tx.CouponApplied {
			row.Coupon = "yes"
		}
		rows = append(rows, row)
	}

	body, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(utf8BOM) + len(body))
	buf.Write(utf8BOM)
	buf.Write(body)
	return buf.Bytes(), nil
}

func (s *reportService) serviceLabel(serviceTypeID string, arabic bool) string {
	entry, ok := s.catalog.Entry(serviceTypeID)
	if !ok {
		return serviceTypeID
	}
	if arabic && strings.TrimSpace(entry.LabelAR) != "" {
		return entry.LabelAR
	}
	if strings.TrimSpace(entry.LabelEN) != "" {
		return entry.LabelEN
	}
	return entry.ID
}

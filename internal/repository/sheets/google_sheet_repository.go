package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/dairycoop/internal/config"
	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
)

const (
	reportsWriteRange = "Reports!A:J"
	reportsDateRange  = "Reports!A:A"
)

// Repository defines the row operations supported by the Google Sheets adapter.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// ReportExporter appends daily reports to the "Reports" sheet, one row per date.
type ReportExporter struct {
	repo   Repository
	logger *zap.Logger
}

// NewReportExporter wraps repo.
func NewReportExporter(repo Repository, logger *zap.Logger) *ReportExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportExporter{repo: repo, logger: logger}
}

// ExportDailyReport appends the report unless a row for its date already exists.
func (e *ReportExporter) ExportDailyReport(ctx context.Context, report models.DailyReport) error {
	date := calendar.Format(report.Date)

	rows, err := e.repo.ReadRange(ctx, reportsDateRange)
	if err != nil {
		return fmt.Errorf("load exported report dates: %w", err)
	}
	for _, row := range rows {
		if len(row) > 0 && fmt.Sprint(row[0]) == date {
			e.logger.Debug("report already exported", zap.String("date", date))
			return nil
		}
	}

	return e.repo.WriteRow(ctx, reportsWriteRange, ReportRow(report))
}

// ReportRow lays a report out in sheet column order.
func ReportRow(report models.DailyReport) []interface{} {
	return []interface{}{
		calendar.Format(report.Date),
		report.MilkCollected,
		report.MilkSold,
		report.MilkSpoilt,
		report.SpoilageLoss,
		report.Earnings,
		report.CurrentStock,
		report.EligibleCows,
		report.BlockedCows,
		report.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

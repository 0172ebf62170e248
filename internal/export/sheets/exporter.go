package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/shankarelec/stocktrack/internal/config"
	"github.com/shankarelec/stocktrack/internal/domain/models"
	"github.com/shankarelec/stocktrack/pkg/dates"
)

// Exporter writes the four stock views as a tabular workbook.
type Exporter interface {
	ExportWorkbook(ctx context.Context, views models.StockViews) error
}

// Header is the fixed column set of every exported sheet.
var Header = []interface{}{"Model", "Variant", "IMEI", "Quantity", "Purchase Date", "Action Date", "Status"}

// SheetCurrent and friends name the workbook tabs, one per view. The tabs
// must already exist in the target spreadsheet.
const (
	SheetCurrent  = "Current Stock"
	SheetSold     = "Sold Stock"
	SheetReturned = "Returned Stock"
	SheetHistory  = "Full History"
)

// Rows renders units as spreadsheet rows in the Header column order. A unit
// without an action date renders an empty cell.
func Rows(units []models.InventoryUnit, loc *time.Location) [][]interface{} {
	rows := make([][]interface{}, 0, len(units))
	for _, unit := range units {
		actionDate := ""
		if unit.ActionDate != nil {
			actionDate = dates.Format(*unit.ActionDate, loc)
		}

		rows = append(rows, []interface{}{
			unit.Model,
			unit.Variant,
			unit.IMEI,
			unit.Quantity,
			dates.Format(unit.PurchaseDate, loc),
			actionDate,
			string(unit.Status),
		})
	}
	return rows
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	loc           *time.Location
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, loc *time.Location, logger *zap.Logger) (*GoogleSheetExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		loc:           loc,
		logger:        logger,
	}, nil
}

// ExportWorkbook rewrites all four view sheets from the given views.
func (e *GoogleSheetExporter) ExportWorkbook(ctx context.Context, views models.StockViews) error {
	targets := []struct {
		sheet string
		units []models.InventoryUnit
	}{
		{SheetCurrent, views.Current},
		{SheetSold, views.Sold},
		{SheetReturned, views.Returned},
		{SheetHistory, views.History},
	}

	for _, target := range targets {
		if err := e.writeSheet(ctx, target.sheet, target.units); err != nil {
			return err
		}
	}

	e.logger.Info("workbook exported", zap.Int("units", len(views.History)))
	return nil
}

func (e *GoogleSheetExporter) writeSheet(ctx context.Context, sheet string, units []models.InventoryUnit) error {
	clearRange := fmt.Sprintf("%s!A:G", sheet)
	if _, err := e.service.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	values := append([][]interface{}{Header}, Rows(units, e.loc)...)
	payload := &sheetsapi.ValueRange{Values: values}

	call := e.service.Spreadsheets.Values.Update(e.spreadsheetID, fmt.Sprintf("%s!A1", sheet), payload).
		ValueInputOption("RAW").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", sheet, err)
	}

	e.logger.Debug("sheet rewritten", zap.String("sheet", sheet), zap.Int("rows", len(units)))
	return nil
}

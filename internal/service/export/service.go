// Package export flattens stored sales into one line per item and writes them
// as CSV, XLSX or into a Google Sheet.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/pricing"
	sheetsrepo "github.com/mamadbah2/salesdesk/internal/repository/sheets"
)

const (
	dateLayout  = "2006-01-02"
	fileStamp   = "20060102_150405"
	filePrefix  = "hcl_sales_export_"
	sheetName   = "Sales"
)

// ErrSheetsDisabled is returned by SyncSheet when no sheet is configured.
var ErrSheetsDisabled = errors.New("google sheets export is not configured")

// Header lists the export columns in order.
var Header = []string{"Date", "Client Name", "Quantity (kg)", "Rate/ kg (cost)", "Selling Rate/kg", "Freight", "SP Total", "CP (auto)", "P/L (auto)"}

// SaleLister is the read side exports are built from.
type SaleLister interface {
	ListSales(ctx context.Context) ([]models.Sale, error)
}

// Service builds sale exports.
type Service struct {
	sales    SaleLister
	sheet    sheetsrepo.Repository
	location *time.Location
	logger   *zap.Logger
}

// NewService wires an export service. sheet may be nil when the Google Sheets
// export is not configured; loc names export files and defaults to UTC.
func NewService(sales SaleLister, sheet sheetsrepo.Repository, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{sales: sales, sheet: sheet, location: loc, logger: logger}
}

// FileName returns the download name for an export created at now.
func (s *Service) FileName(now time.Time, ext string) string {
	return filePrefix + now.In(s.location).Format(fileStamp) + "." + ext
}

// Lines returns one export line per sale item, oldest sale first. Freight is
// repeated on every line of its sale and left out of the line cost.
func (s *Service) Lines(ctx context.Context) ([]models.ExportLine, error) {
	sales, err := s.sales.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	sort.SliceStable(sales, func(i, j int) bool {
		if !sales[i].Date.Equal(sales[j].Date) {
			return sales[i].Date.Before(sales[j].Date)
		}
		return sales[i].CreatedAt.Before(sales[j].CreatedAt)
	})

	lines := make([]models.ExportLine, 0, len(sales))
	for _, sale := range sales {
		for _, item := range sale.Items {
			revenue := pricing.RoundMoney(item.Revenue())
			cost := pricing.RoundMoney(item.Cost())
			lines = append(lines, models.ExportLine{
				Date:       sale.Date.Format(dateLayout),
				ClientName: sale.ClientName,
				Quantity:   pricing.RoundMoney(decimal.NewFromFloat(item.QuantityKg)).InexactFloat64(),
				CostRate:   item.CostRatePerKg,
				SellRate:   item.SellingRatePerKg,
				Freight:    sale.Freight,
				Revenue:    revenue.InexactFloat64(),
				Cost:       cost.InexactFloat64(),
				Profit:     revenue.Sub(cost).InexactFloat64(),
			})
		}
	}
	return lines, nil
}

type lineValues []interface{}

func (l lineValues) strings() []string {
	out := make([]string, len(l))
	for i, v := range l {
		switch value := v.(type) {
		case string:
			out[i] = value
		case float64:
			out[i] = strconv.FormatFloat(value, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(value)
		}
	}
	return out
}

func values(line models.ExportLine) lineValues {
	return lineValues{line.Date, line.ClientName, line.Quantity, line.CostRate, line.SellRate, line.Freight, line.Revenue, line.Cost, line.Profit}
}

func headerValues() lineValues {
	row := make(lineValues, len(Header))
	for i, h := range Header {
		row[i] = h
	}
	return row
}

// WriteCSV writes the header and every export line to w.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	lines, err := s.Lines(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, line := range lines {
		if err := cw.Write(values(line).strings()); err != nil {
			return fmt.Errorf("write csv line: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a single Sales sheet to w.
func (s *Service) WriteXLSX(ctx context.Context, w io.Writer) error {
	lines, err := s.Lines(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("failed to close workbook", zap.Error(cerr))
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	rows := make([]lineValues, 0, len(lines)+1)
	rows = append(rows, headerValues())
	for _, line := range lines {
		rows = append(rows, values(line))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		cells := []interface{}(row)
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SyncSheet rewrites the configured Google Sheet with every export line and
// returns the number of lines written.
func (s *Service) SyncSheet(ctx context.Context) (int, error) {
	if s.sheet == nil {
		return 0, ErrSheetsDisabled
	}
	lines, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([][]interface{}, 0, len(lines)+1)
	rows = append(rows, headerValues())
	for _, line := range lines {
		rows = append(rows, values(line))
	}
	if err := s.sheet.ReplaceRange(ctx, sheetName, rows); err != nil {
		return 0, fmt.Errorf("sync sheet: %w", err)
	}

	s.logger.Info("sales sheet synced", zap.Int("lines", len(lines)))
	return len(lines), nil
}

// Package reports renders back-office exports as XLSX workbooks.
package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ichaoui56/e-commerce-backoffice/internal/inventory"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
)

const (
	inventorySheet   = "Inventory"
	summarySheet     = "Summary"
	ContentTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	inventoryColumns = 9
)

var inventoryHeader = []any{
	"Product", "Color", "Size", "Stock", "Reserved", "Available", "Price", "Status", "Updated at",
}

type stockLister interface {
	ListStock(ctx context.Context, search string) ([]inventory.StockRow, error)
	Overview(ctx context.Context) (*inventory.Overview, error)
}

// Exporter builds inventory workbooks from the live stock table.
type Exporter struct {
	stock stockLister
	now   func() time.Time
}

func NewExporter(stock stockLister) (*Exporter, error) {
	if stock == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &Exporter{stock: stock, now: time.Now}, nil
}

// Filename names an export after its generation date.
func (e *Exporter) Filename() string {
	return fmt.Sprintf("inventory-%s.xlsx", e.now().UTC().Format("2006-01-02"))
}

// WriteInventory streams a two-sheet workbook: every size row, then the
// in/low/out summary.
func (e *Exporter) WriteInventory(ctx context.Context, w io.Writer, search string) error {
	rows, err := e.stock.ListStock(ctx, search)
	if err != nil {
		return err
	}
	overview, err := e.stock.Overview(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return exportError(err)
	}
	if err := writeInventorySheet(f, rows); err != nil {
		return exportError(err)
	}
	if err := writeSummarySheet(f, overview, e.now().UTC()); err != nil {
		return exportError(err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return exportError(err)
	}
	return nil
}

func writeInventorySheet(f *excelize.File, rows []inventory.StockRow) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(inventorySheet, "A1", &inventoryHeader); err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(inventoryColumns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(inventorySheet, "A1", lastHeader, bold); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		price, _ := row.Price.Float64()
		values := []any{
			row.ProductName,
			row.ColorName,
			row.SizeLabel,
			row.Stock,
			row.ReservedStock,
			row.AvailableStock,
			price,
			string(row.Status),
			row.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(inventorySheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(inventorySheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(inventorySheet, "B", "H", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(inventorySheet, "I", "I", 22); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	lastCell, err := excelize.CoordinatesToCellName(inventoryColumns, len(rows)+1)
	if err != nil {
		return err
	}
	return f.AutoFilter(inventorySheet, "A1:"+lastCell, nil)
}

func writeSummarySheet(f *excelize.File, overview *inventory.Overview, generatedAt time.Time) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	lines := [][]any{
		{"Generated at", generatedAt.Format(time.RFC3339)},
		{"Low stock threshold", overview.Threshold},
		{"In stock", overview.InStock},
		{"Low stock", overview.LowStock},
		{"Out of stock", overview.OutOfStock},
	}
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &line); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 22)
}

func exportError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render inventory workbook")
}

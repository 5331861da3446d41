// Package export renders stored records as spreadsheets.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/money"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Invoice sheet layout
const (
	invoiceSheet = "Invoice"

	cellTitle     = "A1"
	cellNumber    = "B3"
	cellCustomer  = "B4"
	cellProject   = "B5"
	cellIssueDate = "B6"
	cellDueDate   = "B7"

	headerRow    = 9
	itemRowStart = 10

	colSequence    = "A"
	colDescription = "B"
	colQuantity    = "C"
	colUnitPrice   = "D"
	colAmount      = "E"
	colDisplay     = "F"
)

// InvoiceExporter writes invoices as xlsx workbooks.
type InvoiceExporter struct {
	outputDir string
	money     *money.Formatter
	logger    *zap.Logger
}

// NewInvoiceExporter creates an exporter. outputDir is only needed by
// SaveFile.
func NewInvoiceExporter(outputDir string, formatter *money.Formatter, logger *zap.Logger) *InvoiceExporter {
	if formatter == nil {
		formatter = money.MustFormatter(money.DefaultCode, money.DefaultLocale)
	}
	return &InvoiceExporter{
		outputDir: outputDir,
		money:     formatter,
		logger:    logger,
	}
}

// FileName returns the download name of an invoice workbook.
func FileName(inv *entity.Invoice) string {
	return fmt.Sprintf("invoice-%d.xlsx", inv.ID)
}

// Write renders inv and streams the workbook to w.
func (e *InvoiceExporter) Write(ctx context.Context, inv *entity.Invoice, w io.Writer) error {
	file, err := e.build(ctx, inv)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveFile renders inv into the output directory and returns the path.
func (e *InvoiceExporter) SaveFile(ctx context.Context, inv *entity.Invoice) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := e.build(ctx, inv)
	if err != nil {
		return "", err
	}
	defer file.Close()

	path := filepath.Join(e.outputDir, FileName(inv))
	if err := file.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	e.logger.Info("Invoice exported",
		zap.Int64("invoice_id", inv.ID),
		zap.String("output_path", path),
		zap.Int("item_count", len(inv.Items)))
	return path, nil
}

func (e *InvoiceExporter) build(ctx context.Context, inv *entity.Invoice) (*excelize.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", invoiceSheet); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := e.fillHeader(file, inv); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to fill header: %w", err)
	}
	last, err := e.fillItems(file, inv.Items)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to fill items: %w", err)
	}
	if err := e.fillTotals(file, inv, last+2); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to fill totals: %w", err)
	}

	e.logger.Debug("Invoice workbook built",
		zap.Int64("invoice_id", inv.ID),
		zap.Int("item_count", len(inv.Items)))
	return file, nil
}

func (e *InvoiceExporter) fillHeader(file *excelize.File, inv *entity.Invoice) error {
	cells := []struct {
		label, cell string
		value       any
	}{
		{"Invoice No.", cellNumber, inv.ID},
		{"Customer", cellCustomer, inv.Customer},
		{"Project", cellProject, inv.Project},
		{"Issue date", cellIssueDate, inv.IssueDate},
		{"Due date", cellDueDate, inv.DueDate},
	}

	if err := file.SetCellValue(invoiceSheet, cellTitle, "INVOICE"); err != nil {
		return err
	}
	for _, c := range cells {
		labelCell := "A" + c.cell[1:]
		if err := file.SetCellValue(invoiceSheet, labelCell, c.label); err != nil {
			return fmt.Errorf("failed to set %s label: %w", c.label, err)
		}
		if err := file.SetCellValue(invoiceSheet, c.cell, c.value); err != nil {
			return fmt.Errorf("failed to set %s: %w", c.label, err)
		}
	}

	header := []any{"#", "Description", "Quantity", "Unit price", "Amount", "Amount (" + e.money.Code() + ")"}
	cell, _ := excelize.CoordinatesToCellName(1, headerRow)
	return file.SetSheetRow(invoiceSheet, cell, &header)
}

// fillItems writes one row per line item and returns the last row used.
func (e *InvoiceExporter) fillItems(file *excelize.File, items []entity.LineItem) (int, error) {
	row := headerRow
	for i, item := range items {
		row = itemRowStart + i
		values := []struct {
			col   string
			value any
		}{
			{colSequence, i + 1},
			{colDescription, item.Description},
			{colQuantity, item.Quantity},
			{colUnitPrice, item.UnitPrice},
			{colAmount, item.Amount},
			{colDisplay, e.money.Format(item.Amount)},
		}
		for _, v := range values {
			cell := fmt.Sprintf("%s%d", v.col, row)
			if err := file.SetCellValue(invoiceSheet, cell, v.value); err != nil {
				return 0, fmt.Errorf("failed to set %s: %w", cell, err)
			}
		}
	}
	return row, nil
}

func (e *InvoiceExporter) fillTotals(file *excelize.File, inv *entity.Invoice, row int) error {
	totals := []struct {
		label  string
		amount float64
	}{
		{"Subtotal", inv.Subtotal},
		{"Tax", inv.Tax},
		{"Total", inv.Total},
	}
	for i, t := range totals {
		r := row + i
		if err := file.SetCellValue(invoiceSheet, fmt.Sprintf("%s%d", colUnitPrice, r), t.label); err != nil {
			return err
		}
		if err := file.SetCellValue(invoiceSheet, fmt.Sprintf("%s%d", colAmount, r), t.amount); err != nil {
			return err
		}
		if err := file.SetCellValue(invoiceSheet, fmt.Sprintf("%s%d", colDisplay, r), e.money.Format(t.amount)); err != nil {
			return err
		}
	}

	if inv.Notes != "" {
		r := row + len(totals) + 1
		if err := file.SetCellValue(invoiceSheet, fmt.Sprintf("A%d", r), "Notes"); err != nil {
			return err
		}
		if err := file.SetCellValue(invoiceSheet, fmt.Sprintf("B%d", r), inv.Notes); err != nil {
			return err
		}
	}
	return nil
}

package exporter

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
)

// CartSheet name of the single worksheet
const CartSheet = "Cart"

var cartHeader = []interface{}{"ID", "Title", "SKU", "Unit Price", "Discount %", "Quantity", "Line Total"}

type excelExporter struct{}

// NewExcelExporter cart exporter producing .xlsx documents
func NewExcelExporter() repository.CartExporter {
	return &excelExporter{}
}

// ExportCart one row per cart line plus a total row
func (e *excelExporter) ExportCart(ctx context.Context, lines []entity.CartLine) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CartSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := f.SetSheetRow(CartSheet, "A1", &cartHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	total := decimal.Zero
	count := 0
	for i, line := range lines {
		row := []interface{}{
			line.Product.ID,
			line.Product.Title,
			line.Product.SKU,
			line.UnitPrice.Round(2).InexactFloat64(),
			line.Product.DiscountPercentage.InexactFloat64(),
			line.Quantity,
			line.LineTotal.Round(2).InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(CartSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
		total = total.Add(line.LineTotal)
		count += line.Quantity
	}

	totalCell, err := excelize.CoordinatesToCellName(1, len(lines)+2)
	if err != nil {
		return nil, err
	}
	totalRow := []interface{}{"Total", "", "", "", "", count, total.Round(2).InexactFloat64()}
	if err := f.SetSheetRow(CartSheet, totalCell, &totalRow); err != nil {
		return nil, fmt.Errorf("failed to write total row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

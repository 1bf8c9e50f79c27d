package analysis

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/paisalens/paisalens/internal/domain/charts"
)

// categoryRow is the CSV shape of one category breakdown line.
type categoryRow struct {
	Category string  `csv:"category"`
	Amount   float64 `csv:"amount_inr"`
}

// WriteCategoryCSV writes the category breakdown as CSV.
func WriteCategoryCSV(w io.Writer, p *charts.Payload) error {
	rows := make([]categoryRow, 0, len(p.CategorySpending))
	for _, c := range p.CategorySpending {
		rows = append(rows, categoryRow{Category: c.Category, Amount: c.Amount.Rupees()})
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteBreakdownXLSX writes the spending breakdown as an Excel workbook
// with one sheet per breakdown.
func WriteBreakdownXLSX(w io.Writer, p *charts.Payload) error {
	f := excelize.NewFile()
	defer f.Close()

	const first = "Categories"
	if err := f.SetSheetName("Sheet1", first); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeSheet(f, first, "Category", func(add func(string, float64)) {
		for _, c := range p.CategorySpending {
			add(c.Category, c.Amount.Rupees())
		}
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet("Merchants"); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := writeSheet(f, "Merchants", "Merchant", func(add func(string, float64)) {
		for _, m := range charts.MergeTopMerchants(p.TopMerchants) {
			add(m.Merchant, m.Amount.Rupees())
		}
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet("Monthly"); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := writeSheet(f, "Monthly", "Month", func(add func(string, float64)) {
		for _, m := range p.MonthlySpending {
			add(m.Month, m.Amount.Rupees())
		}
	}); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeSheet fills a sheet with a label/amount table.
func writeSheet(f *excelize.File, sheet, label string, fill func(add func(string, float64))) error {
	var outerErr error

	setCell := func(cell string, value any) {
		if outerErr == nil {
			outerErr = f.SetCellValue(sheet, cell, value)
		}
	}

	setCell("A1", label)
	setCell("B1", "Amount (INR)")

	row := 2
	fill(func(name string, amount float64) {
		setCell(fmt.Sprintf("A%d", row), name)
		setCell(fmt.Sprintf("B%d", row), amount)
		row++
	})

	if outerErr != nil {
		return fmt.Errorf("failed to fill sheet %s: %w", sheet, outerErr)
	}
	return nil
}

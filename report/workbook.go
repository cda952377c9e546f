package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/school"
)

// Sheet names in workbook order.
const (
	SheetSummary     = "Summary"
	SheetTuition     = "Tuition"
	SheetDiscounts   = "Discounts"
	SheetRevenue     = "Revenue"
	SheetBudget      = "Budget"
	SheetAfterschool = "Afterschool"
)

// WriteWorkbook exports a calculated plan as an .xlsx workbook.
func WriteWorkbook(w io.Writer, r engine.Result) error {
	f, err := BuildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook lays out one sheet per plan section.
func BuildWorkbook(r engine.Result) (*excelize.File, error) {
	sheets := []namedSheet{
		{SheetSummary, summarySheet(r)},
		{SheetTuition, tuitionSheet(r)},
		{SheetDiscounts, discountSheet(r)},
		{SheetRevenue, itemSheet(r.RevenueItems)},
		{SheetBudget, itemSheet(r.BudgetItems)},
	}
	if r.Afterschool != nil {
		sheets = append(sheets, namedSheet{SheetAfterschool, afterschoolSheet(*r.Afterschool)})
	}
	return newWorkbook(sheets)
}

type namedSheet struct {
	name string
	tbl  sheetTable
}

// newWorkbook writes sheets in order, the first one replacing the default
// "Sheet1". The file is closed on error.
func newWorkbook(sheets []namedSheet) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, s := range sheets {
		var err error
		if i == 0 {
			err = f.SetSheetName("Sheet1", s.name)
		} else {
			_, err = f.NewSheet(s.name)
		}
		if err == nil {
			err = writeSheet(f, s.name, s.tbl)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// sheetTable holds cells as strings or float64 so numbers stay numeric.
type sheetTable struct {
	headers []string
	rows    [][]any
}

func writeSheet(f *excelize.File, sheet string, t sheetTable) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, h := range t.headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if len(t.headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(t.headers))
		if err := f.SetColWidth(sheet, "A", "A", 36); err != nil {
			return err
		}
		if lastCol != "A" {
			if err := f.SetColWidth(sheet, "B", lastCol, 14); err != nil {
				return err
			}
		}
	}

	for r, row := range t.rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func num(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func summarySheet(r engine.Result) sheetTable {
	t := sheetTable{
		headers: []string{"Metric", "Amount"},
		rows: [][]any{
			{"Gross Tuition", num(r.TotalTuitionGross)},
			{"Discounts", num(r.TotalDiscounts)},
			{"Net Tuition", num(r.NetTuition)},
			{"Total Revenue", num(r.TotalRevenue)},
			{"Total Expenses", num(r.TotalExpenses)},
			{"Net Margin", num(r.NetMargin)},
			{"Margin %", num(r.MarginPercent)},
			{"Students", num(r.TotalHeadcount)},
		},
	}
	for _, s := range school.RevenueMix(r) {
		t.rows = append(t.rows, []any{"Mix: " + s.Name, num(s.Value)})
	}
	return t
}

func tuitionSheet(r engine.Result) sheetTable {
	t := sheetTable{headers: []string{"Tier", "Id", "Ratio %", "Price", "Students", "Gross"}}
	for _, tier := range r.Tiers {
		t.rows = append(t.rows, []any{
			tier.Label, string(tier.ID), num(tier.Ratio), num(tier.CalculatedPrice), num(tier.Qty), num(tier.Gross),
		})
	}
	return t
}

func discountSheet(r engine.Result) sheetTable {
	t := sheetTable{headers: []string{"Program", "Tier", "Students", "Discount %", "Value"}}
	for _, prog := range r.Discounts {
		for _, line := range prog.Lines {
			t.rows = append(t.rows, []any{
				prog.Label, string(line.TierID), num(line.Qty), num(line.DiscountPercent), num(line.Value),
			})
		}
	}
	return t
}

func itemSheet(items []engine.ComputedItem) sheetTable {
	t := sheetTable{headers: []string{"Account", "Id", "Baseline", "Adj %", "Adj $", "Final", "Linked"}}
	for _, it := range items {
		t.rows = append(t.rows, []any{
			it.Label, string(it.ID), num(it.Baseline), num(it.ModifierPercent), num(it.ModifierFixed), num(it.FinalValue), it.Linked,
		})
	}
	return t
}

func afterschoolSheet(s engine.AfterschoolSummary) sheetTable {
	t := sheetTable{headers: []string{"Tier", "Mon", "Tue", "Wed", "Thu", "Fri", "Weekly"}}
	for _, row := range s.Rows {
		cells := []any{string(row.TierID)}
		for _, h := range row.Hours {
			cells = append(cells, num(h))
		}
		t.rows = append(t.rows, append(cells, num(row.Weekly)))
	}
	t.rows = append(t.rows,
		[]any{"Dollar per hour", num(s.DollarPerHour)},
		[]any{"Annual revenue", num(s.AnnualRevenue)},
	)
	return t
}

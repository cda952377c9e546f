package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/school"
)

// Theme colors
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().Foreground(ColorTextMuted)
	goodStyle  = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	badStyle   = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorOrange)
)

// Table is a titled grid of cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col > 0 {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}
	b.WriteString(tbl.String())
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// PLAN SUMMARY
// =============================================================================

// Summary renders every section of a calculated plan for the terminal.
func Summary(title string, r engine.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for _, t := range []Table{TierTable(r), DiscountTable(r), ItemTable("Revenue", r.RevenueItems), ItemTable("Budget", r.BudgetItems)} {
		b.WriteString(RenderTable(t))
		b.WriteString("\n")
	}
	if r.Afterschool != nil {
		b.WriteString(RenderTable(AfterschoolTable(*r.Afterschool)))
		b.WriteString("\n")
	}

	b.WriteString(RenderTable(TotalsTable(r)))

	margin := goodStyle
	if r.NetMargin.IsNegative() {
		margin = badStyle
	}
	fmt.Fprintf(&b, "\n  Net margin %s (%s)\n",
		margin.Render(FormatMoney(r.NetMargin)), margin.Render(FormatPercent(r.MarginPercent)))

	if mix := school.RevenueMix(r); len(mix) > 0 {
		b.WriteString(mutedStyle.Render("  Revenue mix:"))
		for _, s := range mix {
			fmt.Fprintf(&b, " %s %s", s.Name, FormatMoneyK(s.Value))
		}
		b.WriteString("\n")
	}

	for _, w := range engine.Check(r) {
		b.WriteString("  ")
		b.WriteString(warnStyle.Render("! " + w.Message))
		b.WriteString("\n")
	}
	return b.String()
}

// TierTable lists every tier with its price and gross.
func TierTable(r engine.Result) Table {
	t := Table{Title: "Tuition", Headers: []string{"Tier", "Ratio", "Price", "Students", "Gross"}}
	for _, tier := range r.Tiers {
		t.Rows = append(t.Rows, []string{
			tier.Label,
			FormatQty(tier.Ratio) + "%",
			FormatMoney(tier.CalculatedPrice),
			FormatQty(tier.Qty),
			FormatMoney(tier.Gross),
		})
	}
	t.Rows = append(t.Rows, []string{"Total", "", "", FormatQty(r.TotalHeadcount), FormatMoney(r.TotalTuitionGross)})
	return t
}

// DiscountTable lists each program's allocations.
func DiscountTable(r engine.Result) Table {
	t := Table{Title: "Discounts", Headers: []string{"Program", "Tier", "Students", "Discount", "Value"}}
	for _, prog := range r.Discounts {
		for _, line := range prog.Lines {
			t.Rows = append(t.Rows, []string{
				prog.Label,
				string(line.TierID),
				FormatQty(line.Qty),
				FormatQty(line.DiscountPercent) + "%",
				FormatMoney(line.Value),
			})
		}
	}
	t.Rows = append(t.Rows, []string{"Total", "", "", "", FormatMoney(r.TotalDiscounts)})
	return t
}

// ItemTable lists line items with their modifiers and final values.
func ItemTable(title string, items []engine.ComputedItem) Table {
	t := Table{Title: title, Headers: []string{"Account", "Baseline", "Adj %", "Adj $", "Final"}}
	for _, it := range items {
		label := it.Label
		if it.Linked {
			label += " (linked)"
		}
		t.Rows = append(t.Rows, []string{
			label,
			FormatMoney(it.Baseline),
			FormatQty(it.ModifierPercent),
			FormatMoney(it.ModifierFixed),
			FormatMoney(it.FinalValue),
		})
	}
	return t
}

// AfterschoolTable lists weekly hours per tier.
func AfterschoolTable(s engine.AfterschoolSummary) Table {
	t := Table{Title: "Afterschool", Headers: []string{"Tier", "Mon", "Tue", "Wed", "Thu", "Fri", "Weekly"}}
	for _, row := range s.Rows {
		cells := []string{string(row.TierID)}
		for _, h := range row.Hours {
			cells = append(cells, FormatQty(h))
		}
		cells = append(cells, FormatQty(row.Weekly))
		t.Rows = append(t.Rows, cells)
	}
	t.Rows = append(t.Rows, []string{
		fmt.Sprintf("@ %s/hr", FormatMoney(s.DollarPerHour)), "", "", "", "", "", FormatMoney(s.AnnualRevenue),
	})
	return t
}

// TotalsTable is the headline figures.
func TotalsTable(r engine.Result) Table {
	return Table{
		Title:   "Totals",
		Headers: []string{"Metric", "Amount"},
		Rows: [][]string{
			{"Gross Tuition", FormatMoney(r.TotalTuitionGross)},
			{"Discounts", FormatMoney(r.TotalDiscounts)},
			{"Net Tuition", FormatMoney(r.NetTuition)},
			{"Total Revenue", FormatMoney(r.TotalRevenue)},
			{"Total Expenses", FormatMoney(r.TotalExpenses)},
			{"Net Margin", FormatMoney(r.NetMargin)},
		},
	}
}

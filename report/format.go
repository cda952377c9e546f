// Package report renders calculated plans for people: terminal tables and
// spreadsheet workbooks.
package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatMoney rounds to whole dollars: 169952.4 -> "$169,952", -20000 -> "-$20,000".
func FormatMoney(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	if n < 0 {
		return "-$" + FormatNumber(-n)
	}
	return "$" + FormatNumber(n)
}

// FormatMoneyK abbreviates to thousands: 194952 -> "$195K".
func FormatMoneyK(d decimal.Decimal) string {
	return FormatMoney(d.Div(thousand)) + "K"
}

// FormatPercent formats a percentage value with two decimals: 2.5401 -> "2.54%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// FormatQty drops trailing zeros: 18 -> "18", 2.50 -> "2.5".
func FormatQty(d decimal.Decimal) string {
	return d.String()
}

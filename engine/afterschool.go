package engine

import "github.com/shopspring/decimal"

const (
	// Weekdays is the number of columns in the afterschool hours table.
	Weekdays = 5

	// WeeksPerYear is the school-year length used to annualize weekly hours.
	WeeksPerYear = 36
)

// TierHours is one row of the hours table with its weekly sum.
type TierHours struct {
	TierID TierID
	Hours  [Weekdays]decimal.Decimal
	Weekly decimal.Decimal
}

type AfterschoolSummary struct {
	DollarPerHour    decimal.Decimal
	Rows             []TierHours
	WeeklyChildHours decimal.Decimal
	AnnualRevenue    decimal.Decimal
}

// AfterschoolRevenue annualizes the hours table:
//
//	annual = Σ cells * WeeksPerYear * dollarPerHour
func AfterschoolRevenue(a Afterschool) AfterschoolSummary {
	summary := AfterschoolSummary{DollarPerHour: a.DollarPerHour, WeeklyChildHours: decimal.Zero}

	for _, id := range tierIDsOf(a.HoursByTier) {
		row, ok := a.HoursByTier[id]
		if !ok {
			continue
		}
		weekly := decimal.Zero
		for _, h := range row {
			weekly = weekly.Add(h)
		}
		summary.Rows = append(summary.Rows, TierHours{TierID: id, Hours: row, Weekly: weekly})
		summary.WeeklyChildHours = summary.WeeklyChildHours.Add(weekly)
	}

	summary.AnnualRevenue = summary.WeeklyChildHours.
		Mul(decimal.NewFromInt(WeeksPerYear)).
		Mul(a.DollarPerHour)
	return summary
}

func tierIDsOf(rows map[TierID][Weekdays]decimal.Decimal) []TierID {
	tiers := make(map[TierID]TuitionTier, len(rows))
	for id := range rows {
		tiers[id] = TuitionTier{}
	}
	return tierIDs(tiers)
}

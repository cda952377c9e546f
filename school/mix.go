package school

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sundrop/budget-planner/engine"
)

// PaymentMonths is how many installments the base rate is billed in.
const PaymentMonths = 10

// grantItems feed the "Grants & State" slice.
var grantItems = []engine.ItemID{"r_oia", "r_state", "r_local"}

// MixSlice is one wedge of the revenue mix chart.
type MixSlice struct {
	Name  string
	Value decimal.Decimal
}

// MonthlyApprox is the per-installment full-time rate.
func MonthlyApprox(baseFTPrice decimal.Decimal) decimal.Decimal {
	return baseFTPrice.Div(decimal.NewFromInt(PaymentMonths))
}

// TuitionSplit divides net tuition between the full-time tier and every
// other tier, each carrying discounts in proportion to its share of gross.
func TuitionSplit(r engine.Result) (fullTime, partTime decimal.Decimal) {
	if !r.TotalTuitionGross.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	ftGross := decimal.Zero
	if ft, ok := (engine.TierSummary{Tiers: r.Tiers}).Lookup(engine.TierFullTime); ok {
		ftGross = ft.Gross
	}
	ptGross := r.TotalTuitionGross.Sub(ftGross)

	share := func(gross decimal.Decimal) decimal.Decimal {
		return gross.Sub(r.TotalDiscounts.Mul(gross).Div(r.TotalTuitionGross))
	}
	return share(ftGross), share(ptGross)
}

// RevenueMix breaks total revenue into chart slices, largest first.
// Slices that are zero or negative are left out.
func RevenueMix(r engine.Result) []MixSlice {
	ft, pt := TuitionSplit(r)

	afterschool := decimal.Zero
	if it, ok := r.Item(engine.SectionRevenue, engine.AfterschoolItemID); ok {
		afterschool = it.FinalValue
	}
	grants := decimal.Zero
	for _, id := range grantItems {
		if it, ok := r.Item(engine.SectionRevenue, id); ok {
			grants = grants.Add(it.FinalValue)
		}
	}
	other := r.TotalRevenue.Sub(ft).Sub(pt).Sub(afterschool).Sub(grants)

	var mix []MixSlice
	for _, s := range []MixSlice{
		{"Full-Time Tuition", ft},
		{"Part-Time Tuition", pt},
		{"Grants & State", grants},
		{"Afterschool", afterschool},
		{"Other", other},
	} {
		if s.Value.IsPositive() {
			mix = append(mix, s)
		}
	}
	sort.SliceStable(mix, func(i, j int) bool { return mix[i].Value.GreaterThan(mix[j].Value) })
	return mix
}

package engine

import "github.com/shopspring/decimal"

// =============================================================================
// TIER VOCABULARY
// =============================================================================

const (
	TierFullTime TierID = "tuitionFT"
	Tier4Day     TierID = "tuition4Day"
	Tier3Day     TierID = "tuition3Day"
	Tier2Day     TierID = "tuition2Day"
	Tier1Day     TierID = "tuition1Day"
	TierHalfDay  TierID = "tuitionHalfDay"
)

// canonicalTiers is the display order and the fallback for tiers missing
// from a plan. Fallbacks enroll nobody.
var canonicalTiers = []TuitionTier{
	{ID: TierFullTime, Label: "Full-Time (5 Days)", Ratio: decimal.NewFromInt(100)},
	{ID: Tier4Day, Label: "4-Day Tier", Ratio: decimal.NewFromInt(80)},
	{ID: Tier3Day, Label: "3-Day Tier", Ratio: decimal.NewFromInt(60)},
	{ID: Tier2Day, Label: "2-Day Tier", Ratio: decimal.NewFromInt(40)},
	{ID: Tier1Day, Label: "1-Day Tier", Ratio: decimal.NewFromInt(20)},
	{ID: TierHalfDay, Label: "Half-Day (5 Days)", Ratio: decimal.NewFromInt(50)},
}

// TierOrder returns the canonical tier ids.
func TierOrder() []TierID {
	ids := make([]TierID, len(canonicalTiers))
	for i, t := range canonicalTiers {
		ids[i] = t.ID
	}
	return ids
}

func IsCanonicalTier(id TierID) bool {
	for _, t := range canonicalTiers {
		if t.ID == id {
			return true
		}
	}
	return false
}

// DefaultTier returns the configured default for a tier id, with zero
// enrollment. Unknown ids get a zero ratio.
func DefaultTier(id TierID) TuitionTier {
	for _, t := range canonicalTiers {
		if t.ID == id {
			t.Qty = decimal.Zero
			return t
		}
	}
	return TuitionTier{ID: id, Label: string(id), Ratio: decimal.Zero, Qty: decimal.Zero}
}

// =============================================================================
// AGGREGATION
// =============================================================================

// PricedTier is a tier with its derived price and gross.
type PricedTier struct {
	TuitionTier
	CalculatedPrice decimal.Decimal
	Gross           decimal.Decimal
}

type TierSummary struct {
	Tiers             []PricedTier
	TotalTuitionGross decimal.Decimal
	TotalHeadcount    decimal.Decimal
}

// Lookup finds a priced tier by id.
func (s TierSummary) Lookup(id TierID) (PricedTier, bool) {
	for _, t := range s.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	return PricedTier{}, false
}

// PriceTiers prices every tier against the shared base rate:
//
//	calculatedPrice = base * ratio/100
//	gross           = calculatedPrice * qty
//
// The result always contains the full canonical vocabulary.
func PriceTiers(base decimal.Decimal, tiers map[TierID]TuitionTier) TierSummary {
	summary := TierSummary{TotalTuitionGross: decimal.Zero, TotalHeadcount: decimal.Zero}
	for _, id := range tierIDs(tiers) {
		tier, ok := tiers[id]
		if !ok {
			tier = DefaultTier(id)
		}
		tier.ID = id

		price := base.Mul(tier.Ratio.Shift(-2))
		gross := price.Mul(tier.Qty)

		summary.Tiers = append(summary.Tiers, PricedTier{
			TuitionTier:     tier,
			CalculatedPrice: price,
			Gross:           gross,
		})
		summary.TotalTuitionGross = summary.TotalTuitionGross.Add(gross)
		summary.TotalHeadcount = summary.TotalHeadcount.Add(tier.Qty)
	}
	return summary
}

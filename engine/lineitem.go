package engine

import "github.com/shopspring/decimal"

// ItemTotal returns baseline + baseline*(modifierPercent/100) + modifierFixed.
// No rounding; formatting is the renderer's job.
func ItemTotal(item LineItem) decimal.Decimal {
	percentMod := item.Baseline.Mul(item.ModifierPercent.Shift(-2))
	return item.Baseline.Add(percentMod).Add(item.ModifierFixed)
}

// ComputedItem is a line item with the value the engine used for it.
type ComputedItem struct {
	LineItem
	FinalValue decimal.Decimal
	Linked     bool
}

// rollup computes every item in order and sums them. linked maps an item id
// to its injected value; those items ignore their own baseline and modifiers.
func rollup(items []LineItem, linked map[ItemID]decimal.Decimal) ([]ComputedItem, decimal.Decimal) {
	out := make([]ComputedItem, len(items))
	total := decimal.Zero
	for i, item := range items {
		val, isLinked := linked[item.ID]
		if !isLinked {
			val = ItemTotal(item)
		}
		out[i] = ComputedItem{LineItem: item, FinalValue: val, Linked: isLinked}
		total = total.Add(val)
	}
	return out, total
}

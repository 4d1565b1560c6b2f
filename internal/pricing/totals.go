package pricing

import "github.com/shopspring/decimal"

// BillLine is one weight-priced line already coerced to numbers.
type BillLine struct {
	Quantity decimal.Decimal
	Unit     Unit
	CostRate decimal.Decimal // per kg
	SellRate decimal.Decimal // per kg
}

// CashLine is one batch-priced line already coerced to numbers.
type CashLine struct {
	Batches      decimal.Decimal
	CostPerBatch decimal.Decimal
	SellPerBatch decimal.Decimal
}

// Totals are the derived figures of a sale. They are never rounded; use
// Display for presentation.
type Totals struct {
	Cost    decimal.Decimal
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

// Display is the fixed two-decimal rendering of Totals.
type Display struct {
	Cost    string `json:"cost"`
	Revenue string `json:"revenue"`
	Profit  string `json:"profit"`
}

// Display formats the totals with two decimals.
func (t Totals) Display() Display {
	return Display{
		Cost:    t.Cost.StringFixed(2),
		Revenue: t.Revenue.StringFixed(2),
		Profit:  t.Profit.StringFixed(2),
	}
}

// Equal reports whether both totals carry the same values.
func (t Totals) Equal(other Totals) bool {
	return t.Cost.Equal(other.Cost) && t.Revenue.Equal(other.Revenue) && t.Profit.Equal(other.Profit)
}

// BillTotals folds weight-priced lines. Freight is added to cost once for the
// whole shipment.
func BillTotals(lines []BillLine, freight decimal.Decimal) Totals {
	cost, revenue := decimal.Zero, decimal.Zero
	for _, line := range lines {
		kg := ToKilograms(line.Quantity, line.Unit)
		cost = cost.Add(line.CostRate.Mul(kg))
		revenue = revenue.Add(line.SellRate.Mul(kg))
	}
	return finish(cost, revenue, freight)
}

// CashTotals folds batch-priced lines. Freight is added to cost once for the
// whole shipment.
func CashTotals(lines []CashLine, freight decimal.Decimal) Totals {
	cost, revenue := decimal.Zero, decimal.Zero
	for _, line := range lines {
		cost = cost.Add(line.CostPerBatch.Mul(line.Batches))
		revenue = revenue.Add(line.SellPerBatch.Mul(line.Batches))
	}
	return finish(cost, revenue, freight)
}

// TotalKilograms sums the quantity of every line in kilograms.
func TotalKilograms(lines []BillLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(ToKilograms(line.Quantity, line.Unit))
	}
	return total
}

func finish(cost, revenue, freight decimal.Decimal) Totals {
	cost = cost.Add(freight)
	return Totals{
		Cost:    cost,
		Revenue: revenue,
		Profit:  revenue.Sub(cost),
	}
}

package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/salesdesk/internal/pricing"
)

// Sale types as stored on a sale.
const (
	SaleTypeBill = "bill"
	SaleTypeCash = "cash"
)

// Sale is a stored sales transaction.
type Sale struct {
	ID         string     `bson:"_id" json:"id" db:"id"`
	Date       time.Time  `bson:"date" json:"date" db:"date"`
	ClientName string     `bson:"client_name" json:"client_name" db:"client_name"`
	Freight    float64    `bson:"freight" json:"freight" db:"freight"`
	QuantityKg float64    `bson:"quantity_kg" json:"quantity_kg" db:"quantity_kg"` // batches for cash sales
	SaleType   string     `bson:"sale_type" json:"sale_type" db:"sale_type"`
	Items      []SaleItem `bson:"items" json:"items" db:"-"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at" db:"created_at"`
}

// SaleItem is one stored line. For cash sales QuantityKg holds the number of
// batches and the rates are per batch.
type SaleItem struct {
	SaleID           string  `bson:"-" json:"-" db:"sale_id"`
	Position         int     `bson:"position" json:"position" db:"position"`
	CatalogItemID    string  `bson:"catalog_item_id,omitempty" json:"catalog_item_id,omitempty" db:"catalog_item_id"`
	QuantityKg       float64 `bson:"quantity_kg" json:"quantity_kg" db:"quantity_kg"`
	CostRatePerKg    float64 `bson:"cost_rate_per_kg" json:"cost_rate_per_kg" db:"cost_rate_per_kg"`
	SellingRatePerKg float64 `bson:"selling_rate_per_kg" json:"selling_rate_per_kg" db:"selling_rate_per_kg"`
}

// Cost returns the item's cost without freight.
func (i SaleItem) Cost() decimal.Decimal {
	return decimal.NewFromFloat(i.CostRatePerKg).Mul(decimal.NewFromFloat(i.QuantityKg))
}

// Revenue returns the item's selling value.
func (i SaleItem) Revenue() decimal.Decimal {
	return decimal.NewFromFloat(i.SellingRatePerKg).Mul(decimal.NewFromFloat(i.QuantityKg))
}

// Totals derives cost (freight included), revenue and profit. Stored items
// are already normalized to kilograms or batches, so the same fold serves
// both sale types.
func (s Sale) Totals() pricing.Totals {
	lines := make([]pricing.CashLine, 0, len(s.Items))
	for _, item := range s.Items {
		lines = append(lines, pricing.CashLine{
			Batches:      decimal.NewFromFloat(item.QuantityKg),
			CostPerBatch: decimal.NewFromFloat(item.CostRatePerKg),
			SellPerBatch: decimal.NewFromFloat(item.SellingRatePerKg),
		})
	}
	return pricing.CashTotals(lines, decimal.NewFromFloat(s.Freight))
}

// TotalQuantity sums the item quantities.
func (s Sale) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(decimal.NewFromFloat(item.QuantityKg))
	}
	return total
}

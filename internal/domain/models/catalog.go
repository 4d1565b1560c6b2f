package models

import "github.com/shopspring/decimal"

// CatalogItem is a bottle type sold in fixed batches.
type CatalogItem struct {
	ID                   string  `bson:"_id" json:"id" yaml:"id,omitempty" db:"id"`
	Label                string  `bson:"label" json:"label" yaml:"label" db:"label"`
	QuantityLtr          float64 `bson:"quantity_ltr" json:"quantity_ltr" yaml:"quantity_ltr" db:"quantity_ltr"`
	BottlesInBatch       int     `bson:"bottles_in_batch" json:"bottles_in_batch" yaml:"bottles_in_batch" db:"bottles_in_batch"`
	CanPrice             float64 `bson:"can_price" json:"can_price" yaml:"can_price" db:"can_price"`
	PricePerKg           float64 `bson:"price_per_kg" json:"price_per_kg" yaml:"price_per_kg" db:"price_per_kg"`
	BoxCost              float64 `bson:"box_cost" json:"box_cost" yaml:"box_cost" db:"box_cost"`
	SellingPricePerBatch float64 `bson:"selling_price_per_batch" json:"selling_price_per_batch" yaml:"selling_price_per_batch" db:"selling_price_per_batch"`
}

// CostPerBatch is the bottle, chemical and box cost of one batch.
func (c CatalogItem) CostPerBatch() decimal.Decimal {
	bottles := decimal.NewFromInt(int64(c.BottlesInBatch))
	bottleCost := decimal.NewFromFloat(c.CanPrice).Mul(bottles)
	chemicalCost := decimal.NewFromFloat(c.PricePerKg).Mul(decimal.NewFromFloat(c.QuantityLtr)).Mul(bottles)
	return bottleCost.Add(chemicalCost).Add(decimal.NewFromFloat(c.BoxCost)).Round(2)
}

// SellPerBatch is the list selling price of one batch.
func (c CatalogItem) SellPerBatch() decimal.Decimal {
	return decimal.NewFromFloat(c.SellingPricePerBatch).Round(2)
}

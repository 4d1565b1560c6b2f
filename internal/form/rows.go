// Package form holds the in-memory sales entry form: its rows, the active
// pricing mode and the totals derived from them.
package form

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/salesdesk/internal/pricing"
)

// Mode selects which row collection is live.
type Mode string

const (
	ModeBill Mode = "bill"
	ModeCash Mode = "cash"
)

// ParseMode recognises the two pricing modes.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeBill:
		return ModeBill, true
	case ModeCash:
		return ModeCash, true
	default:
		return "", false
	}
}

// Field names, shared by weight and batch rows. They match the input names of
// the entry form.
const (
	FieldQuantity     = "quantity"
	FieldUnit         = "unit"
	FieldCostRate     = "cost_rate"
	FieldSellRate     = "sell_rate"
	FieldCatalogRef   = "bottle_type_id"
	FieldBatches      = "batches"
	FieldCostPerBatch = "cp_batch"
	FieldSellPerBatch = "sp_batch"
)

// Handle identifies one row for its whole lifetime. Handles are never reused.
type Handle string

func newHandle() Handle {
	return Handle(uuid.NewString())
}

// Field is the raw text an operator typed. Its numeric value is always coerced.
type Field string

// Value returns the coerced non-negative number.
func (f Field) Value() decimal.Decimal {
	return pricing.ParseNonNegativeOrZero(string(f))
}

// Empty reports whether nothing but whitespace was entered.
func (f Field) Empty() bool {
	return strings.TrimSpace(string(f)) == ""
}

// WeightRow is a bill-mode line priced per kilogram.
type WeightRow struct {
	Handle   Handle       `json:"row"`
	Quantity Field        `json:"quantity"`
	Unit     pricing.Unit `json:"unit"`
	CostRate Field        `json:"cost_rate"`
	SellRate Field        `json:"sell_rate"`
}

func (r *WeightRow) line() pricing.BillLine {
	return pricing.BillLine{
		Quantity: r.Quantity.Value(),
		Unit:     r.Unit,
		CostRate: r.CostRate.Value(),
		SellRate: r.SellRate.Value(),
	}
}

// BatchRow is a cash-mode line priced per batch of a catalog item.
type BatchRow struct {
	Handle       Handle `json:"row"`
	CatalogRef   string `json:"bottle_type_id"`
	Batches      Field  `json:"batches"`
	CostPerBatch Field  `json:"cp_batch"`
	SellPerBatch Field  `json:"sp_batch"`

	// epoch advances on every re-seed; sellRev on every hand edit of the sell
	// price. Both guard late catalog results.
	epoch   uint64
	sellRev uint64
}

func (r *BatchRow) line() pricing.CashLine {
	return pricing.CashLine{
		Batches:      r.Batches.Value(),
		CostPerBatch: r.CostPerBatch.Value(),
		SellPerBatch: r.SellPerBatch.Value(),
	}
}

// Rates are the catalog prices of one item.
type Rates struct {
	CostPerBatch decimal.Decimal `json:"cost_per_batch"`
	SellPerBatch decimal.Decimal `json:"sell_per_batch"`
}

// RateBook resolves the rates already known to the form, such as the options
// of the catalog dropdown.
type RateBook interface {
	Rates(ref string) (Rates, bool)
}

// StaticRates is a RateBook backed by a map.
type StaticRates map[string]Rates

// Rates implements RateBook.
func (s StaticRates) Rates(ref string) (Rates, bool) {
	r, ok := s[ref]
	return r, ok
}

// Header carries the sale-level fields of the form.
type Header struct {
	SaleID     string `json:"sale_id,omitempty"`
	Date       string `json:"date"`
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
}

// State is the whole form. It is owned by a Session and only mutated through
// the Editor and the ModeController.
type State struct {
	Mode       Mode
	WeightRows []*WeightRow
	BatchRows  []*BatchRow
	Freight    Field
	Header     Header
	Totals     pricing.Totals
}

func (s *State) weightRow(h Handle) (int, *WeightRow) {
	for i, r := range s.WeightRows {
		if r.Handle == h {
			return i, r
		}
	}
	return -1, nil
}

func (s *State) batchRow(h Handle) (int, *BatchRow) {
	for i, r := range s.BatchRows {
		if r.Handle == h {
			return i, r
		}
	}
	return -1, nil
}

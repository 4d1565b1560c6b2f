package form

import (
	"errors"
	"strings"

	"github.com/mamadbah2/salesdesk/internal/pricing"
)

var (
	// ErrUnknownMode is returned when a row operation names no known collection.
	ErrUnknownMode = errors.New("unknown pricing mode")
	// ErrRowNotFound is returned when a row handle does not resolve.
	ErrRowNotFound = errors.New("row not found")
	// ErrUnknownField is returned for field names the row does not carry.
	ErrUnknownField = errors.New("unknown field")
	// ErrReadOnlyField is returned when an operator tries to write a
	// catalog-sourced value.
	ErrReadOnlyField = errors.New("field is read-only")
)

// RowInit holds initial raw values keyed by field name.
type RowInit map[string]string

// SeedTicket captures a row's state when a catalog lookup starts.
type SeedTicket struct {
	Handle  Handle
	Ref     string
	epoch   uint64
	sellRev uint64
}

// Editor mutates the row collections and keeps the published totals current.
// Every successful mutation recomputes.
type Editor struct {
	state *State
	book  RateBook
}

// NewEditor binds an editor to state. book may be nil.
func NewEditor(state *State, book RateBook) *Editor {
	if book == nil {
		book = StaticRates{}
	}
	return &Editor{state: state, book: book}
}

// AddRow appends a row to the collection of mode and returns its handle.
func (e *Editor) AddRow(mode Mode, init RowInit) (Handle, error) {
	switch mode {
	case ModeBill:
		row := &WeightRow{
			Handle:   newHandle(),
			Quantity: Field(init[FieldQuantity]),
			Unit:     pricing.ParseUnit(init[FieldUnit]),
			CostRate: Field(init[FieldCostRate]),
			SellRate: Field(init[FieldSellRate]),
		}
		e.state.WeightRows = append(e.state.WeightRows, row)
		e.Recompute()
		return row.Handle, nil
	case ModeCash:
		// Cost per batch is catalog-sourced; any initial value is ignored.
		row := &BatchRow{
			Handle:       newHandle(),
			CatalogRef:   strings.TrimSpace(init[FieldCatalogRef]),
			Batches:      Field(init[FieldBatches]),
			SellPerBatch: Field(init[FieldSellPerBatch]),
		}
		if row.Batches.Empty() {
			row.Batches = "1"
		}
		if rates, ok := e.rates(row.CatalogRef); ok {
			row.CostPerBatch = Field(rates.CostPerBatch.String())
			if row.SellPerBatch.Empty() {
				row.SellPerBatch = Field(rates.SellPerBatch.String())
			}
		}
		e.state.BatchRows = append(e.state.BatchRows, row)
		e.Recompute()
		return row.Handle, nil
	default:
		return "", ErrUnknownMode
	}
}

// RemoveRow drops the row if present. Unknown handles are ignored.
func (e *Editor) RemoveRow(mode Mode, h Handle) error {
	switch mode {
	case ModeBill:
		if i, _ := e.state.weightRow(h); i >= 0 {
			e.state.WeightRows = append(e.state.WeightRows[:i], e.state.WeightRows[i+1:]...)
		}
	case ModeCash:
		if i, row := e.state.batchRow(h); i >= 0 {
			row.epoch++
			e.state.BatchRows = append(e.state.BatchRows[:i], e.state.BatchRows[i+1:]...)
		}
	default:
		return ErrUnknownMode
	}
	e.Recompute()
	return nil
}

// UpdateField writes raw into one field of a row. Failing calls leave the
// state untouched.
func (e *Editor) UpdateField(mode Mode, h Handle, field, raw string) error {
	switch mode {
	case ModeBill:
		_, row := e.state.weightRow(h)
		if row == nil {
			return ErrRowNotFound
		}
		switch field {
		case FieldQuantity:
			row.Quantity = Field(raw)
		case FieldUnit:
			row.Unit = pricing.ParseUnit(raw)
		case FieldCostRate:
			row.CostRate = Field(raw)
		case FieldSellRate:
			row.SellRate = Field(raw)
		default:
			return ErrUnknownField
		}
	case ModeCash:
		_, row := e.state.batchRow(h)
		if row == nil {
			return ErrRowNotFound
		}
		switch field {
		case FieldCatalogRef:
			e.reseed(row, raw)
		case FieldBatches:
			row.Batches = Field(raw)
		case FieldSellPerBatch:
			row.SellPerBatch = Field(raw)
			row.sellRev++
		case FieldCostPerBatch:
			return ErrReadOnlyField
		default:
			return ErrUnknownField
		}
	default:
		return ErrUnknownMode
	}
	e.Recompute()
	return nil
}

// SetFreight replaces the shipment freight.
func (e *Editor) SetFreight(raw string) {
	e.state.Freight = Field(raw)
	e.Recompute()
}

// Recompute folds the live collection and publishes the result. It depends
// only on the state and is safe to call repeatedly.
func (e *Editor) Recompute() pricing.Totals {
	freight := e.state.Freight.Value()

	var totals pricing.Totals
	if e.state.Mode == ModeCash {
		lines := make([]pricing.CashLine, 0, len(e.state.BatchRows))
		for _, row := range e.state.BatchRows {
			lines = append(lines, row.line())
		}
		totals = pricing.CashTotals(lines, freight)
	} else {
		lines := make([]pricing.BillLine, 0, len(e.state.WeightRows))
		for _, row := range e.state.WeightRows {
			lines = append(lines, row.line())
		}
		totals = pricing.BillTotals(lines, freight)
	}

	e.state.Totals = totals
	return totals
}

// Hold captures a batch row's current state. It fails when the row is gone.
func (e *Editor) Hold(h Handle) (SeedTicket, bool) {
	_, row := e.state.batchRow(h)
	if row == nil {
		return SeedTicket{}, false
	}
	return SeedTicket{Handle: h, Ref: row.CatalogRef, epoch: row.epoch, sellRev: row.sellRev}, true
}

// Current reports whether the row behind t still exists and was neither
// removed nor re-seeded since t was issued.
func (e *Editor) Current(t SeedTicket) bool {
	_, row := e.state.batchRow(t.Handle)
	return row != nil && row.epoch == t.epoch
}

// PendingSeed returns a ticket for a catalog lookup on a batch row. It fails
// when the row is gone or has no catalog reference.
func (e *Editor) PendingSeed(h Handle) (SeedTicket, bool) {
	t, ok := e.Hold(h)
	if !ok || t.Ref == "" {
		return SeedTicket{}, false
	}
	return t, true
}

// ApplySeed applies looked-up rates if the ticket still matches the row.
// Cost is applied; sell only when it is still empty and was not edited after
// the ticket was issued. It reports whether anything was applied.
func (e *Editor) ApplySeed(t SeedTicket, rates Rates) bool {
	_, row := e.state.batchRow(t.Handle)
	if row == nil || row.epoch != t.epoch || row.CatalogRef != t.Ref {
		return false
	}

	row.CostPerBatch = Field(rates.CostPerBatch.String())
	if row.SellPerBatch.Empty() && row.sellRev == t.sellRev {
		row.SellPerBatch = Field(rates.SellPerBatch.String())
	}
	e.Recompute()
	return true
}

// reseed points the row at a new catalog item. Cost always follows the
// catalog; an operator's sell price is kept.
func (e *Editor) reseed(row *BatchRow, raw string) {
	row.CatalogRef = strings.TrimSpace(raw)
	row.epoch++

	rates, ok := e.rates(row.CatalogRef)
	if !ok {
		row.CostPerBatch = ""
		return
	}
	row.CostPerBatch = Field(rates.CostPerBatch.String())
	if row.SellPerBatch.Empty() {
		row.SellPerBatch = Field(rates.SellPerBatch.String())
	}
}

func (e *Editor) rates(ref string) (Rates, bool) {
	if ref == "" {
		return Rates{}, false
	}
	return e.book.Rates(ref)
}

package form

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/salesdesk/internal/pricing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var testBook = StaticRates{
	"bt-1": {CostPerBatch: dec("121"), SellPerBatch: dec("170")},
	"bt-2": {CostPerBatch: dec("297"), SellPerBatch: dec("220")},
}

func newTestEditor(mode Mode) (*State, *Editor) {
	state := &State{Mode: mode}
	return state, NewEditor(state, testBook)
}

func TestAddRowDefaults(t *testing.T) {
	state, editor := newTestEditor(ModeBill)

	h, err := editor.AddRow(ModeBill, nil)
	if err != nil {
		t.Fatalf("AddRow(bill) error = %v", err)
	}
	w := state.WeightRows[0]
	if w.Handle != h || w.Unit != pricing.UnitKilogram || !w.Quantity.Empty() || !w.CostRate.Empty() || !w.SellRate.Empty() {
		t.Errorf("unexpected weight row defaults: %+v", *w)
	}

	if _, err := editor.AddRow(ModeCash, nil); err != nil {
		t.Fatalf("AddRow(cash) error = %v", err)
	}
	b := state.BatchRows[0]
	if b.Batches != "1" || b.CatalogRef != "" || !b.CostPerBatch.Empty() || !b.SellPerBatch.Empty() {
		t.Errorf("unexpected batch row defaults: %+v", *b)
	}

	if _, err := editor.AddRow("barter", nil); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("AddRow(barter) error = %v, want ErrUnknownMode", err)
	}
}

func TestAddBatchRowSeedsFromCatalog(t *testing.T) {
	state, editor := newTestEditor(ModeCash)

	if _, err := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "bt-1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "bt-1", FieldSellPerBatch: "180"}); err != nil {
		t.Fatal(err)
	}

	first, second := state.BatchRows[0], state.BatchRows[1]
	if first.CostPerBatch != "121" || first.SellPerBatch != "170" {
		t.Errorf("first row = %+v, want cost 121 sell 170", *first)
	}
	if second.CostPerBatch != "121" || second.SellPerBatch != "180" {
		t.Errorf("second row = %+v, want cost 121 and the operator's 180", *second)
	}
	if got := state.Totals.Display(); got.Revenue != "350.00" || got.Cost != "242.00" {
		t.Errorf("totals = %+v, want cost 242.00 revenue 350.00", got)
	}
}

func TestAddBatchRowIgnoresInitialCost(t *testing.T) {
	state, editor := newTestEditor(ModeCash)
	editor.book = StaticRates{"bt-9": {CostPerBatch: dec("100"), SellPerBatch: dec("150")}}

	if _, err := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "bt-9", FieldBatches: "1", FieldCostPerBatch: "1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "remote-1", FieldCostPerBatch: "1"}); err != nil {
		t.Fatal(err)
	}

	if cost := state.BatchRows[0].CostPerBatch; cost != "100" {
		t.Errorf("known item cost = %s, want catalog 100", cost)
	}
	if cost := state.BatchRows[1].CostPerBatch; !cost.Empty() {
		t.Errorf("unknown item cost = %s, want empty until seeded", cost)
	}
	if got := state.Totals.Display(); got.Cost != "100.00" || got.Revenue != "150.00" || got.Profit != "50.00" {
		t.Errorf("totals = %+v, want 100.00/150.00/50.00", got)
	}
}

func TestHoldAndCurrent(t *testing.T) {
	_, editor := newTestEditor(ModeCash)
	h, _ := editor.AddRow(ModeCash, nil)

	held, ok := editor.Hold(h)
	if !ok || held.Ref != "" {
		t.Fatalf("Hold() = %+v, %v", held, ok)
	}
	editor.UpdateField(ModeCash, h, FieldBatches, "3")
	if !editor.Current(held) {
		t.Error("Current() = false after a batches edit")
	}
	editor.UpdateField(ModeCash, h, FieldCatalogRef, "bt-1")
	if editor.Current(held) {
		t.Error("Current() = true after re-seed")
	}

	held, _ = editor.Hold(h)
	editor.RemoveRow(ModeCash, h)
	if editor.Current(held) {
		t.Error("Current() = true after removal")
	}
	if _, ok := editor.Hold("missing"); ok {
		t.Error("Hold(missing) = true")
	}
}

func TestRemoveRow(t *testing.T) {
	state, editor := newTestEditor(ModeBill)
	keep, _ := editor.AddRow(ModeBill, RowInit{FieldQuantity: "1", FieldCostRate: "2", FieldSellRate: "3"})
	drop, _ := editor.AddRow(ModeBill, RowInit{FieldQuantity: "10", FieldCostRate: "2", FieldSellRate: "3"})

	if err := editor.RemoveRow(ModeBill, drop); err != nil {
		t.Fatalf("RemoveRow() error = %v", err)
	}
	if len(state.WeightRows) != 1 || state.WeightRows[0].Handle != keep {
		t.Fatalf("rows after remove = %d, want only the kept row", len(state.WeightRows))
	}
	if got := state.Totals.Display().Revenue; got != "3.00" {
		t.Errorf("revenue = %s, want 3.00", got)
	}

	if err := editor.RemoveRow(ModeBill, "missing"); err != nil {
		t.Errorf("RemoveRow(missing) error = %v, want nil", err)
	}
	if len(state.WeightRows) != 1 {
		t.Errorf("unknown handle removed a row")
	}
}

func TestUpdateFieldErrorsLeaveStateUntouched(t *testing.T) {
	state, editor := newTestEditor(ModeCash)
	h, _ := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "bt-1"})
	before := *state.BatchRows[0]

	tests := []struct {
		name    string
		mode    Mode
		handle  Handle
		field   string
		wantErr error
	}{
		{name: "missing row", mode: ModeCash, handle: "nope", field: FieldBatches, wantErr: ErrRowNotFound},
		{name: "wrong collection", mode: ModeBill, handle: h, field: FieldQuantity, wantErr: ErrRowNotFound},
		{name: "unknown field", mode: ModeCash, handle: h, field: "colour", wantErr: ErrUnknownField},
		{name: "read-only cost", mode: ModeCash, handle: h, field: FieldCostPerBatch, wantErr: ErrReadOnlyField},
		{name: "unknown mode", mode: "barter", handle: h, field: FieldBatches, wantErr: ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := editor.UpdateField(tt.mode, tt.handle, tt.field, "99")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdateField() error = %v, want %v", err, tt.wantErr)
			}
			if *state.BatchRows[0] != before {
				t.Errorf("row changed after failed update: %+v", *state.BatchRows[0])
			}
		})
	}
}

func TestMalformedQuantityCountsAsZero(t *testing.T) {
	state, editor := newTestEditor(ModeBill)
	h, _ := editor.AddRow(ModeBill, RowInit{FieldQuantity: "5", FieldCostRate: "10", FieldSellRate: "12"})

	if err := editor.UpdateField(ModeBill, h, FieldQuantity, "abc"); err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	if state.WeightRows[0].Quantity != "abc" {
		t.Errorf("raw text not kept: %q", state.WeightRows[0].Quantity)
	}
	if !state.Totals.Cost.IsZero() || !state.Totals.Revenue.IsZero() {
		t.Errorf("totals = %+v, want zero contribution", state.Totals.Display())
	}
}

func TestCatalogReseedKeepsOperatorSellPrice(t *testing.T) {
	state, editor := newTestEditor(ModeCash)
	h, _ := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "bt-1"})

	if err := editor.UpdateField(ModeCash, h, FieldSellPerBatch, "199"); err != nil {
		t.Fatal(err)
	}
	if err := editor.UpdateField(ModeCash, h, FieldCatalogRef, "bt-2"); err != nil {
		t.Fatal(err)
	}

	row := state.BatchRows[0]
	if row.CostPerBatch != "297" {
		t.Errorf("cost = %s, want catalog value 297", row.CostPerBatch)
	}
	if row.SellPerBatch != "199" {
		t.Errorf("sell = %s, want hand-entered 199", row.SellPerBatch)
	}
}

func TestCatalogReseedUnknownRefClearsCost(t *testing.T) {
	state, editor := newTestEditor(ModeCash)
	h, _ := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "bt-1"})

	if err := editor.UpdateField(ModeCash, h, FieldCatalogRef, "bt-9"); err != nil {
		t.Fatal(err)
	}
	row := state.BatchRows[0]
	if !row.CostPerBatch.Empty() || row.SellPerBatch != "170" {
		t.Errorf("row = %+v, want empty cost and the earlier sell price", *row)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	_, editor := newTestEditor(ModeBill)
	editor.AddRow(ModeBill, RowInit{FieldQuantity: "0.333", FieldCostRate: "1.005", FieldSellRate: "7.77"})
	editor.AddRow(ModeBill, RowInit{FieldQuantity: "1.7", FieldUnit: "ton", FieldCostRate: "3.3", FieldSellRate: "4.1"})
	editor.SetFreight("12.34")

	first := editor.Recompute()
	second := editor.Recompute()
	if !first.Equal(second) || first.Display() != second.Display() {
		t.Errorf("Recompute() not idempotent: %+v vs %+v", first.Display(), second.Display())
	}
}

func TestApplySeed(t *testing.T) {
	late := Rates{CostPerBatch: dec("50"), SellPerBatch: dec("80")}

	t.Run("applies to unchanged row", func(t *testing.T) {
		state, editor := newTestEditor(ModeCash)
		h, _ := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "remote-1"})
		ticket, ok := editor.PendingSeed(h)
		if !ok {
			t.Fatal("PendingSeed() = false")
		}
		if !editor.ApplySeed(ticket, late) {
			t.Fatal("ApplySeed() = false, want applied")
		}
		row := state.BatchRows[0]
		if row.CostPerBatch != "50" || row.SellPerBatch != "80" {
			t.Errorf("row = %+v, want seeded 50/80", *row)
		}
		if got := state.Totals.Display(); got.Cost != "50.00" || got.Revenue != "80.00" {
			t.Errorf("totals = %+v, want recomputed after seed", got)
		}
	})

	t.Run("hand edit wins over late result", func(t *testing.T) {
		state, editor := newTestEditor(ModeCash)
		h, _ := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "remote-1"})
		ticket, _ := editor.PendingSeed(h)
		editor.UpdateField(ModeCash, h, FieldSellPerBatch, "95")
		editor.UpdateField(ModeCash, h, FieldSellPerBatch, "")

		editor.ApplySeed(ticket, late)
		row := state.BatchRows[0]
		if row.CostPerBatch != "50" {
			t.Errorf("cost = %s, want 50", row.CostPerBatch)
		}
		if !row.SellPerBatch.Empty() {
			t.Errorf("sell = %s, want the operator's edit to stand", row.SellPerBatch)
		}
	})

	t.Run("re-seed discards earlier ticket", func(t *testing.T) {
		state, editor := newTestEditor(ModeCash)
		h, _ := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "remote-1"})
		ticket, _ := editor.PendingSeed(h)
		editor.UpdateField(ModeCash, h, FieldCatalogRef, "bt-2")

		if editor.ApplySeed(ticket, late) {
			t.Fatal("ApplySeed() applied a stale ticket")
		}
		if state.BatchRows[0].CostPerBatch != "297" {
			t.Errorf("cost = %s, want bt-2 cost 297", state.BatchRows[0].CostPerBatch)
		}
	})

	t.Run("removed row is never resurrected", func(t *testing.T) {
		state, editor := newTestEditor(ModeCash)
		h, _ := editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "remote-1"})
		ticket, _ := editor.PendingSeed(h)
		editor.RemoveRow(ModeCash, h)
		editor.AddRow(ModeCash, RowInit{FieldCatalogRef: "remote-1"})

		if editor.ApplySeed(ticket, late) {
			t.Fatal("ApplySeed() applied to a removed row")
		}
		row := state.BatchRows[0]
		if !row.CostPerBatch.Empty() || !row.SellPerBatch.Empty() {
			t.Errorf("replacement row in the same position was seeded: %+v", *row)
		}
	})

	t.Run("no ticket without catalog ref", func(t *testing.T) {
		_, editor := newTestEditor(ModeCash)
		h, _ := editor.AddRow(ModeCash, nil)
		if _, ok := editor.PendingSeed(h); ok {
			t.Error("PendingSeed() = true for a row without reference")
		}
	})
}

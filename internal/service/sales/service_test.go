package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/form"
	"github.com/mamadbah2/salesdesk/internal/repository"
	"github.com/mamadbah2/salesdesk/internal/repository/memory"
)

// mockLookup serves fixed rates. When gate is set every lookup announces
// itself on started and waits for gate to close.
type mockLookup struct {
	mu      sync.Mutex
	rates   map[string]form.Rates
	err     error
	calls   int
	started chan string
	gate    chan struct{}
}

func (m *mockLookup) Lookup(ctx context.Context, ref string) (form.Rates, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.started != nil {
		m.started <- ref
	}
	if m.gate != nil {
		<-m.gate
	}
	if m.err != nil {
		return form.Rates{}, m.err
	}
	rates, ok := m.rates[ref]
	if !ok {
		return form.Rates{}, repository.ErrNotFound
	}
	return rates, nil
}

func testRates() map[string]form.Rates {
	return map[string]form.Rates{
		"bt-1": {CostPerBatch: decimal.NewFromInt(180), SellPerBatch: decimal.NewFromInt(170)},
		"bt-2": {CostPerBatch: decimal.NewFromInt(273), SellPerBatch: decimal.NewFromInt(220)},
	}
}

func newTestService(t *testing.T, lookup CatalogLookup) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewService(store, lookup, NewSessionManager(time.Hour), nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc, store
}

func mustEvent(t *testing.T, svc *Service, id string, ev form.Event) form.Snapshot {
	t.Helper()
	snap, err := svc.HandleEvent(context.Background(), id, ev)
	if err != nil {
		t.Fatalf("HandleEvent(%s) error = %v", ev.Type, err)
	}
	return snap
}

func TestOpenFormDefaults(t *testing.T) {
	svc, _ := newTestService(t, &mockLookup{rates: testRates()})
	id, snap := svc.OpenForm()
	if id == "" {
		t.Fatal("OpenForm() returned empty id")
	}
	if snap.Mode != form.ModeBill || snap.Header.Date != "2024-06-15" {
		t.Errorf("snapshot = %+v, want bill mode dated today", snap)
	}
	if _, err := svc.Snapshot("missing"); !errors.Is(err, ErrFormNotFound) {
		t.Errorf("Snapshot(missing) error = %v, want ErrFormNotFound", err)
	}
}

func TestHandleEventSeedsFromLookup(t *testing.T) {
	lookup := &mockLookup{rates: testRates()}
	svc, _ := newTestService(t, lookup)
	id, _ := svc.OpenForm()

	mustEvent(t, svc, id, form.Event{Type: form.EventSetMode, Value: "cash"})
	snap := mustEvent(t, svc, id, form.Event{Type: form.EventAddRow, Mode: "cash", Values: form.RowInit{form.FieldCatalogRef: "bt-1", form.FieldBatches: "2"}})

	if len(snap.BatchRows) != 1 {
		t.Fatalf("batch rows = %d, want 1", len(snap.BatchRows))
	}
	row := snap.BatchRows[0]
	if row.CostPerBatch != "180" || row.SellPerBatch != "170" {
		t.Errorf("row = %+v, want catalog rates", row)
	}
	if snap.Totals.Cost != "360.00" || snap.Totals.Revenue != "340.00" || snap.Totals.Profit != "-20.00" {
		t.Errorf("totals = %+v", snap.Totals)
	}

	// A second row with the same item is served from the cache.
	mustEvent(t, svc, id, form.Event{Type: form.EventAddRow, Mode: "cash", Values: form.RowInit{form.FieldCatalogRef: "bt-1"}})
	if lookup.calls != 1 {
		t.Errorf("lookup calls = %d, want 1", lookup.calls)
	}
}

func TestHandleEventLookupErrors(t *testing.T) {
	tests := []struct {
		name   string
		lookup *mockLookup
		want   error
	}{
		{name: "unknown item", lookup: &mockLookup{rates: testRates()}, want: ErrUnknownCatalogItem},
		{name: "catalog down", lookup: &mockLookup{err: errors.New("connection refused")}, want: ErrLookupFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.lookup)
			id, _ := svc.OpenForm()
			snap := mustEvent(t, svc, id, form.Event{Type: form.EventAddRow, Mode: "cash", Values: form.RowInit{form.FieldBatches: "2"}})
			h := snap.BatchRows[0].Handle

			snap, err := svc.HandleEvent(context.Background(), id, form.Event{Type: form.EventUpdateField, Mode: "cash", Row: h, Field: form.FieldCatalogRef, Value: "bt-9"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("update error = %v, want %v", err, tt.want)
			}
			if len(snap.BatchRows) != 1 || snap.BatchRows[0].CatalogRef != "" || snap.BatchRows[0].Batches != "2" {
				t.Errorf("rows after failed update = %+v, want the row untouched", snap.BatchRows)
			}

			// Retrying a failed add must not leave extra rows behind.
			for i := 0; i < 2; i++ {
				snap, err = svc.HandleEvent(context.Background(), id, form.Event{Type: form.EventAddRow, Mode: "cash", Values: form.RowInit{form.FieldCatalogRef: "bt-9"}})
				if !errors.Is(err, tt.want) {
					t.Fatalf("add error = %v, want %v", err, tt.want)
				}
			}
			if len(snap.BatchRows) != 1 {
				t.Errorf("batch rows after failed adds = %d, want 1", len(snap.BatchRows))
			}
		})
	}
}

func TestHandleEventSeedsWithoutCache(t *testing.T) {
	lookup := &mockLookup{rates: testRates()}
	svc, _ := newTestService(t, lookup)
	// Every cached entry is already expired when the event is dispatched.
	svc.rates.ttl = -time.Second
	id, _ := svc.OpenForm()
	mustEvent(t, svc, id, form.Event{Type: form.EventSetMode, Value: "cash"})

	snap := mustEvent(t, svc, id, form.Event{Type: form.EventAddRow, Mode: "cash", Values: form.RowInit{form.FieldCatalogRef: "bt-1"}})
	h := snap.BatchRows[0].Handle
	if row := snap.BatchRows[0]; row.CostPerBatch != "180" || row.SellPerBatch != "170" {
		t.Errorf("added row = %+v, want catalog rates", row)
	}

	snap = mustEvent(t, svc, id, form.Event{Type: form.EventUpdateField, Mode: "cash", Row: h, Field: form.FieldCatalogRef, Value: "bt-2"})
	if row := snap.BatchRows[0]; row.CostPerBatch != "273" {
		t.Errorf("re-seeded cost = %q, want 273", row.CostPerBatch)
	}
	if snap.Totals.Cost != "273.00" {
		t.Errorf("totals = %+v", snap.Totals)
	}
}

func TestStaleSeedAfterRemovalIsDropped(t *testing.T) {
	lookup := &mockLookup{rates: testRates(), started: make(chan string, 1), gate: make(chan struct{})}
	svc, _ := newTestService(t, lookup)
	id, _ := svc.OpenForm()
	mustEvent(t, svc, id, form.Event{Type: form.EventSetMode, Value: "cash"})
	snap := mustEvent(t, svc, id, form.Event{Type: form.EventAddRow, Mode: "cash"})
	h := snap.BatchRows[0].Handle

	done := make(chan form.Snapshot)
	go func() {
		snap, _ := svc.HandleEvent(context.Background(), id, form.Event{Type: form.EventUpdateField, Mode: "cash", Row: h, Field: form.FieldCatalogRef, Value: "bt-1"})
		done <- snap
	}()

	<-lookup.started
	mustEvent(t, svc, id, form.Event{Type: form.EventRemoveRow, Mode: "cash", Row: h})
	close(lookup.gate)

	final := <-done
	if len(final.BatchRows) != 0 {
		t.Errorf("removed row came back: %+v", final.BatchRows)
	}
	if final.Totals.Cost != "0.00" || final.Totals.Revenue != "0.00" {
		t.Errorf("totals = %+v, want zero", final.Totals)
	}
}

func TestSeedKeepsSellEditedDuringLookup(t *testing.T) {
	lookup := &mockLookup{rates: testRates(), started: make(chan string, 1), gate: make(chan struct{})}
	svc, _ := newTestService(t, lookup)
	id, _ := svc.OpenForm()
	mustEvent(t, svc, id, form.Event{Type: form.EventSetMode, Value: "cash"})
	snap := mustEvent(t, svc, id, form.Event{Type: form.EventAddRow, Mode: "cash"})
	h := snap.BatchRows[0].Handle

	done := make(chan form.Snapshot)
	go func() {
		snap, _ := svc.HandleEvent(context.Background(), id, form.Event{Type: form.EventUpdateField, Mode: "cash", Row: h, Field: form.FieldCatalogRef, Value: "bt-1"})
		done <- snap
	}()

	<-lookup.started
	mustEvent(t, svc, id, form.Event{Type: form.EventUpdateField, Mode: "cash", Row: h, Field: form.FieldSellPerBatch, Value: "200"})
	close(lookup.gate)

	row := (<-done).BatchRows[0]
	if row.CostPerBatch != "180" {
		t.Errorf("cost = %q, want 180 from the catalog", row.CostPerBatch)
	}
	if row.SellPerBatch != "200" {
		t.Errorf("sell = %q, want operator value 200", row.SellPerBatch)
	}
}

func TestSubmitFormResetsOnSuccess(t *testing.T) {
	svc, store := newTestService(t, &mockLookup{rates: testRates()})
	id, _ := svc.OpenForm()
	mustEvent(t, svc, id, form.Event{Type: form.EventSetHeader, Field: "client_name", Value: "Acme"})
	mustEvent(t, svc, id, form.Event{Type: form.EventSetFreight, Value: "500"})
	mustEvent(t, svc, id, form.Event{Type: form.EventAddRow, Mode: "bill", Values: form.RowInit{
		form.FieldQuantity: "1", form.FieldUnit: "ton", form.FieldCostRate: "20", form.FieldSellRate: "30",
	}})

	sale, err := svc.SubmitForm(context.Background(), id)
	if err != nil {
		t.Fatalf("SubmitForm() error = %v", err)
	}
	if sale.QuantityKg != 1000 || sale.Freight != 500 || sale.SaleType != models.SaleTypeBill {
		t.Errorf("sale = %+v", sale)
	}
	if got := sale.Totals().Display(); got.Profit != "9500.00" {
		t.Errorf("profit = %s, want 9500.00", got.Profit)
	}

	stored, err := store.GetSale(context.Background(), sale.ID)
	if err != nil || len(stored.Items) != 1 {
		t.Fatalf("stored sale = %+v, %v", stored, err)
	}

	snap, _ := svc.Snapshot(id)
	if len(snap.WeightRows) != 0 || snap.Header.ClientName != "" || snap.Header.Date != "2024-06-15" {
		t.Errorf("form after submit = %+v, want a fresh form", snap)
	}
}

func TestSubmitFormFailureKeepsState(t *testing.T) {
	svc, store := newTestService(t, &mockLookup{rates: testRates()})
	id, _ := svc.OpenForm()
	mustEvent(t, svc, id, form.Event{Type: form.EventSetHeader, Field: "client_name", Value: "Acme"})
	mustEvent(t, svc, id, form.Event{Type: form.EventSetMode, Value: "cash"})
	// A batch row with zero batches passes form validation but produces no line.
	mustEvent(t, svc, id, form.Event{Type: form.EventAddRow, Mode: "cash", Values: form.RowInit{form.FieldCatalogRef: "bt-1", form.FieldBatches: "0"}})

	_, err := svc.SubmitForm(context.Background(), id)
	if !errors.Is(err, ErrInvalidSale) {
		t.Fatalf("SubmitForm() error = %v, want ErrInvalidSale", err)
	}
	snap, _ := svc.Snapshot(id)
	if snap.Mode != form.ModeCash || len(snap.BatchRows) != 1 || snap.Header.ClientName != "Acme" {
		t.Errorf("form after failure = %+v, want untouched", snap)
	}
	if sales, _ := store.ListSales(context.Background()); len(sales) != 0 {
		t.Errorf("stored %d sales, want none", len(sales))
	}
}

func TestSaveCashRules(t *testing.T) {
	svc, _ := newTestService(t, &mockLookup{rates: testRates()})
	ctx := context.Background()
	header := form.Header{Date: "2024-06-01", ClientName: "Acme"}

	sale, err := svc.Save(ctx, form.Submission{Header: header, Mode: form.ModeCash, Cash: []form.CashEntry{
		{CatalogRef: "", Batches: "4"},
		{CatalogRef: "bt-1", Batches: "0"},
		{CatalogRef: "bt-1", Batches: "2.9", SellPerBatch: "abc"},
		{CatalogRef: "bt-2", Batches: "1", SellPerBatch: "250"},
	}})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(sale.Items) != 2 {
		t.Fatalf("items = %+v, want 2 lines", sale.Items)
	}
	first, second := sale.Items[0], sale.Items[1]
	if first.QuantityKg != 2 || first.CostRatePerKg != 180 || first.SellingRatePerKg != 170 {
		t.Errorf("first = %+v, want 2 batches at catalog rates", first)
	}
	if second.CatalogItemID != "bt-2" || second.SellingRatePerKg != 250 || second.CostRatePerKg != 273 {
		t.Errorf("second = %+v, want sell override", second)
	}
	if sale.QuantityKg != 3 || sale.SaleType != models.SaleTypeCash {
		t.Errorf("sale = %+v", sale)
	}

	_, err = svc.Save(ctx, form.Submission{Header: header, Mode: form.ModeCash, Cash: []form.CashEntry{{CatalogRef: "bt-404", Batches: "0"}}})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Details[0] != "invalid bottle type selected" {
		t.Errorf("unknown bottle type error = %v", err)
	}
}

func TestSaveHeaderRules(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &mockLookup{rates: testRates()})
	store.SaveClient(ctx, models.Client{ID: "c-1", Name: "Stored Client"})
	bill := []form.BillEntry{{Quantity: "10", CostRate: "1", SellRate: "2"}}

	tests := []struct {
		name       string
		sub        form.Submission
		wantClient string
		wantErr    bool
	}{
		{name: "client id wins", sub: form.Submission{Header: form.Header{Date: "2024-06-01", ClientID: "c-1", ClientName: "typed"}, Bill: bill}, wantClient: "Stored Client"},
		{name: "unknown id falls back to name", sub: form.Submission{Header: form.Header{Date: "2024-06-01", ClientID: "c-9", ClientName: "typed"}, Bill: bill}, wantClient: "typed"},
		{name: "no client", sub: form.Submission{Header: form.Header{Date: "2024-06-01"}, Bill: bill}, wantErr: true},
		{name: "bad date", sub: form.Submission{Header: form.Header{Date: "01/06/2024", ClientName: "x"}, Bill: bill}, wantErr: true},
		{name: "no lines", sub: form.Submission{Header: form.Header{Date: "2024-06-01", ClientName: "x"}, Mode: form.ModeBill}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale, err := svc.Save(ctx, tt.sub)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSale) {
					t.Errorf("Save() error = %v, want ErrInvalidSale", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if sale.ClientName != tt.wantClient {
				t.Errorf("client = %q, want %q", sale.ClientName, tt.wantClient)
			}
		})
	}
}

func TestEditReplacesItems(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &mockLookup{rates: testRates()})
	header := form.Header{Date: "2024-06-01", ClientName: "Acme"}

	original, err := svc.Save(ctx, form.Submission{Header: header, Bill: []form.BillEntry{
		{Quantity: "10", CostRate: "1", SellRate: "2"},
		{Quantity: "20", CostRate: "1", SellRate: "2"},
	}})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	id, snap, err := svc.OpenEditForm(ctx, original.ID)
	if err != nil {
		t.Fatalf("OpenEditForm() error = %v", err)
	}
	if snap.Header.SaleID != original.ID || len(snap.WeightRows) != 2 || snap.Totals.Revenue != "60.00" {
		t.Fatalf("prefill snapshot = %+v", snap)
	}
	mustEvent(t, svc, id, form.Event{Type: form.EventRemoveRow, Mode: "bill", Row: snap.WeightRows[1].Handle})

	edited, err := svc.SubmitForm(ctx, id)
	if err != nil {
		t.Fatalf("SubmitForm() error = %v", err)
	}
	if edited.ID != original.ID {
		t.Errorf("edit created a new sale %s", edited.ID)
	}
	stored, _ := store.GetSale(ctx, original.ID)
	if len(stored.Items) != 1 || stored.QuantityKg != 10 {
		t.Errorf("stored = %+v, want items replaced", stored)
	}
	if all, _ := store.ListSales(ctx); len(all) != 1 {
		t.Errorf("sales = %d, want 1", len(all))
	}
}

func TestEditCashSaleUsesCatalogCost(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &mockLookup{rates: testRates()})
	sale := models.Sale{ID: "s-cash", Date: time.Now(), ClientName: "Acme", SaleType: models.SaleTypeCash, Items: []models.SaleItem{
		{CatalogItemID: "bt-1", QuantityKg: 2, CostRatePerKg: 150, SellingRatePerKg: 175},
	}}
	store.SaveSale(ctx, sale)

	_, snap, err := svc.OpenEditForm(ctx, sale.ID)
	if err != nil {
		t.Fatalf("OpenEditForm() error = %v", err)
	}
	if len(snap.BatchRows) != 1 {
		t.Fatalf("batch rows = %d, want 1", len(snap.BatchRows))
	}
	row := snap.BatchRows[0]
	if row.CostPerBatch != "180" || row.SellPerBatch != "175" || row.Batches != "2" {
		t.Errorf("row = %+v, want current catalog cost and the stored sell", row)
	}
	if snap.Totals.Cost != "360.00" || snap.Totals.Revenue != "350.00" {
		t.Errorf("totals = %+v", snap.Totals)
	}
}

func TestLegacySaleModeHeuristic(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &mockLookup{rates: testRates()})
	store.SaveCatalogItem(ctx, models.CatalogItem{ID: "bt-1", Label: "1 ltr", QuantityLtr: 1, BottlesInBatch: 12, CanPrice: 4.25, PricePerKg: 9, BoxCost: 21, SellingPricePerBatch: 170})

	tests := []struct {
		name  string
		items []models.SaleItem
		want  form.Mode
	}{
		{name: "whole batches at catalog cost", items: []models.SaleItem{{QuantityKg: 3, CostRatePerKg: 180.2, SellingRatePerKg: 170}}, want: form.ModeCash},
		{name: "fractional quantity", items: []models.SaleItem{{QuantityKg: 2.5, CostRatePerKg: 180}}, want: form.ModeBill},
		{name: "cost far from catalog", items: []models.SaleItem{{QuantityKg: 3, CostRatePerKg: 20}}, want: form.ModeBill},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale := models.Sale{ID: string(rune('a' + i)), Date: time.Now(), ClientName: "Old", Items: tt.items}
			store.SaveSale(ctx, sale)
			_, snap, err := svc.OpenEditForm(ctx, sale.ID)
			if err != nil {
				t.Fatalf("OpenEditForm() error = %v", err)
			}
			if snap.Mode != tt.want {
				t.Errorf("mode = %s, want %s", snap.Mode, tt.want)
			}
		})
	}
}

func TestSessionSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	sm := NewSessionManager(30 * time.Minute)
	sm.now = func() time.Time { return now }

	idle := sm.Open(form.NewSession("", nil))
	active := sm.Open(form.NewSession("", nil))

	now = now.Add(20 * time.Minute)
	sm.get(active)
	now = now.Add(20 * time.Minute)

	if removed := sm.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if _, ok := sm.get(idle); ok {
		t.Error("idle form survived the sweep")
	}
	if _, ok := sm.get(active); !ok {
		t.Error("active form was swept")
	}
}

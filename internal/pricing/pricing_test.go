package pricing

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseNonNegativeOrZero(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain integer", raw: "12", want: "12"},
		{name: "decimal", raw: "12.5", want: "12.5"},
		{name: "thousands separators", raw: "1,250.75", want: "1250.75"},
		{name: "surrounding spaces", raw: "  7 ", want: "7"},
		{name: "trailing garbage keeps prefix", raw: "12abc", want: "12"},
		{name: "trailing dot", raw: "3.", want: "3"},
		{name: "leading dot", raw: ".5", want: "0.5"},
		{name: "exponent", raw: "1.5e3", want: "1500"},
		{name: "dangling exponent", raw: "2e", want: "2"},
		{name: "text", raw: "abc", want: "0"},
		{name: "empty", raw: "", want: "0"},
		{name: "negative", raw: "-4", want: "0"},
		{name: "infinity text", raw: "Infinity", want: "0"},
		{name: "beyond float range", raw: "1e400", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNonNegativeOrZero(tt.raw)
			if !got.Equal(d(tt.want)) {
				t.Errorf("ParseNonNegativeOrZero(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseNonNegativeOrZeroHugeExponents(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "huge positive", raw: "1e10000000", want: "0"},
		{name: "huge negative", raw: "1e-10000000", want: "0"},
		{name: "exponent past int32", raw: "1e-2000000000", want: "0"},
		{name: "exponent past int64", raw: "5e99999999999999999999", want: "0"},
		{name: "smallest normal", raw: "2.5e-300", want: "2.5e-300"},
		{name: "wide mantissa", raw: "1" + strings.Repeat("0", 500) + "e-500", want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			got := ParseNonNegativeOrZero(tt.raw)
			if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
				t.Errorf("ParseNonNegativeOrZero(%q) took %s", tt.raw, elapsed)
			}
			if !got.Equal(d(tt.want)) {
				t.Errorf("ParseNonNegativeOrZero(%q) = %s, want %s", tt.raw, got, tt.want)
			}
			if exp := got.Exponent(); exp < -maxScale || exp > maxScale {
				t.Errorf("ParseNonNegativeOrZero(%q) kept exponent %d", tt.raw, exp)
			}
		})
	}
}

func TestParseUnit(t *testing.T) {
	tests := map[string]Unit{
		"ton":   UnitTon,
		"TON":   UnitTon,
		"tonne": UnitTon,
		"kg":    UnitKilogram,
		"":      UnitKilogram,
		"bag":   UnitKilogram,
	}
	for raw, want := range tests {
		if got := ParseUnit(raw); got != want {
			t.Errorf("ParseUnit(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestTonEqualsThousandKilograms(t *testing.T) {
	quantities := []string{"0", "0.25", "2", "17.125"}
	for _, q := range quantities {
		ton := BillTotals([]BillLine{{Quantity: d(q), Unit: UnitTon, CostRate: d("10.5"), SellRate: d("12")}}, decimal.Zero)
		kg := BillTotals([]BillLine{{Quantity: d(q).Mul(d("1000")), Unit: UnitKilogram, CostRate: d("10.5"), SellRate: d("12")}}, decimal.Zero)
		if !ton.Equal(kg) {
			t.Errorf("quantity %s: ton totals %+v differ from kg totals %+v", q, ton.Display(), kg.Display())
		}
	}
}

func TestBillTotalsScenario(t *testing.T) {
	got := BillTotals([]BillLine{{Quantity: d("2"), Unit: UnitTon, CostRate: d("10"), SellRate: d("15")}}, d("500"))

	if !got.Cost.Equal(d("20500")) {
		t.Errorf("cost = %s, want 20500", got.Cost)
	}
	if !got.Revenue.Equal(d("30000")) {
		t.Errorf("revenue = %s, want 30000", got.Revenue)
	}
	if !got.Profit.Equal(d("9500")) {
		t.Errorf("profit = %s, want 9500", got.Profit)
	}
}

func TestCashTotalsScenario(t *testing.T) {
	got := CashTotals([]CashLine{{Batches: d("3"), CostPerBatch: d("100"), SellPerBatch: d("150")}}, d("50"))

	want := Display{Cost: "350.00", Revenue: "450.00", Profit: "100.00"}
	if got.Display() != want {
		t.Errorf("CashTotals() = %+v, want %+v", got.Display(), want)
	}
}

func TestEmptyCollections(t *testing.T) {
	freight := d("125.5")
	for name, got := range map[string]Totals{
		"bill": BillTotals(nil, freight),
		"cash": CashTotals(nil, freight),
	} {
		if !got.Cost.Equal(freight) || !got.Revenue.IsZero() || !got.Profit.Equal(freight.Neg()) {
			t.Errorf("%s: got %+v, want cost=freight revenue=0 profit=-freight", name, got.Display())
		}
	}
}

func TestNoIntermediateRounding(t *testing.T) {
	// 3 lines of 0.333 kg at 1.005 would drift if each line were rounded.
	line := BillLine{Quantity: d("0.333"), Unit: UnitKilogram, CostRate: d("1.005"), SellRate: d("1.005")}
	got := BillTotals([]BillLine{line, line, line}, decimal.Zero)

	if !got.Revenue.Equal(d("1.003995")) {
		t.Errorf("revenue = %s, want 1.003995", got.Revenue)
	}
	if got.Display().Revenue != "1.00" {
		t.Errorf("display revenue = %s, want 1.00", got.Display().Revenue)
	}
}

func TestTotalKilograms(t *testing.T) {
	lines := []BillLine{
		{Quantity: d("1.5"), Unit: UnitTon},
		{Quantity: d("250"), Unit: UnitKilogram},
	}
	if got := TotalKilograms(lines); !got.Equal(d("1750")) {
		t.Errorf("TotalKilograms() = %s, want 1750", got)
	}
}

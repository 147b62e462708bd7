package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalsEmpty(t *testing.T) {
	assert.Equal(t, Totals{}, ComputeTotals(nil))
	assert.Equal(t, Totals{}, ComputeTotals([]LineItem{}))
}

func TestComputeTotals(t *testing.T) {
	items := []LineItem{{Qty: 2, Price: 10}, {Qty: 1, Price: 5}}
	got := ComputeTotals(items)
	assert.Equal(t, Totals{Subtotal: 25, CGST: 2.25, SGST: 2.25, Total: 29.5}, got)
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []LineItem{{Qty: 3, Price: 33.33}, {Qty: 0.5, Price: 19.99}, {Qty: 7, Price: 0.01}}
	assert.Equal(t, ComputeTotals(items), ComputeTotals(items))
}

func TestComputeTotalsRoundsOnlyAtEnd(t *testing.T) {
	// Each line is 0.333; rounding per line would give 3.30.
	items := make([]LineItem, 10)
	for i := range items {
		items[i] = LineItem{Qty: 1, Price: 0.333}
	}
	got := ComputeTotals(items)
	assert.Equal(t, 3.33, got.Subtotal)
	assert.Equal(t, 0.3, got.CGST)
	assert.Equal(t, 3.93, got.Total)
}

func TestComputeTotalsIgnoresBadNumbers(t *testing.T) {
	items := []LineItem{
		{Qty: -2, Price: 10},
		{Qty: 2, Price: math.NaN()},
		{Qty: math.Inf(1), Price: 1},
		{Qty: 1, Price: 4},
	}
	assert.Equal(t, Totals{Subtotal: 4, CGST: 0.36, SGST: 0.36, Total: 4.72}, ComputeTotals(items))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{" 2.50 ", 2.5},
		{"", 0},
		{"abc", 0},
		{"2abc", 0},
		{"3.5 kg", 0},
		{"-3", 0},
		{"NaN", 0},
		{"1e400", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAmount(tt.in), "ParseAmount(%q)", tt.in)
	}
}

func TestRenumberItems(t *testing.T) {
	items := []LineItem{{SNo: 7, Qty: 2, Price: 1.5}, {SNo: 3, Qty: 1, Price: 2}}
	RenumberItems(items)
	assert.Equal(t, 1, items[0].SNo)
	assert.Equal(t, 2, items[1].SNo)
	assert.Equal(t, 3.0, items[0].Subtotal)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "29.50", FormatMoney(29.5))
	assert.Equal(t, "0.00", FormatMoney(0))
	assert.Equal(t, "1234.57", FormatMoney(1234.567))
}

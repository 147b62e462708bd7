package billing

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxRate is applied twice, once as CGST and once as SGST.
var TaxRate = decimal.RequireFromString("0.09")

// ParseAmount converts a quantity or price typed by the user. Anything
// that is not a finite non-negative number becomes 0, including text with
// a numeric prefix such as "2abc".
func ParseAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return clampAmount(f)
}

func clampAmount(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// LineTotal is qty*price at full precision.
func LineTotal(qty, price float64) decimal.Decimal {
	return decimal.NewFromFloat(clampAmount(qty)).Mul(decimal.NewFromFloat(clampAmount(price)))
}

// ComputeTotals derives the document totals from items. Sums are kept
// exact and each figure is rounded to two places only at the end.
func ComputeTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(LineTotal(it.Qty, it.Price))
	}
	cgst := subtotal.Mul(TaxRate)
	sgst := subtotal.Mul(TaxRate)
	total := subtotal.Add(cgst).Add(sgst)

	return Totals{
		Subtotal: round2(subtotal),
		CGST:     round2(cgst),
		SGST:     round2(sgst),
		Total:    round2(total),
	}
}

// RenumberItems rewrites SNo from position and refreshes each row's
// subtotal. It modifies items in place.
func RenumberItems(items []LineItem) {
	for i := range items {
		items[i].SNo = i + 1
		items[i].Subtotal = round2(LineTotal(items[i].Qty, items[i].Price))
	}
}

// FormatMoney renders v with two decimals.
func FormatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

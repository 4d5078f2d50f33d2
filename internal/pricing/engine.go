package pricing

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of decimal places totals are rounded to.
const CurrencyPlaces = 2

// Line describes the grouped quantity of a single SKU used for pricing calculation.
type Line struct {
	SKU       string
	Name      string
	Qty       int
	UnitPrice decimal.Decimal
	Deal      Deal
}

// LineTotal is a priced line.
type LineTotal struct {
	SKU     string          `json:"sku"`
	Name    string          `json:"name"`
	Qty     int             `json:"qty"`
	Deal    Kind            `json:"deal,omitempty"`
	Regular decimal.Decimal `json:"regular"`
	Charged decimal.Decimal `json:"charged"`
	Savings decimal.Decimal `json:"savings"`
}

// Summary aggregates computed pricing components.
type Summary struct {
	Lines    []LineTotal     `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// PriceLine charges a single line, applying its deal when one is attached.
func PriceLine(ln Line) LineTotal {
	regular := ln.UnitPrice.Mul(decimal.NewFromInt(int64(ln.Qty)))
	charged := regular
	var kind Kind
	if ln.Deal != nil {
		charged = ln.Deal.Price(ln.Qty, ln.UnitPrice)
		kind = ln.Deal.Kind()
	}
	return LineTotal{
		SKU:     ln.SKU,
		Name:    ln.Name,
		Qty:     ln.Qty,
		Deal:    kind,
		Regular: regular,
		Charged: charged,
		Savings: regular.Sub(charged),
	}
}

// Compute prices every line and sums the results. Intermediate sums are kept
// exact; only the final total is rounded to currency precision.
func Compute(lines []Line) Summary {
	summary := Summary{Lines: make([]LineTotal, 0, len(lines))}
	subtotal := decimal.Zero
	charged := decimal.Zero
	for _, ln := range lines {
		if ln.Qty <= 0 {
			continue
		}
		lt := PriceLine(ln)
		summary.Lines = append(summary.Lines, lt)
		subtotal = subtotal.Add(lt.Regular)
		charged = charged.Add(lt.Charged)
	}
	summary.Subtotal = subtotal
	summary.Discount = subtotal.Sub(charged)
	summary.Total = RoundCurrency(charged)
	return summary
}

// RoundCurrency rounds v half away from zero to CurrencyPlaces.
func RoundCurrency(v decimal.Decimal) decimal.Decimal {
	return v.Round(CurrencyPlaces)
}

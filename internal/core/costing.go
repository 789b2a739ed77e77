package core

import (
	"sort"

	"github.com/shopspring/decimal"

	"partpulse/pkg/domain"
)

// Totals is the priced breakdown of a supplier response.
type Totals struct {
	Lines              []ResponseLine
	Subtotal           decimal.Decimal
	GrandTotal         decimal.Decimal
	TotalItemCount     decimal.Decimal
	QuotedPricePerUnit decimal.Decimal
}

// ComputeTotals prices items at the given unit prices. prices is aligned
// with items. Amounts round half away from zero to two places. It fails
// with ErrNoItems when the quantities sum to zero.
func ComputeTotals(items []QuoteItem, prices []decimal.Decimal, charges Charges) (Totals, error) {
	if len(prices) != len(items) {
		return Totals{}, domain.ValidationError{Field: "unit_prices", Reason: "must have one price per item"}
	}
	for _, amount := range []struct {
		field string
		value decimal.Decimal
	}{
		{"transport", charges.Transport},
		{"minimum_order_charge", charges.MinimumOrder},
		{"other_charge_amount", charges.Other},
	} {
		if amount.value.IsNegative() {
			return Totals{}, domain.ValidationError{Field: amount.field, Reason: "must not be negative"}
		}
	}
	out := Totals{Lines: make([]ResponseLine, 0, len(items))}
	for i, item := range items {
		if item.Quantity.IsNegative() {
			return Totals{}, domain.ValidationError{Field: "items", Reason: "quantity must not be negative"}
		}
		if prices[i].IsNegative() {
			return Totals{}, domain.ValidationError{Field: "unit_prices", Reason: "must not be negative"}
		}
		line := ResponseLine{
			Name:      item.Name,
			PartID:    item.PartID,
			Quantity:  item.Quantity,
			UnitPrice: prices[i],
			LineTotal: item.Quantity.Mul(prices[i]).Round(2),
		}
		out.Lines = append(out.Lines, line)
		out.Subtotal = out.Subtotal.Add(line.LineTotal)
		out.TotalItemCount = out.TotalItemCount.Add(item.Quantity)
	}
	if out.TotalItemCount.IsZero() {
		return Totals{}, domain.ErrNoItems
	}
	out.GrandTotal = out.Subtotal.Add(charges.Transport).Add(charges.MinimumOrder).Add(charges.Other)
	out.QuotedPricePerUnit = out.GrandTotal.Div(out.TotalItemCount).Round(2)
	return out, nil
}

// BestQuote picks the cheapest priced quote by grand total. Ties go to the
// earliest created quote, then the lowest id. Quotes without a response or
// that were rejected are skipped.
func BestQuote(quotes []QuoteRequest) (QuoteRequest, bool) {
	candidates := make([]QuoteRequest, 0, len(quotes))
	for _, q := range quotes {
		if q.Response == nil {
			continue
		}
		switch q.Status {
		case domain.QuoteStatusResponded, domain.QuoteStatusApproved, domain.QuoteStatusOrdered:
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return QuoteRequest{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if c := a.Response.GrandTotal.Cmp(b.Response.GrandTotal); c != 0 {
			return c < 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return candidates[0], true
}

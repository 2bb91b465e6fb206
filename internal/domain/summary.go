package domain

import "github.com/shopspring/decimal"

var (
	FreeShippingThreshold = decimal.NewFromInt(500)
	FlatShipping          = decimal.NewFromInt(49)
	TaxRate               = decimal.RequireFromString("0.08")
)

// Summary is the order summary derived from a snapshot. All amounts share
// the snapshot's currency.
type Summary struct {
	Subtotal     Money
	Shipping     Money
	Tax          Money
	Total        Money
	ItemCount    int
	FreeShipping bool
	// UntilFreeShipping is what remains to reach FreeShippingThreshold,
	// zero once shipping is free.
	UntilFreeShipping Money
}

// Summarize charges FlatShipping below FreeShippingThreshold and taxes the
// subtotal at TaxRate. An empty cart costs nothing.
func Summarize(s Snapshot) Summary {
	unit := s.Total.Currency
	subtotal := s.Total.Amount

	shipping := decimal.Zero
	gap := decimal.Zero
	free := subtotal.GreaterThanOrEqual(FreeShippingThreshold)
	if !free {
		gap = FreeShippingThreshold.Sub(subtotal)
		if len(s.Lines) > 0 {
			shipping = FlatShipping
		}
	}

	tax := subtotal.Mul(TaxRate)

	return Summary{
		Subtotal:          s.Total,
		Shipping:          Money{Amount: shipping, Currency: unit},
		Tax:               Money{Amount: tax, Currency: unit},
		Total:             Money{Amount: subtotal.Add(shipping).Add(tax), Currency: unit},
		ItemCount:         s.ItemCount,
		FreeShipping:      free,
		UntilFreeShipping: Money{Amount: gap, Currency: unit},
	}
}

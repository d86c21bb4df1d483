package booking

// ComputeTotals sums unit price times quantity over every program and
// package selection. Currencies are not converted.
func ComputeTotals(items []Item) Totals {
	var t Totals
	seen := func(currency string) {
		switch {
		case t.Currency == "":
			t.Currency = currency
		case currency != "" && currency != t.Currency:
			t.MixedCurrency = true
		}
	}

	for _, item := range items {
		for _, p := range item.programs {
			t.Subtotal += p.snapshot.unitPrice * int64(p.quantity)
			seen(p.snapshot.currency)
		}
		for _, p := range item.packages {
			t.Subtotal += p.snapshot.unitPrice * int64(p.Quantity())
			seen(p.snapshot.currency)
		}
	}

	// no discount or tax layer yet
	t.GrandTotal = t.Subtotal
	return t
}

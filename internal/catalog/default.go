package catalog

import "github.com/shopspring/decimal"

// Default returns the reference store catalogue. Every call builds a new value.
func Default() *Catalogue {
	return MustNew(map[string]Product{
		"ipd": {Name: "Super iPad", Price: decimal.RequireFromString("549.99")},
		"mbp": {Name: "MacBook Pro", Price: decimal.RequireFromString("1399.99")},
		"atv": {Name: "Apple TV", Price: decimal.RequireFromString("109.50")},
		"vga": {Name: "VGA adapter", Price: decimal.RequireFromString("30.00")},
	})
}

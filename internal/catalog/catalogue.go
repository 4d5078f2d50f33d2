package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/common"
)

var (
	// ErrUnknownSKU is returned when a SKU is not present in the catalogue.
	ErrUnknownSKU = errors.New("catalog: unknown sku")
	// ErrInvalidProduct is returned when a product cannot be added to a catalogue.
	ErrInvalidProduct = errors.New("catalog: invalid product")
)

// Product is an immutable catalogue entry.
type Product struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"decimal_gte0"`
}

// Catalogue is a read-only SKU to Product mapping. It is safe to share between
// checkouts running on different goroutines.
type Catalogue struct {
	products map[string]Product
}

var validate = common.NewValidator()

// New copies products into a Catalogue after validating every entry.
func New(products map[string]Product) (*Catalogue, error) {
	copied := make(map[string]Product, len(products))
	skus := make([]string, 0, len(products))
	for sku := range products {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	for _, sku := range skus {
		p := products[sku]
		if strings.TrimSpace(sku) == "" {
			return nil, invalidProduct("catalog: product with empty sku", nil)
		}
		if err := validate.Struct(p); err != nil {
			return nil, invalidProduct(fmt.Sprintf("catalog: product %q: %v", sku, err), err)
		}
		copied[sku] = p
	}
	return &Catalogue{products: copied}, nil
}

// MustNew behaves like New but panics on error.
func MustNew(products map[string]Product) *Catalogue {
	c, err := New(products)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the product registered for sku. Unknown SKUs yield an error
// wrapping ErrUnknownSKU that names the SKU.
func (c *Catalogue) Lookup(sku string) (Product, error) {
	if c != nil {
		if p, ok := c.products[sku]; ok {
			return p, nil
		}
	}
	return Product{}, common.NewAppError(common.CodeUnknownSKU, fmt.Sprintf("catalog: unknown sku %q", sku), ErrUnknownSKU)
}

// Has reports whether sku is registered.
func (c *Catalogue) Has(sku string) bool {
	if c == nil {
		return false
	}
	_, ok := c.products[sku]
	return ok
}

// Len returns the number of products.
func (c *Catalogue) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// SKUs returns every registered SKU in sorted order.
func (c *Catalogue) SKUs() []string {
	if c == nil {
		return nil
	}
	skus := make([]string, 0, len(c.products))
	for sku := range c.products {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	return skus
}

// Products returns a copy of the underlying mapping.
func (c *Catalogue) Products() map[string]Product {
	out := make(map[string]Product, c.Len())
	if c == nil {
		return out
	}
	for sku, p := range c.products {
		out[sku] = p
	}
	return out
}

func invalidProduct(msg string, cause error) error {
	err := ErrInvalidProduct
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidProduct, cause)
	}
	return common.NewAppError(common.CodeInvalidProduct, msg, err)
}

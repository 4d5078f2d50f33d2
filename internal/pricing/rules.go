package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/common"
)

// ErrInvalidRuleSyntax is returned by ParseRules for malformed rule definitions.
var ErrInvalidRuleSyntax = errors.New("invalid pricing rule syntax")

// Rules maps SKUs to at most one Deal each. The zero value has no deals.
type Rules struct {
	deals map[string]Deal
}

// NewRules copies deals into an immutable rule set after validating every entry.
func NewRules(deals map[string]Deal) (Rules, error) {
	copied := make(map[string]Deal, len(deals))
	for sku, deal := range deals {
		copied[sku] = normalizeDeal(deal)
	}
	rules := Rules{deals: copied}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// MustRules behaves like NewRules but panics on error.
func MustRules(deals map[string]Deal) Rules {
	rules, err := NewRules(deals)
	if err != nil {
		panic(err)
	}
	return rules
}

// Validate checks every deal in SKU order and reports the first failure.
func (r Rules) Validate() error {
	for _, sku := range r.SKUs() {
		deal := r.deals[sku]
		if strings.TrimSpace(sku) == "" {
			return common.NewAppError(common.CodeInvalidDeal, "pricing: deal configured for empty sku", ErrInvalidDeal)
		}
		if isNilDeal(deal) {
			return common.NewAppError(common.CodeInvalidDeal, fmt.Sprintf("pricing: nil deal for sku %q", sku), ErrInvalidDeal)
		}
		if err := deal.Validate(); err != nil {
			msg := fmt.Sprintf("pricing: %s deal for sku %q: %v", deal.Kind(), sku, err)
			return common.NewAppError(common.CodeInvalidDeal, msg, err)
		}
	}
	return nil
}

// Lookup returns the deal configured for sku, if any.
func (r Rules) Lookup(sku string) (Deal, bool) {
	deal, ok := r.deals[sku]
	return deal, ok
}

// Len returns the number of SKUs carrying a deal.
func (r Rules) Len() int {
	return len(r.deals)
}

// SKUs returns the SKUs carrying a deal in sorted order.
func (r Rules) SKUs() []string {
	skus := make([]string, 0, len(r.deals))
	for sku := range r.deals {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	return skus
}

// String renders the rules in the syntax accepted by ParseRules.
func (r Rules) String() string {
	parts := make([]string, 0, len(r.deals))
	for _, sku := range r.SKUs() {
		switch d := r.deals[sku].(type) {
		case DiscountDeal:
			parts = append(parts, fmt.Sprintf("%s=%s:%d:%s", sku, KindDiscount, d.MinimumCount, d.DiscountPrice.String()))
		case FreeDeal:
			parts = append(parts, fmt.Sprintf("%s=%s:%d:%d", sku, KindFree, d.BundleSize, d.CountToPay))
		default:
			panic(fmt.Sprintf("pricing: unsupported deal type %T for sku %q", d, sku))
		}
	}
	return strings.Join(parts, ",")
}

// normalizeDeal stores pointer variants by value so the rule set holds one
// representation per kind. Nil pointers are kept for Validate to reject.
func normalizeDeal(deal Deal) Deal {
	switch d := deal.(type) {
	case *DiscountDeal:
		if d != nil {
			return *d
		}
	case *FreeDeal:
		if d != nil {
			return *d
		}
	}
	return deal
}

func isNilDeal(deal Deal) bool {
	switch d := deal.(type) {
	case nil:
		return true
	case *DiscountDeal:
		return d == nil
	case *FreeDeal:
		return d == nil
	}
	return false
}

// ParseRules reads a comma separated list of rule definitions:
//
//	ipd=discount:4:499.99,atv=free:3:2
//
// A discount entry carries the threshold and the discounted unit price, a free
// entry carries the bundle size and the number of units paid per bundle.
func ParseRules(value string) (Rules, error) {
	deals := make(map[string]Deal)
	for _, raw := range strings.Split(value, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		sku, deal, err := parseRule(entry)
		if err != nil {
			return Rules{}, err
		}
		if _, dup := deals[sku]; dup {
			return Rules{}, fmt.Errorf("%w: duplicate deal for sku %q", ErrInvalidRuleSyntax, sku)
		}
		deals[sku] = deal
	}
	return NewRules(deals)
}

func parseRule(entry string) (string, Deal, error) {
	sku, def, ok := strings.Cut(entry, "=")
	sku = strings.TrimSpace(sku)
	if !ok || sku == "" {
		return "", nil, fmt.Errorf("%w: %q must look like sku=kind:a:b", ErrInvalidRuleSyntax, entry)
	}
	fields := strings.Split(strings.TrimSpace(def), ":")
	if len(fields) != 3 {
		return "", nil, fmt.Errorf("%w: %q must have three ':' separated fields", ErrInvalidRuleSyntax, entry)
	}
	threshold, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q threshold: %v", ErrInvalidRuleSyntax, entry, err)
	}
	switch Kind(strings.ToLower(strings.TrimSpace(fields[0]))) {
	case KindDiscount:
		price, err := decimal.NewFromString(strings.TrimSpace(fields[2]))
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q discount price: %v", ErrInvalidRuleSyntax, entry, err)
		}
		return sku, DiscountDeal{MinimumCount: threshold, DiscountPrice: price}, nil
	case KindFree:
		pay, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q count to pay: %v", ErrInvalidRuleSyntax, entry, err)
		}
		return sku, FreeDeal{BundleSize: threshold, CountToPay: pay}, nil
	default:
		return "", nil, fmt.Errorf("%w: %q has unknown deal kind %q", ErrInvalidRuleSyntax, entry, fields[0])
	}
}

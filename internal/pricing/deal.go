package pricing

import (
	"errors"
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/common"
)

// ErrInvalidDeal is returned when a deal carries parameters that cannot be priced.
var ErrInvalidDeal = errors.New("invalid deal parameters")

// Kind names a deal variant.
type Kind string

const (
	// KindDiscount identifies DiscountDeal.
	KindDiscount Kind = "discount"
	// KindFree identifies FreeDeal.
	KindFree Kind = "free"
)

// Deal is a special pricing rule attached to a single SKU.
//
// The set of implementations is closed: only DiscountDeal and FreeDeal satisfy it.
type Deal interface {
	Kind() Kind
	// Validate reports whether the deal parameters are usable.
	Validate() error
	// Price returns the charge for count units with the given regular unit price.
	Price(count int, unit decimal.Decimal) decimal.Decimal
	sealed()
}

// DiscountDeal replaces the unit price of every unit once the scanned count
// strictly exceeds MinimumCount.
type DiscountDeal struct {
	MinimumCount  int             `json:"minimumCountForDiscount" validate:"gt=0"`
	DiscountPrice decimal.Decimal `json:"discountPrice" validate:"decimal_gte0"`
}

// FreeDeal charges CountToPay units out of every full bundle of BundleSize units.
type FreeDeal struct {
	BundleSize int `json:"minimumCountForFreeDeal" validate:"gt=0"`
	CountToPay int `json:"countToPay" validate:"gte=0,ltefield=BundleSize"`
}

var (
	_ Deal = DiscountDeal{}
	_ Deal = FreeDeal{}
)

// Kind implements Deal.
func (DiscountDeal) Kind() Kind { return KindDiscount }

// Validate implements Deal.
func (d DiscountDeal) Validate() error { return validateDeal(d) }

// Price implements Deal. A count equal to MinimumCount is charged at the regular price.
func (d DiscountDeal) Price(count int, unit decimal.Decimal) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	qty := decimal.NewFromInt(int64(count))
	if count > d.MinimumCount {
		return d.DiscountPrice.Mul(qty)
	}
	return unit.Mul(qty)
}

func (DiscountDeal) sealed() {}

// Kind implements Deal.
func (FreeDeal) Kind() Kind { return KindFree }

// Validate implements Deal.
func (f FreeDeal) Validate() error { return validateDeal(f) }

// Price implements Deal. Units left over after the last full bundle are charged in full.
func (f FreeDeal) Price(count int, unit decimal.Decimal) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	if f.BundleSize <= 0 || count < f.BundleSize {
		return unit.Mul(decimal.NewFromInt(int64(count)))
	}
	bundles := count / f.BundleSize
	remainder := count % f.BundleSize
	payable := int64(bundles)*int64(f.CountToPay) + int64(remainder)
	return unit.Mul(decimal.NewFromInt(payable))
}

func (FreeDeal) sealed() {}

var validate = common.NewValidator()

func validateDeal(d Deal) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidDeal, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidDeal, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case common.TagDecimalNonNegative:
		return fmt.Sprintf("%s must not be negative", fe.Field())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

package common

import (
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// TagDecimalNonNegative rejects negative decimal.Decimal fields.
const TagDecimalNonNegative = "decimal_gte0"

// NewValidator returns a validator that understands decimal.Decimal fields.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation(TagDecimalNonNegative, decimalNonNegative); err != nil {
		panic(err)
	}
	return v
}

func decimalNonNegative(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	return ok && !d.IsNegative()
}

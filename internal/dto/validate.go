package dto

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, max=100 work without panicking ("Bad field type decimal.Decimal").
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate runs the go-playground/validator tags of req. On failure it
// returns the failing field → tag map; err is set only when req itself
// cannot be validated (nil, not a struct).
func Validate(req interface{}) (fields map[string]string, err error) {
	verr := validate.Struct(req)
	if verr == nil {
		return nil, nil
	}
	var ves validator.ValidationErrors
	if !errors.As(verr, &ves) {
		return nil, verr
	}
	fields = make(map[string]string, len(ves))
	for _, fe := range ves {
		fields[fe.Field()] = fe.Tag()
	}
	return fields, nil
}

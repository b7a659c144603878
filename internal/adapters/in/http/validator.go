package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"fulfillment/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
)

// requestValidator is the echo.Validator of the API. Field errors carry the
// JSON name of the field and are translated into errs values.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

func (v *requestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}

	errList := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			errList = append(errList, errs.NewValueIsRequiredError(fieldPath(fe)))
			continue
		}
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			fieldPath(fe), fmt.Errorf("failed the %q rule", fe.Tag())))
	}
	return errors.Join(errList...)
}

// fieldPath drops the request type from the namespace: restaurantOrders[0].items[1].quantity.
func fieldPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

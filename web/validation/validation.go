// Package validation checks request payloads with go-playground/validator and
// reports every failing field at once as a common.AppError of kind
// validation.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/storerate/storerate/util/common"
)

// PasswordSymbols is the set of characters accepted as password symbols.
const PasswordSymbols = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~"

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return len(MissingPasswordClasses(fl.Field().String())) == 0
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

// Struct validates s and returns nil or a validation AppError listing each
// failed field.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.NewValidationError(common.FieldError{Field: "body", Message: err.Error()})
	}
	fields := make([]common.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, common.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return common.NewValidationError(fields...)
}

// Merge combines validation errors from several checks into one. Non
// validation errors are returned as is.
func Merge(errs ...error) error {
	var fields []common.FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var appErr *common.AppError
		if !errors.As(err, &appErr) || appErr.Kind != common.KindValidation {
			return err
		}
		fields = append(fields, appErr.Fields...)
	}
	if len(fields) == 0 {
		return nil
	}
	return common.NewValidationError(fields...)
}

// Field builds a single-field validation error.
func Field(field, msg string) error {
	return common.NewValidationError(common.FieldError{Field: field, Message: msg})
}

// MissingPasswordClasses names the character classes absent from pw.
func MissingPasswordClasses(pw string) []string {
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	var missing []string
	if !upper {
		missing = append(missing, "an uppercase letter")
	}
	if !lower {
		missing = append(missing, "a lowercase letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if !symbol {
		missing = append(missing, "a symbol")
	}
	return missing
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "strongpassword":
		return "must contain " + strings.Join(MissingPasswordClasses(fe.Value().(string)), ", ")
	case "nefield":
		return "must differ from the current password"
	case "eqfield":
		return "must match the new password"
	}
	return "is invalid"
}

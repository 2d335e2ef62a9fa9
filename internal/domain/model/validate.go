//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
)

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks s against its validate tags. A failure is a Validation AppError
// naming the first offending field.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid request")
	}
	fe := verrs[0]
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeValidation,
		Message: fieldMessage(fe),
		Field:   fe.Field(),
		Cause:   err,
	}
}

// ValidateID rejects empty or oversized path identifiers.
func ValidateID(name, id string) error {
	if id == "." || id == ".." {
		return apperrors.ValidationField(name, name+" is invalid")
	}
	if err := validate.Var(id, "required,max=64,printascii,excludesall=/?#%"); err != nil {
		return apperrors.ValidationField(name, name+" is invalid")
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", fe.Field(), fe.Param())
	case "e164":
		return fe.Field() + " must be an E.164 phone number"
	case "email":
		return fe.Field() + " must be an email address"
	default:
		return fe.Field() + " is invalid"
	}
}

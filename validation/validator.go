package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/linesmerrill/case-diary-api/models"
)

// Validator checks request bodies against their validate tags
type Validator struct {
	v *validator.Validate
}

// New returns a validator with the diary's custom tags registered:
// casestatus (member of the status enumeration) and notblank (non-empty once trimmed).
// Fields are reported by their json names.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("casestatus", func(fl validator.FieldLevel) bool {
		switch value := fl.Field().Interface().(type) {
		case models.CaseStatus:
			return value.Valid()
		case string:
			return models.CaseStatus(value).Valid()
		}
		return false
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{v: v}
}

// Struct validates s and returns a readable error naming the first offending fields
func (v *Validator) Struct(s interface{}) error {
	return describe(v.v.Struct(s))
}

// Var validates a single value against tag
func (v *Validator) Var(field interface{}, tag string) error {
	return describe(v.v.Var(field, tag))
}

// ValidationErrors unwraps the field errors behind err, if any
func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	var fe *FieldErrors
	if errors.As(err, &fe) {
		return fe.errs
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// FieldErrors is a validation failure on one or more fields
type FieldErrors struct {
	errs validator.ValidationErrors
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.errs))
	for _, fe := range e.errs {
		field := fe.Field()
		if field == "" {
			field = "value"
		}
		switch fe.Tag() {
		case "required", "notblank":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "casestatus":
			parts = append(parts, fmt.Sprintf("%s %q is not a valid case status", field, fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return &FieldErrors{errs: ve}
	}
	return err
}

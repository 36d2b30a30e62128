// Package validation wraps go-playground/validator for request structs and
// plugs into echo as its Validator.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hadith-similarity-search/internal/models"
)

// FieldError describes one rejected field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the set of fields a request failed on. It matches
// models.ErrInvalidFilter under errors.Is.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// Is reports whether target is models.ErrInvalidFilter
func (e Errors) Is(target error) bool {
	return target == models.ErrInvalidFilter
}

// SelfValidator is implemented by types with rules that span several fields
type SelfValidator interface {
	Validate() error
}

// Validator validates request structs by their validate tags
type Validator struct {
	validate *validator.Validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the shared validator
func GetValidator() *Validator {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New creates a validator that reports fields by their query, param or json name
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return &Validator{validate: v}
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"query", "param", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return strings.ToLower(fld.Name)
}

// Validate runs tag validation and then any SelfValidator rules. It satisfies echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return formatValidationError(err)
	}
	if sv, ok := i.(SelfValidator); ok {
		return sv.Validate()
	}
	return nil
}

func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(Errors, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, FieldError{
			Field:   e.Field(),
			Message: errorMessage(e),
		})
	}
	return out
}

func errorMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if isString {
			return fmt.Sprintf("Must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("Must be at least %s", e.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("Must be at most %s", e.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", e.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	default:
		return fmt.Sprintf("Failed %s validation", e.Tag())
	}
}

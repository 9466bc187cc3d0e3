package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalid = errors.New("invalid")
	// ErrSkipped marks an input item that was dropped from a batch without failing it.
	ErrSkipped = errors.New("skipped")
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		parts = append(parts, item.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{
		Field:   field,
		Message: msg,
	})
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e ValidationError) HasAny() bool {
	return len(e.Items) > 0
}

// FromValidator converts validator field errors into a ValidationError.
// Errors of any other kind are returned unchanged.
func FromValidator(err error) error {
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	var ve ValidationError
	for _, fe := range fes {
		switch fe.Tag() {
		case "required":
			ve.Add(fe.Field(), "is required")
		default:
			ve.Add(fe.Field(), "failed "+fe.Tag()+" check")
		}
	}
	return ve
}

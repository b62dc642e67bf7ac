package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the struct tag the
// request models use.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// The request models carry gin-style binding tags; reuse them so
	// service-level validation matches what the HTTP layer enforces.
	v.SetTagName("binding")
	return &Validator{v: v}
}

// Validate checks a struct and returns a single readable error listing
// every failing field.
func (val *Validator) Validate(obj interface{}) error {
	err := val.v.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// Var validates a single value against a tag expression.
func (val *Validator) Var(value interface{}, tag string) error {
	return val.v.Var(value, tag)
}

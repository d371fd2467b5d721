package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator. The same instance validates both the
// order-placement request body and inbound order event details.
func New() *validatorv10.Validate {
	return validatorv10.New()
}

package transport

import (
	"freight_backoffice/internal/quotes/domain"
	"freight_backoffice/platform/validator"
)

// RegisterValidations installs the costcategory and costunit tags.
func RegisterValidations(val *validator.Validator) error {
	categories := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		categories[i] = string(c)
	}
	units := make([]string, len(domain.Units))
	for i, u := range domain.Units {
		units[i] = string(u)
	}
	if err := val.RegisterOneOf("costcategory", categories); err != nil {
		return err
	}
	return val.RegisterOneOf("costunit", units)
}

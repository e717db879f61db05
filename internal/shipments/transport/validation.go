package transport

import (
	quotestransport "freight_backoffice/internal/quotes/transport"
	"freight_backoffice/internal/shipments/domain"
	"freight_backoffice/platform/validator"
)

// RegisterValidations registers the shipmentstatus tag plus the cost line
// tags shared with quotes.
func RegisterValidations(val *validator.Validator) error {
	statuses := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		statuses = append(statuses, string(s))
	}
	if err := val.RegisterOneOf("shipmentstatus", statuses); err != nil {
		return err
	}
	return quotestransport.RegisterValidations(val)
}

package transport

import (
	"encoding/json"
	"time"

	"freight_backoffice/internal/masterdata/domain"
)

// ListRequest is the query string of GET /masterdata/:collection.
type ListRequest struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"activeOnly"`
}

// EntityRequest is the body of create and update. Any field besides the
// common ones is kept as a collection-specific attribute.
type EntityRequest struct {
	Name       string         `json:"name" validate:"required,max=200"`
	Country    string         `json:"country" validate:"max=100"`
	Active     *bool          `json:"active"`
	Attributes map[string]any `json:"-"`
}

// UnmarshalJSON keeps unknown keys in Attributes.
func (r *EntityRequest) UnmarshalJSON(data []byte) error {
	var core struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Active  *bool  `json:"active"`
	}
	if err := json.Unmarshal(data, &core); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range []string{"id", "name", "country", "active", "createdAt", "updatedAt"} {
		delete(all, k)
	}
	r.Name, r.Country, r.Active, r.Attributes = core.Name, core.Country, core.Active, all
	return nil
}

// ToEntity converts the request. Active defaults to true.
func (r EntityRequest) ToEntity() domain.Entity {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return domain.Entity{
		Name:       r.Name,
		Country:    r.Country,
		Active:     active,
		Attributes: r.Attributes,
	}
}

// ListResponse wraps a list of records.
type ListResponse struct {
	Collection string          `json:"collection"`
	Items      []domain.Entity `json:"items"`
	Total      int             `json:"total"`
	FetchedAt  time.Time       `json:"fetchedAt"`
}

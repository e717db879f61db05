// Package domain defines the reference ("master data") records that quotes and
// shipments point at by id: customers, ports, airports, carriers and so on.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection names one master data collection in the document store.
type Collection string

const (
	Customers         Collection = "customers"
	ShippingLines     Collection = "shippingLines"
	FreightForwarders Collection = "freightForwarders"
	Airports          Collection = "airports"
	Ports             Collection = "ports"
	Airlines          Collection = "airlines"
	Terminals         Collection = "terminals"
	CustomsBrokers    Collection = "customsBrokers"
	Truckers          Collection = "truckers"
)

// Collections lists every master data collection.
var Collections = []Collection{
	Customers, ShippingLines, FreightForwarders, Airports, Ports,
	Airlines, Terminals, CustomsBrokers, Truckers,
}

// ParseCollection validates a collection name taken from a URL.
func ParseCollection(s string) (Collection, bool) {
	for _, c := range Collections {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

var reservedKeys = map[string]struct{}{
	"id": {}, "name": {}, "country": {}, "active": {}, "createdAt": {}, "updatedAt": {},
}

// Entity is a master data record. The common fields are typed; everything
// specific to a collection (code, city, contacts, taxId...) is kept in
// Attributes and stored next to them as top-level document fields.
type Entity struct {
	ID         uuid.UUID
	Name       string
	Country    string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Attributes map[string]any
}

type entityCore struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarshalJSON flattens Attributes next to the common fields.
func (e Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Attributes)+len(reservedKeys))
	for k, v := range e.Attributes {
		if _, reserved := reservedKeys[k]; !reserved {
			out[k] = v
		}
	}
	out["id"] = e.ID
	out["name"] = e.Name
	out["country"] = e.Country
	out["active"] = e.Active
	out["createdAt"] = e.CreatedAt
	out["updatedAt"] = e.UpdatedAt
	return json.Marshal(out)
}

// UnmarshalJSON splits a flat document into common fields and Attributes.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var core entityCore
	if err := json.Unmarshal(data, &core); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	attrs := make(map[string]any, len(all))
	for k, v := range all {
		if _, reserved := reservedKeys[k]; !reserved {
			attrs[k] = v
		}
	}
	*e = Entity{
		ID:         core.ID,
		Name:       core.Name,
		Country:    core.Country,
		Active:     core.Active,
		CreatedAt:  core.CreatedAt,
		UpdatedAt:  core.UpdatedAt,
		Attributes: attrs,
	}
	return nil
}

// Attr returns a string attribute or "".
func (e Entity) Attr(key string) string {
	if v, ok := e.Attributes[key].(string); ok {
		return v
	}
	return ""
}

// ContactPerson is one person listed on a master data record.
type ContactPerson struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Mobile   string `json:"mobile"`
}

// Contacts decodes the "contacts" attribute. Malformed entries are skipped.
func (e Entity) Contacts() []ContactPerson {
	raw, ok := e.Attributes["contacts"].([]any)
	if !ok {
		return nil
	}
	out := make([]ContactPerson, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var cp ContactPerson
		cp.Name, _ = m["name"].(string)
		cp.Position, _ = m["position"].(string)
		cp.Email, _ = m["email"].(string)
		cp.Phone, _ = m["phone"].(string)
		cp.Mobile, _ = m["mobile"].(string)
		out = append(out, cp)
	}
	return out
}

// PrimaryEmail is the record's email, or the first contact email.
func (e Entity) PrimaryEmail() string {
	if email := e.Attr("email"); email != "" {
		return email
	}
	for _, c := range e.Contacts() {
		if c.Email != "" {
			return c.Email
		}
	}
	return ""
}

// PrimaryPhone is the record's phone, or the first contact phone or mobile.
func (e Entity) PrimaryPhone() string {
	if p := e.Attr("phone"); p != "" {
		return p
	}
	for _, c := range e.Contacts() {
		if c.Phone != "" {
			return c.Phone
		}
		if c.Mobile != "" {
			return c.Mobile
		}
	}
	return ""
}

// Matches reports whether search is contained, case-insensitively, in the
// name or the country of the record. An empty search matches everything.
func (e Entity) Matches(search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), search) ||
		strings.Contains(strings.ToLower(e.Country), search)
}

var phoneKeys = map[string]struct{}{"phone": {}, "mobile": {}}

// MapPhones rewrites every "phone"/"mobile" string found in Attributes, at any
// depth, with fn.
func (e Entity) MapPhones(fn func(string) string) Entity {
	e.Attributes = mapPhones(e.Attributes, fn).(map[string]any)
	return e
}

func mapPhones(v any, fn func(string) string) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			if s, ok := inner.(string); ok {
				if _, isPhone := phoneKeys[k]; isPhone {
					out[k] = fn(s)
					continue
				}
			}
			out[k] = mapPhones(inner, fn)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = mapPhones(inner, fn)
		}
		return out
	default:
		return v
	}
}

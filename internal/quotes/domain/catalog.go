// Package domain holds the pure business rules of the quotes bounded context:
// cost sheets, totals and the quote workflow. Nothing here performs I/O.
package domain

// Category groups cost lines for display and defaults.
type Category string

const (
	CategoryFreight     Category = "freight"
	CategoryOrigin      Category = "origin"
	CategoryDestination Category = "destination"
	CategoryCustoms     Category = "customs"
	CategoryAdditional  Category = "additional"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFreight,
	CategoryOrigin,
	CategoryDestination,
	CategoryCustoms,
	CategoryAdditional,
}

var categoryNames = map[Category]string{
	CategoryFreight:     "Freight Charges",
	CategoryOrigin:      "Origin Charges",
	CategoryDestination: "Destination Charges",
	CategoryCustoms:     "Customs Charges",
	CategoryAdditional:  "Additional Charges",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// DisplayName returns the heading used when lines are grouped.
func (c Category) DisplayName() string {
	return categoryNames[c]
}

// Unit is the basis a charge amount is quoted on.
type Unit string

const (
	UnitPerShipment     Unit = "PerShipment"
	UnitPerContainer    Unit = "PerContainer"
	UnitPerCBM          Unit = "PerCBM"
	UnitPerKG           Unit = "PerKG"
	UnitPerDocument     Unit = "PerDocument"
	UnitPerDay          Unit = "PerDay"
	UnitPerContainerDay Unit = "PerContainerDay"
)

// Units lists every unit.
var Units = []Unit{
	UnitPerShipment,
	UnitPerContainer,
	UnitPerCBM,
	UnitPerKG,
	UnitPerDocument,
	UnitPerDay,
	UnitPerContainerDay,
}

var unitLabels = map[Unit]string{
	UnitPerShipment:     "Per Shipment",
	UnitPerContainer:    "Per Container",
	UnitPerCBM:          "Per CBM",
	UnitPerKG:           "Per KG",
	UnitPerDocument:     "Per Document",
	UnitPerDay:          "Per Day",
	UnitPerContainerDay: "Per Container/Day",
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	_, ok := unitLabels[u]
	return ok
}

// Label returns the human readable unit.
func (u Unit) Label() string {
	return unitLabels[u]
}

// Preset is a named charge from the static catalog.
type Preset struct {
	Description string `json:"description"`
	Unit        Unit   `json:"unit"`
}

var presets = map[Category][]Preset{
	CategoryFreight: {
		{"Ocean/Air Freight", UnitPerShipment},
		{"Fuel Surcharge (BAF/FSC)", UnitPerShipment},
		{"Security Fee", UnitPerShipment},
		{"Carrier Service Fee", UnitPerShipment},
	},
	CategoryOrigin: {
		{"Terminal Handling Charges (THC)", UnitPerContainer},
		{"Documentation Fee", UnitPerDocument},
		{"Export Customs Clearance", UnitPerShipment},
		{"Pickup & Transportation", UnitPerContainer},
		{"Container Seal Fee", UnitPerContainer},
		{"VGM Fee", UnitPerContainer},
	},
	CategoryDestination: {
		{"Terminal Handling Charges (THC)", UnitPerContainer},
		{"Documentation Fee", UnitPerDocument},
		{"Import Customs Clearance", UnitPerShipment},
		{"Delivery & Transportation", UnitPerContainer},
		{"Container Cleaning", UnitPerContainer},
	},
	CategoryCustoms: {
		{"Customs Duty", UnitPerShipment},
		{"Import Tax", UnitPerShipment},
		{"VAT", UnitPerShipment},
		{"Customs Inspection", UnitPerContainer},
	},
	CategoryAdditional: {
		{"Insurance", UnitPerShipment},
		{"Warehousing", UnitPerDay},
		{"Special Equipment", UnitPerShipment},
		{"Demurrage & Detention", UnitPerContainerDay},
		{"Fumigation", UnitPerContainer},
	},
}

// Presets returns a copy of the preset charges for category.
func Presets(category Category) []Preset {
	src := presets[category]
	out := make([]Preset, len(src))
	copy(out, src)
	return out
}

// FindPreset looks up a preset by its exact description within category.
func FindPreset(category Category, description string) (Preset, bool) {
	for _, p := range presets[category] {
		if p.Description == description {
			return p, true
		}
	}
	return Preset{}, false
}

// Incoterm is a trade delivery term.
type Incoterm struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Label renders "FOB - Free on Board", the form stored on quotes.
func (i Incoterm) Label() string {
	return i.Code + " - " + i.Name
}

// Incoterms lists the supported incoterms (2020 rules).
var Incoterms = []Incoterm{
	{"EXW", "Ex Works"},
	{"FCA", "Free Carrier"},
	{"CPT", "Carriage Paid To"},
	{"CIP", "Carriage and Insurance Paid To"},
	{"DAP", "Delivered at Place"},
	{"DPU", "Delivered at Place Unloaded"},
	{"DDP", "Delivered Duty Paid"},
	{"FAS", "Free Alongside Ship"},
	{"FOB", "Free on Board"},
	{"CFR", "Cost and Freight"},
	{"CIF", "Cost, Insurance and Freight"},
}

// FreightConditions lists the door/port/airport service scopes.
var FreightConditions = []string{
	"Door to Door",
	"Door to Port",
	"Port to Door",
	"Port to Port",
	"Airport to Airport",
	"Door to Airport",
	"Airport to Door",
}

const (
	DefaultCurrency         = "USD"
	DefaultIncoterm         = "FOB - Free on Board"
	DefaultFreightCondition = "Port to Port"
	DefaultValidityDays     = 30
)

// DefaultTerms are copied onto a new quote when none are supplied.
var DefaultTerms = []string{
	"Quote validity: 30 days from issue date",
	"Subject to space and equipment availability",
	"Subject to carrier approval",
	"Rates exclude insurance unless specified",
	"Terms and conditions apply",
}

// IsIncotermLabel reports whether label is one of Incoterms rendered with Label.
func IsIncotermLabel(label string) bool {
	for _, i := range Incoterms {
		if i.Label() == label {
			return true
		}
	}
	return false
}

// IsFreightCondition reports whether s is a known freight condition.
func IsFreightCondition(s string) bool {
	for _, fc := range FreightConditions {
		if fc == s {
			return true
		}
	}
	return false
}

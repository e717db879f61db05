package domain

import (
	"fmt"
	"strings"
	"time"

	quotesdomain "freight_backoffice/internal/quotes/domain"
	"freight_backoffice/platform/apperr"

	"github.com/google/uuid"
)

const msgShipmentUpdated = "Shipment updated"

// RecordEvent appends a tracking event, sets the current status and stamps
// UpdatedAt. The log is append-only; earlier entries are never touched.
func RecordEvent(s Shipment, status Status, description, location string, now time.Time) (Shipment, error) {
	if err := ValidateStatus(status); err != nil {
		return s, err
	}
	stamp := s.stamp(now)
	history := make([]TrackingEvent, len(s.TrackingHistory), len(s.TrackingHistory)+1)
	copy(history, s.TrackingHistory)
	history = append(history, TrackingEvent{
		Timestamp:   stamp,
		Status:      status,
		Description: strings.TrimSpace(description),
		Location:    strings.TrimSpace(location),
	})

	next := s
	next.TrackingHistory = history
	next.Status = status
	next.UpdatedAt = stamp
	return next, nil
}

// NewShipment builds a shipment whose log is seeded with a creation event.
func NewShipment(id uuid.UUID, t Type, d Details, manager Manager, now time.Time) (Shipment, error) {
	d = Normalize(t, d)
	if err := Validate(t, d); err != nil {
		return Shipment{}, err
	}
	now = now.UTC()
	s := Shipment{
		ID:        id,
		Type:      t,
		Details:   d,
		Manager:   manager,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return RecordEvent(s, d.Status, t.Label()+" shipment created", "", now)
}

// ApplyUpdate replaces the details of s. Identity, manager, creation time and
// history are kept; a status change is recorded as a tracking event.
func ApplyUpdate(s Shipment, d Details, now time.Time) (Shipment, error) {
	d = Normalize(s.Type, d)
	if err := Validate(s.Type, d); err != nil {
		return s, err
	}
	previous := s.Status
	next := s
	next.Details = d
	next.Status = previous
	if d.Status != previous {
		return RecordEvent(next, d.Status, msgShipmentUpdated, "", now)
	}
	next.UpdatedAt = s.stamp(now)
	return next, nil
}

// Normalize trims and upper-cases tracking numbers and fills defaults.
func Normalize(t Type, d Details) Details {
	d.BLNumber = normalizeNumber(d.BLNumber)
	d.AWBNumber = normalizeNumber(d.AWBNumber)
	d.CRTNumber = normalizeNumber(d.CRTNumber)
	if d.Status == "" {
		d.Status = StatusBooked
	}
	if d.CustomsStatus == "" {
		d.CustomsStatus = CustomsGreen
	}
	if d.CargoDetails == nil {
		d.CargoDetails = []quotesdomain.CargoItem{}
	}
	if d.Costs == nil {
		d.Costs = []quotesdomain.CostLine{}
	}
	if t != TypeOcean {
		d.Containers = nil
		d.Schedule.DraftBLDate, d.Schedule.VGMDeadline, d.Schedule.CargoCutOff = nil, nil, nil
	}
	for i := range d.Containers {
		if d.Containers[i].Status == "" {
			d.Containers[i].Status = DefaultContainerStatus
		}
		d.Containers[i].Number = normalizeNumber(d.Containers[i].Number)
	}
	for i := range d.Costs {
		d.Costs[i].Quantity = d.Costs[i].EffectiveQuantity()
	}
	return d
}

// NormalizeNumber is the canonical form tracking numbers are stored and
// searched in.
func NormalizeNumber(n string) string {
	return normalizeNumber(n)
}

func normalizeNumber(n string) string {
	return strings.ToUpper(strings.TrimSpace(n))
}

// Validate checks enumerations and the cost lines of d.
func Validate(t Type, d Details) error {
	problems := map[string]string{}
	if _, ok := typeInfo[t]; !ok {
		problems["type"] = fmt.Sprintf("unknown shipment type %q", t)
	}
	if !d.Status.Valid() {
		problems["status"] = fmt.Sprintf("unknown shipment status %q", d.Status)
	}
	switch d.CustomsStatus {
	case CustomsGreen, CustomsYellow, CustomsRed:
	default:
		problems["customsStatus"] = fmt.Sprintf("unknown customs status %q", d.CustomsStatus)
	}
	for i, l := range d.Costs {
		if err := quotesdomain.ValidateLine(l); err != nil {
			problems[fmt.Sprintf("costs[%d]", i)] = err.Error()
		}
	}
	if len(problems) > 0 {
		return apperr.Validation("invalid shipment").WithDetails(problems)
	}
	return nil
}

func (s Shipment) stamp(now time.Time) time.Time {
	now = now.UTC()
	if now.Before(s.UpdatedAt) {
		return s.UpdatedAt
	}
	return now
}

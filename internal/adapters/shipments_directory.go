package adapters

import (
	"context"

	mddomain "freight_backoffice/internal/masterdata/domain"
	shipdomain "freight_backoffice/internal/shipments/domain"
	shipsvc "freight_backoffice/internal/shipments/service"

	"github.com/google/uuid"
)

// ShipmentsDirectory resolves shipment parties against master data. The
// customer attribute "userId" links the record to a customer login and is
// what role-scoped shipment reads filter on.
type ShipmentsDirectory struct {
	md MasterDataReader
}

// NewShipmentsDirectory creates the directory adapter.
func NewShipmentsDirectory(md MasterDataReader) *ShipmentsDirectory {
	return &ShipmentsDirectory{md: md}
}

// Customer snapshots a customer as a shipment party.
func (d *ShipmentsDirectory) Customer(ctx context.Context, id uuid.UUID) (shipdomain.Party, error) {
	e, err := d.md.Get(ctx, mddomain.Customers, id)
	if err != nil {
		return shipdomain.Party{}, err
	}
	p := d.snapshot(e)
	p.UserID = loginID(e.Attr("userId"))
	return p, nil
}

// Forwarder snapshots a freight forwarder as the shipment agent.
func (d *ShipmentsDirectory) Forwarder(ctx context.Context, id uuid.UUID) (shipdomain.Party, error) {
	e, err := d.md.Get(ctx, mddomain.FreightForwarders, id)
	if err != nil {
		return shipdomain.Party{}, err
	}
	return d.snapshot(e), nil
}

func (d *ShipmentsDirectory) snapshot(e mddomain.Entity) shipdomain.Party {
	q := partyFromEntity(e)
	return shipdomain.Party{ID: q.ID, Name: q.Name, Company: q.Company, Email: q.Email, Phone: q.Phone}
}

// loginID parses the customer login link. A missing or malformed link
// leaves the shipment visible to managers only.
func loginID(raw string) *uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

var _ shipsvc.Directory = (*ShipmentsDirectory)(nil)

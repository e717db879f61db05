// Package adapters holds the anti-corruption layer between bounded contexts.
package adapters

import (
	"context"
	"strings"

	mddomain "freight_backoffice/internal/masterdata/domain"
	quotesdomain "freight_backoffice/internal/quotes/domain"
	quotesvc "freight_backoffice/internal/quotes/service"

	"github.com/google/uuid"
)

// MasterDataReader is the narrow read interface of the master data service.
type MasterDataReader interface {
	Get(ctx context.Context, c mddomain.Collection, id uuid.UUID) (mddomain.Entity, error)
}

// QuotesDirectory resolves quote party and location references against
// master data. It implements quotes/service.Directory.
type QuotesDirectory struct {
	md MasterDataReader
}

// NewQuotesDirectory creates the directory adapter.
func NewQuotesDirectory(md MasterDataReader) *QuotesDirectory {
	return &QuotesDirectory{md: md}
}

// Customer snapshots a customer as a quote party.
func (d *QuotesDirectory) Customer(ctx context.Context, id uuid.UUID) (quotesdomain.Party, error) {
	return d.party(ctx, mddomain.Customers, id)
}

// Forwarder snapshots a freight forwarder as the quote agent.
func (d *QuotesDirectory) Forwarder(ctx context.Context, id uuid.UUID) (quotesdomain.Party, error) {
	return d.party(ctx, mddomain.FreightForwarders, id)
}

// Port snapshots a port as a quote location.
func (d *QuotesDirectory) Port(ctx context.Context, id uuid.UUID) (quotesdomain.Location, error) {
	return d.location(ctx, mddomain.Ports, id)
}

// Airport snapshots an airport as a quote location.
func (d *QuotesDirectory) Airport(ctx context.Context, id uuid.UUID) (quotesdomain.Location, error) {
	return d.location(ctx, mddomain.Airports, id)
}

func (d *QuotesDirectory) party(ctx context.Context, c mddomain.Collection, id uuid.UUID) (quotesdomain.Party, error) {
	e, err := d.md.Get(ctx, c, id)
	if err != nil {
		return quotesdomain.Party{}, err
	}
	return partyFromEntity(e), nil
}

func partyFromEntity(e mddomain.Entity) quotesdomain.Party {
	company := e.Attr("company")
	if company == "" {
		company = e.Name
	}
	return quotesdomain.Party{
		ID:      e.ID,
		Name:    e.Name,
		Company: company,
		Email:   e.PrimaryEmail(),
		Phone:   e.PrimaryPhone(),
	}
}

func (d *QuotesDirectory) location(ctx context.Context, c mddomain.Collection, id uuid.UUID) (quotesdomain.Location, error) {
	e, err := d.md.Get(ctx, c, id)
	if err != nil {
		return quotesdomain.Location{}, err
	}
	locID := e.ID
	return quotesdomain.Location{
		ID:      &locID,
		Name:    e.Name,
		Code:    strings.ToUpper(e.Attr("code")),
		City:    e.Attr("city"),
		Country: e.Country,
	}, nil
}

var _ quotesvc.Directory = (*QuotesDirectory)(nil)

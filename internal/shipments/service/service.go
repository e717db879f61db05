// Package service implements shipment management: per-type CRUD, the
// tracking log and role-scoped reads that fan out over the three shipment
// collections.
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"freight_backoffice/internal/events"
	"freight_backoffice/internal/shipments/domain"
	"freight_backoffice/internal/shipments/repository"
	"freight_backoffice/internal/shipments/transport"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/docstore"
	"freight_backoffice/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	msgSelectParties  = "Please select both shipper and consignee"
	msgNumberRequired = "tracking number is required"
	shipperUserIDPath = "shipper.userId"
)

// Directory resolves master data references into party snapshots.
type Directory interface {
	Customer(ctx context.Context, id uuid.UUID) (domain.Party, error)
	Forwarder(ctx context.Context, id uuid.UUID) (domain.Party, error)
}

// Viewer is who is reading. Non-managers only see shipments whose shipper
// record is linked to their login.
type Viewer struct {
	UserID  uuid.UUID
	Manager bool
}

// ListFilter narrows the manager dashboard list.
type ListFilter struct {
	Type   domain.Type
	Status domain.Status
	Search string
}

// Service provides business logic for shipments
type Service struct {
	repo *repository.Repository
	dir  Directory
	bus  events.Bus
	log  *logger.Logger
	now  func() time.Time
}

// New creates a new shipments service
func New(repo *repository.Repository, dir Directory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, dir: dir, bus: bus, log: log, now: time.Now}
}

// Create stores a new shipment of type t managed by actor.
func (s *Service) Create(ctx context.Context, actor domain.Manager, t domain.Type, req transport.ShipmentRequest) (transport.ShipmentResponse, error) {
	details, err := s.resolve(ctx, req.Details())
	if err != nil {
		return transport.ShipmentResponse{}, err
	}

	shipment, err := domain.NewShipment(uuid.New(), t, details, actor, s.now())
	if err != nil {
		return transport.ShipmentResponse{}, err
	}
	if err := s.repo.Create(ctx, shipment); err != nil {
		return transport.ShipmentResponse{}, err
	}
	s.log.WithContext(ctx).Info("shipment created", "shipmentId", shipment.ID, "type", string(t))
	return transport.NewShipmentResponse(shipment), nil
}

// Get returns one shipment. A customer asking for a shipment that is not
// theirs gets NotFound.
func (s *Service) Get(ctx context.Context, viewer Viewer, t domain.Type, id uuid.UUID) (transport.ShipmentResponse, error) {
	shipment, err := s.repo.Get(ctx, t, id)
	if err != nil {
		return transport.ShipmentResponse{}, err
	}
	if !viewer.Manager && !shipment.OwnedBy(viewer.UserID) {
		return transport.ShipmentResponse{}, apperr.NotFound("shipment not found")
	}
	return transport.NewShipmentResponse(shipment), nil
}

// List returns shipments across all types, newest first. Customers get
// their own shipments; managers may filter by type, status and free text.
func (s *Service) List(ctx context.Context, viewer Viewer, f ListFilter) (transport.ShipmentListResponse, error) {
	types := domain.Types
	if f.Type != "" {
		types = []domain.Type{f.Type}
	}

	items, err := s.fanOut(ctx, types, func(domain.Type) []docstore.Filter {
		return s.scope(viewer)
	})
	if err != nil {
		return transport.ShipmentListResponse{}, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	filtered := items[:0]
	for _, it := range items {
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		if search != "" && !matchesSearch(it, search) {
			continue
		}
		filtered = append(filtered, it)
	}
	return transport.NewShipmentListResponse(filtered), nil
}

// SearchByNumber looks a tracking number up in all three collections at
// once. It fails if any collection read fails.
func (s *Service) SearchByNumber(ctx context.Context, viewer Viewer, number string) (transport.ShipmentListResponse, error) {
	number = domain.NormalizeNumber(number)
	if number == "" {
		return transport.ShipmentListResponse{}, apperr.Validation(msgNumberRequired)
	}

	items, err := s.fanOut(ctx, domain.Types, func(t domain.Type) []docstore.Filter {
		return append(s.scope(viewer), docstore.Eq(t.NumberField(), number))
	})
	if err != nil {
		return transport.ShipmentListResponse{}, err
	}
	return transport.NewShipmentListResponse(items), nil
}

// Update replaces the details of a shipment. A status change is appended to
// the tracking log and announced.
func (s *Service) Update(ctx context.Context, t domain.Type, id uuid.UUID, req transport.ShipmentRequest) (transport.ShipmentResponse, error) {
	current, err := s.repo.Get(ctx, t, id)
	if err != nil {
		return transport.ShipmentResponse{}, err
	}
	details, err := s.resolve(ctx, req.Details())
	if err != nil {
		return transport.ShipmentResponse{}, err
	}

	updated, err := domain.ApplyUpdate(current, details, s.now())
	if err != nil {
		return transport.ShipmentResponse{}, err
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return transport.ShipmentResponse{}, err
	}
	s.announce(ctx, current, updated)
	return transport.NewShipmentResponse(updated), nil
}

// RecordEvent appends a tracking event to the shipment log.
func (s *Service) RecordEvent(ctx context.Context, t domain.Type, id uuid.UUID, req transport.TrackingEventRequest) (transport.ShipmentResponse, error) {
	current, err := s.repo.Get(ctx, t, id)
	if err != nil {
		return transport.ShipmentResponse{}, err
	}

	updated, err := domain.RecordEvent(current, domain.Status(req.Status), req.Description, req.Location, s.now())
	if err != nil {
		return transport.ShipmentResponse{}, err
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return transport.ShipmentResponse{}, err
	}
	s.log.WithContext(ctx).Info("tracking event recorded",
		"shipmentId", id, "status", req.Status, "events", len(updated.TrackingHistory))
	s.announce(ctx, current, updated)
	return transport.NewShipmentResponse(updated), nil
}

// Delete hard-deletes a shipment.
func (s *Service) Delete(ctx context.Context, t domain.Type, id uuid.UUID) error {
	return s.repo.Delete(ctx, t, id)
}

func (s *Service) scope(viewer Viewer) []docstore.Filter {
	if viewer.Manager {
		return nil
	}
	return []docstore.Filter{docstore.Eq(shipperUserIDPath, viewer.UserID.String())}
}

// fanOut lists every type concurrently and merges the results newest first.
func (s *Service) fanOut(ctx context.Context, types []domain.Type, where func(domain.Type) []docstore.Filter) ([]domain.Shipment, error) {
	results := make([][]domain.Shipment, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			items, err := s.repo.List(gctx, t, where(t)...)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.WithContext(ctx).Error("shipment fan-out failed", "error", err)
		return nil, err
	}

	var merged []domain.Shipment
	for _, r := range results {
		merged = append(merged, r...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}

func (s *Service) resolve(ctx context.Context, d domain.Details) (domain.Details, error) {
	if d.Shipper.ID == uuid.Nil || d.Consignee.ID == uuid.Nil {
		return d, apperr.Validation(msgSelectParties)
	}

	var err error
	if d.Shipper, err = s.dir.Customer(ctx, d.Shipper.ID); err != nil {
		return d, referenceErr("shipper", err)
	}
	if d.Consignee, err = s.dir.Customer(ctx, d.Consignee.ID); err != nil {
		return d, referenceErr("consignee", err)
	}
	if d.Agent != nil {
		agent, err := s.dir.Forwarder(ctx, d.Agent.ID)
		if err != nil {
			return d, referenceErr("agent", err)
		}
		d.Agent = &agent
	}
	return d, nil
}

func referenceErr(field string, err error) error {
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Validation(field + " not found")
	}
	return err
}

func (s *Service) announce(ctx context.Context, before, after domain.Shipment) {
	if before.Status == after.Status {
		return
	}
	last := after.TrackingHistory[len(after.TrackingHistory)-1]
	ev := events.ShipmentStatusChanged{
		BaseEvent:      events.NewBaseEvent(last.Timestamp),
		ShipmentID:     after.ID,
		ShipmentType:   string(after.Type),
		Reference:      reference(after),
		PreviousStatus: string(before.Status),
		Status:         string(after.Status),
		Description:    last.Description,
		Location:       last.Location,
	}
	if after.Shipper.Email != "" {
		ev.Shipper = &events.Recipient{Name: after.Shipper.Name, Email: after.Shipper.Email}
	}
	s.bus.Publish(ctx, ev)
}

func reference(sh domain.Shipment) string {
	if sh.BRLReference != "" {
		return sh.BRLReference
	}
	if n := sh.TrackingNumber(); n != "" {
		return n
	}
	return sh.ID.String()
}

func matchesSearch(sh domain.Shipment, search string) bool {
	for _, field := range []string{sh.TrackingNumber(), sh.Shipper.Name, sh.Shipper.Company, sh.BRLReference} {
		if field != "" && strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

package availability

import (
	"context"
	"fmt"
	"time"

	apperrors "voyara/pkg/errors"
	"voyara/pkg/logger"
	"voyara/pkg/model"

	"github.com/google/uuid"
)

// HoldStore persists capacity holds. Delete is idempotent: deleting an
// absent hold is not an error.
type HoldStore interface {
	Insert(ctx context.Context, hold *model.CapacityHold) error
	Delete(ctx context.Context, holdID string) error
	ActiveForResource(ctx context.Context, resourceID string, now time.Time) ([]*model.CapacityHold, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AllocationReader exposes the committed side of capacity: bookings in
// pending or confirmed status. Cancelled and completed bookings no
// longer occupy capacity and must not be reported here.
type AllocationReader interface {
	ActiveSeatCount(ctx context.Context, resourceID string) (int, error)
	ActiveWindows(ctx context.Context, resourceID string) ([]model.Window, error)
}

// Index is the sole authority over resource capacity. Every reservation
// goes through TryReserve; capacity reads anywhere else are display-only
// and never authorize a booking.
//
// TryReserve serializes per resource: the availability check and the
// hold insert run under one per-resource lock, so two concurrent
// requests can never both be granted capacity that only one of them
// fits in.
type Index struct {
	holds       HoldStore
	allocations AllocationReader
	holdTTL     time.Duration
	locks       *resourceLocks
	log         *logger.Logger
	now         func() time.Time
}

func New(holds HoldStore, allocations AllocationReader, holdTTL time.Duration, log *logger.Logger) *Index {
	return &Index{
		holds:       holds,
		allocations: allocations,
		holdTTL:     holdTTL,
		locks:       newResourceLocks(),
		log:         log,
		now:         time.Now,
	}
}

// WithClock replaces the index clock. Tests use this to control hold
// expiry deterministically.
func (ix *Index) WithClock(now func() time.Time) *Index {
	ix.now = now
	return ix
}

// TryReserve provisionally debits capacity for a booking attempt. On
// success the returned hold counts against the resource until it is
// committed alongside the booking insert or released. Holds that are
// never resolved expire after the configured TTL.
//
// Seat-based resources grant a hold when the requested quantity fits in
// capacity minus active bookings minus live holds. Date-range resources
// grant a hold only when no active booking or live hold overlaps the
// half-open requested window.
func (ix *Index) TryReserve(ctx context.Context, resource *model.Resource, window model.Window, quantity int) (*model.CapacityHold, error) {
	if quantity < 1 {
		return nil, apperrors.InvalidInput("Quantity must be at least 1")
	}
	if !resource.Active {
		return nil, apperrors.ResourceUnavailable(resource.ID)
	}

	unlock := ix.locks.Lock(resource.ID)
	defer unlock()

	now := ix.now()

	liveHolds, err := ix.holds.ActiveForResource(ctx, resource.ID, now)
	if err != nil {
		return nil, apperrors.Internal("Failed to read capacity holds", err)
	}

	profile := resource.Kind.Profile()
	if profile.SeatBased {
		if err := ix.checkSeats(ctx, resource, liveHolds, quantity); err != nil {
			return nil, err
		}
	} else {
		if err := ix.checkWindow(ctx, resource, liveHolds, window); err != nil {
			return nil, err
		}
	}

	hold := &model.CapacityHold{
		ID:         uuid.NewString(),
		ResourceID: resource.ID,
		Quantity:   quantity,
		Window:     window,
		ExpiresAt:  now.Add(ix.holdTTL),
		CreatedAt:  now,
	}
	if err := ix.holds.Insert(ctx, hold); err != nil {
		return nil, apperrors.Internal("Failed to record capacity hold", err)
	}

	ix.log.Debug("capacity hold granted",
		"hold_id", hold.ID,
		"resource_id", resource.ID,
		"quantity", quantity,
		"expires_at", hold.ExpiresAt,
	)
	return hold, nil
}

func (ix *Index) checkSeats(ctx context.Context, resource *model.Resource, liveHolds []*model.CapacityHold, quantity int) error {
	booked, err := ix.allocations.ActiveSeatCount(ctx, resource.ID)
	if err != nil {
		return apperrors.Internal("Failed to read committed allocations", err)
	}

	held := 0
	for _, h := range liveHolds {
		held += h.Quantity
	}

	remaining := resource.Capacity - booked - held
	if quantity > remaining {
		if remaining < 0 {
			remaining = 0
		}
		return apperrors.InsufficientCapacity(
			fmt.Sprintf("Only %d of %d requested seats remain", remaining, quantity),
			map[string]any{
				"resource_id": resource.ID,
				"requested":   quantity,
				"remaining":   remaining,
			},
		)
	}
	return nil
}

func (ix *Index) checkWindow(ctx context.Context, resource *model.Resource, liveHolds []*model.CapacityHold, window model.Window) error {
	if !window.End.After(window.Start) {
		return apperrors.InvalidInput("Booking window end must be after start")
	}

	taken, err := ix.allocations.ActiveWindows(ctx, resource.ID)
	if err != nil {
		return apperrors.Internal("Failed to read committed allocations", err)
	}
	for _, other := range taken {
		if window.Overlaps(other) {
			return insufficientWindow(resource.ID, window)
		}
	}
	for _, h := range liveHolds {
		if window.Overlaps(h.Window) {
			return insufficientWindow(resource.ID, window)
		}
	}
	return nil
}

func insufficientWindow(resourceID string, window model.Window) error {
	return apperrors.InsufficientCapacity(
		"Requested dates are not available for this resource",
		map[string]any{
			"resource_id": resourceID,
			"start":       window.Start,
			"end":         window.End,
		},
	)
}

// Commit promotes a hold into a permanent allocation. The hold record is
// removed; from that point the booking row itself carries the
// allocation. Callers run Commit inside the same transaction as the
// booking insert so the two can never diverge.
func (ix *Index) Commit(ctx context.Context, holdID string) error {
	if err := ix.holds.Delete(ctx, holdID); err != nil {
		return apperrors.Internal("Failed to commit capacity hold", err)
	}
	return nil
}

// Release returns a hold's capacity. Releasing a hold that was already
// committed, released or expired is a no-op.
func (ix *Index) Release(ctx context.Context, holdID string) error {
	if err := ix.holds.Delete(ctx, holdID); err != nil {
		return apperrors.Internal("Failed to release capacity hold", err)
	}
	return nil
}

// SweepExpired drops holds whose TTL has passed, reclaiming capacity
// stranded by callers that crashed between reserve and commit.
func (ix *Index) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := ix.holds.DeleteExpired(ctx, ix.now())
	if err != nil {
		return 0, apperrors.Internal("Failed to sweep expired holds", err)
	}
	if removed > 0 {
		ix.log.Info("swept expired capacity holds", "removed", removed)
	}
	return removed, nil
}

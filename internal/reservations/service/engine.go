package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"voyara/internal/availability"
	"voyara/internal/lifecycle"
	"voyara/internal/policy"
	"voyara/internal/pricing"
	"voyara/internal/refcode"
	reserrors "voyara/internal/reservations/errors"
	"voyara/internal/reservations/repository"
	"voyara/internal/reservations/validator"
	"voyara/pkg/config"
	apperrors "voyara/pkg/errors"
	"voyara/pkg/model"
	"voyara/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// CapacityIndex is the slice of the availability index the engine needs.
// Satisfied by *availability.Index.
type CapacityIndex interface {
	TryReserve(ctx context.Context, resource *model.Resource, window model.Window, quantity int) (*model.CapacityHold, error)
	Commit(ctx context.Context, holdID string) error
	Release(ctx context.Context, holdID string) error
}

// EventPublisher emits booking lifecycle events. Publishing is
// best-effort: implementations log failures and never propagate them
// into the booking operation.
type EventPublisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus)
}

type ReservationEngine interface {
	CreateBooking(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error)
	Transition(ctx context.Context, actor model.Actor, bookingID string, target model.BookingStatus, reason string) (*model.Booking, error)
	CancelBooking(ctx context.Context, actor model.Actor, bookingID string, reason string) (*model.Booking, error)
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*model.Booking, error)
	ListBookingsForResource(ctx context.Context, resourceID string, limit int, offset int64) ([]*model.Booking, int64, error)
	RecordPaymentOutcome(ctx context.Context, outcome *model.PaymentOutcome) error
}

type engine struct {
	bookings  repository.BookingRepository
	resources repository.ResourceRepository
	payments  repository.PaymentRepository
	index     CapacityIndex
	validator *validator.BookingValidator
	events    EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewReservationEngine(
	bookings repository.BookingRepository,
	resources repository.ResourceRepository,
	payments repository.PaymentRepository,
	index CapacityIndex,
	validator *validator.BookingValidator,
	events EventPublisher,
	cfg *config.Config,
) ReservationEngine {
	return &engine{
		bookings:  bookings,
		resources: resources,
		payments:  payments,
		index:     index,
		validator: validator,
		events:    events,
		cfg:       cfg,
		now:       time.Now,
	}
}

// CreateBooking turns a reservation request into a pending booking.
// Capacity is reserved before anything is persisted, and the hold is
// committed in the same transaction as the booking insert, so a failure
// at any step leaves neither an orphaned hold nor a booking without an
// allocation.
func (e *engine) CreateBooking(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error) {
	if actor.UserID == "" {
		return nil, apperrors.Unauthorized("Caller identity is required")
	}

	resource, err := e.loadResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	if !resource.Active {
		return nil, apperrors.ResourceUnavailable(resource.ID)
	}

	e.sanitizeRequest(req)

	now := e.now()
	if err := e.validator.ValidateRequest(req, resource.Kind, now); err != nil {
		e.cfg.Log.Warn("Booking request validation failed", "resource_id", req.ResourceID, "error", err)
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	window := bookingWindow(req, resource.Kind.Profile())

	hold, err := e.index.TryReserve(ctx, resource, window, req.Quantity)
	if err != nil {
		return nil, err
	}

	quote := pricing.Compute(resource, req.Quantity, window, req.AddOns)

	booking := &model.Booking{
		ResourceID:     resource.ID,
		ResourceKind:   resource.Kind,
		RequesterID:    actor.UserID,
		Quantity:       req.Quantity,
		Window:         window,
		Status:         model.StatusPending,
		Currency:       quote.Currency,
		BasePrice:      quote.Base,
		ServiceFee:     quote.ServiceFee,
		AdditionalFees: quote.AdditionalFees,
		Total:          quote.Total,
		Passengers:     req.Passengers,
		AddOns:         req.AddOns,
		CreatedAt:      now.UTC().Truncate(time.Millisecond),
	}

	if err := e.persistWithReference(ctx, booking, hold.ID); err != nil {
		if releaseErr := e.index.Release(ctx, hold.ID); releaseErr != nil {
			e.cfg.Log.Warn("Failed to release hold after create failure", "hold_id", hold.ID, "error", releaseErr)
		}
		e.cfg.Log.Error("Failed to create booking", "resource_id", resource.ID, "error", err)
		return nil, err
	}

	e.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"reference", booking.Reference,
		"resource_id", resource.ID,
		"quantity", booking.Quantity,
		"total", booking.Total,
	)

	if e.events != nil {
		e.events.BookingCreated(ctx, booking)
	}
	return booking, nil
}

// persistWithReference assigns a reference code and inserts the booking
// atomically with the hold commit. Reference collisions are regenerated
// and retried a bounded number of times; the unique index on reference
// closes the race between the existence check and the insert.
func (e *engine) persistWithReference(ctx context.Context, booking *model.Booking, holdID string) error {
	for attempt := 0; attempt < e.cfg.ReferenceMaxAttempts; attempt++ {
		reference, err := refcode.Generate(booking.ResourceKind)
		if err != nil {
			return apperrors.Internal("Failed to generate booking reference", err)
		}

		taken, err := e.bookings.ExistsByReference(ctx, reference)
		if err != nil {
			return apperrors.Internal("Failed to check booking reference", err)
		}
		if taken {
			continue
		}

		booking.Reference = reference
		err = e.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := e.bookings.Create(sessCtx, booking); err != nil {
				return err
			}
			return e.index.Commit(sessCtx, holdID)
		})
		if errors.Is(err, reserrors.ErrReferenceTaken) {
			booking.ID = ""
			continue
		}
		if err != nil {
			if apperrors.IsAppError(err) {
				return err
			}
			return apperrors.Internal("Failed to persist booking", err)
		}
		return nil
	}
	return apperrors.Internal("Failed to allocate a unique booking reference", nil)
}

// Transition applies a status change through the lifecycle table.
// Cancellations additionally pass the lead-time policy, and a concurrent
// status change is reloaded and retried a bounded number of times before
// surfacing as a conflict. Moving a booking out of an active status is
// itself the capacity release: the availability index only counts
// pending and confirmed bookings.
func (e *engine) Transition(ctx context.Context, actor model.Actor, bookingID string, target model.BookingStatus, reason string) (*model.Booking, error) {
	if !target.Valid() || target == model.StatusPending {
		return nil, apperrors.InvalidInput("Invalid target status")
	}

	booking, err := e.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < e.cfg.StatusUpdateMaxAttempts; attempt++ {
		if !lifecycle.CanTransition(booking.Status, target) {
			return nil, apperrors.InvalidTransition(string(booking.Status), string(target))
		}
		if !lifecycle.Authorized(actor, booking, target) {
			return nil, apperrors.Forbidden("Actor is not allowed to perform this transition")
		}

		var cancelledAt *time.Time
		if target == model.StatusCancelled {
			now := e.now()
			decision := policy.Evaluate(booking, now)
			if !decision.Allowed {
				return nil, apperrors.CancellationWindowClosed(
					"Cancellation window for this booking has closed",
					map[string]any{
						"deadline":  decision.Deadline,
						"lead_time": decision.LeadTime.String(),
					},
				)
			}
			ts := now.UTC().Truncate(time.Millisecond)
			cancelledAt = &ts
		}

		err := e.bookings.UpdateStatus(ctx, booking.ID, booking.Status, target, reason, cancelledAt)
		if errors.Is(err, reserrors.ErrStatusConflict) {
			booking, err = e.GetBooking(ctx, bookingID)
			if err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, apperrors.Internal("Failed to update booking status", err)
		}

		from := booking.Status
		booking.Status = target
		if target == model.StatusCancelled {
			booking.CancelReason = reason
			booking.CancelledAt = cancelledAt
		}

		e.cfg.Log.Info("Booking status changed",
			"id", booking.ID,
			"reference", booking.Reference,
			"from", from,
			"to", target,
			"actor", actor.UserID,
		)
		if e.events != nil {
			e.events.BookingStatusChanged(ctx, booking, from)
		}
		return booking, nil
	}

	return nil, apperrors.Conflict("Booking was modified concurrently, please retry")
}

func (e *engine) CancelBooking(ctx context.Context, actor model.Actor, bookingID string, reason string) (*model.Booking, error) {
	return e.Transition(ctx, actor, bookingID, model.StatusCancelled, sanitizer.TrimAndNormalize(reason))
}

func (e *engine) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := e.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (e *engine) GetBookingByReference(ctx context.Context, reference string) (*model.Booking, error) {
	if !refcode.Valid(reference) {
		return nil, apperrors.InvalidInput("Invalid booking reference format")
	}

	booking, err := e.bookings.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", reference)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (e *engine) ListBookingsForResource(ctx context.Context, resourceID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if resourceID == "" {
		return nil, 0, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = e.bookings.CountByResource(ctx, resourceID)
		if errCount != nil {
			e.cfg.Log.Error("Failed to count bookings", "resource_id", resourceID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = e.bookings.FindByResource(ctx, resourceID, limit, offset)
		if errFind != nil {
			e.cfg.Log.Error("Failed to list bookings", "resource_id", resourceID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// RecordPaymentOutcome stores a gateway result against a booking. The
// engine records the fact and nothing else; it does not confirm, cancel
// or refund on the gateway's behalf.
func (e *engine) RecordPaymentOutcome(ctx context.Context, outcome *model.PaymentOutcome) error {
	if err := e.validator.ValidateOutcome(outcome); err != nil {
		return apperrors.Validation("Invalid payment outcome", map[string]any{"error": err.Error()})
	}

	amount, err := outcome.Decimal()
	if err != nil {
		return apperrors.InvalidInput("Payment amount must be a decimal string")
	}

	booking, err := e.GetBooking(ctx, outcome.BookingID)
	if err != nil {
		return err
	}

	status := model.PaymentSucceeded
	if !outcome.Succeeded {
		status = model.PaymentFailed
	}

	record := &model.PaymentRecord{
		ID:         uuid.NewString(),
		BookingID:  booking.ID,
		Amount:     amount,
		Currency:   outcome.Currency,
		Status:     status,
		GatewayRef: outcome.GatewayRef,
		ReportedAt: e.now().UTC().Truncate(time.Millisecond),
	}
	if err := e.payments.Create(ctx, record); err != nil {
		return apperrors.Internal("Failed to record payment outcome", err)
	}

	e.cfg.Log.Info("Payment outcome recorded",
		"booking_id", booking.ID,
		"payment_id", record.ID,
		"status", record.Status,
		"amount", record.Amount,
	)
	return nil
}

// --- Helpers ---

func (e *engine) loadResource(ctx context.Context, resourceID string) (*model.Resource, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	resource, err := e.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", resourceID)
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}
	return resource, nil
}

func (e *engine) sanitizeRequest(req *model.BookingRequest) {
	for i := range req.Passengers {
		req.Passengers[i].Name = sanitizer.NormalizePassengerName(req.Passengers[i].Name)
		if req.Passengers[i].Phone != "" {
			if normalized := sanitizer.NormalizePhone(req.Passengers[i].Phone); normalized != "" {
				req.Passengers[i].Phone = normalized
			}
		}
	}
	for i := range req.AddOns {
		req.AddOns[i].Label = sanitizer.NormalizeAddOnLabel(req.AddOns[i].Label)
	}
}

// bookingWindow normalizes the requested window for the kind. Seat-based
// kinds book an instant, stored as Start == End.
func bookingWindow(req *model.BookingRequest, profile model.KindProfile) model.Window {
	if profile.SeatBased {
		return model.Window{Start: req.Start, End: req.Start}
	}
	return model.Window{Start: req.Start, End: req.End}
}

// compile-time check that the real index satisfies the engine's view
var _ CapacityIndex = (*availability.Index)(nil)

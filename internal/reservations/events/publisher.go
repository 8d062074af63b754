package events

import (
	"context"
	"time"

	"voyara/pkg/kafka"
	"voyara/pkg/logger"
	"voyara/pkg/model"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"

	source = "reservations"
)

// Publisher is an interface for emitting reservation events; the
// concrete kafka.Producer satisfies it and tests substitute a fake.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// BookingEvents emits booking lifecycle events to the booking-events
// topic, keyed by booking ID so consumers see per-booking order. Emission
// is best-effort: failures are logged and never surfaced to the caller,
// because the booking is already durable by the time an event fires.
type BookingEvents struct {
	producer Publisher
	log      *logger.Logger
}

func NewBookingEvents(producer Publisher, log *logger.Logger) *BookingEvents {
	return &BookingEvents{
		producer: producer,
		log:      log,
	}
}

type bookingCreatedPayload struct {
	BookingID    string             `json:"booking_id"`
	Reference    string             `json:"reference"`
	ResourceID   string             `json:"resource_id"`
	ResourceKind model.ResourceKind `json:"resource_kind"`
	RequesterID  string             `json:"requester_id"`
	Quantity     int                `json:"quantity"`
	Window       model.Window       `json:"window"`
	Currency     string             `json:"currency"`
	Total        string             `json:"total"`
	CreatedAt    time.Time          `json:"created_at"`
}

type bookingStatusChangedPayload struct {
	BookingID    string              `json:"booking_id"`
	Reference    string              `json:"reference"`
	ResourceID   string              `json:"resource_id"`
	From         model.BookingStatus `json:"from"`
	To           model.BookingStatus `json:"to"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	OccurredAt   time.Time           `json:"occurred_at"`
}

func (b *BookingEvents) BookingCreated(ctx context.Context, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(bookingCreatedPayload{
			BookingID:    booking.ID,
			Reference:    booking.Reference,
			ResourceID:   booking.ResourceID,
			ResourceKind: booking.ResourceKind,
			RequesterID:  booking.RequesterID,
			Quantity:     booking.Quantity,
			Window:       booking.Window,
			Currency:     booking.Currency,
			Total:        booking.Total.StringFixed(2),
			CreatedAt:    booking.CreatedAt,
		}).
		WithEventType(EventBookingCreated).
		WithSource(source).
		Build()

	if err := b.producer.Publish(ctx, msg); err != nil {
		b.log.Error("Failed to publish booking created event",
			"booking_id", booking.ID,
			"reference", booking.Reference,
			"error", err,
		)
	}
}

func (b *BookingEvents) BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus) {
	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(bookingStatusChangedPayload{
			BookingID:    booking.ID,
			Reference:    booking.Reference,
			ResourceID:   booking.ResourceID,
			From:         from,
			To:           booking.Status,
			CancelReason: booking.CancelReason,
			OccurredAt:   time.Now().UTC(),
		}).
		WithEventType(EventBookingStatusChanged).
		WithSource(source).
		Build()

	if err := b.producer.Publish(ctx, msg); err != nil {
		b.log.Error("Failed to publish status change event",
			"booking_id", booking.ID,
			"from", from,
			"to", booking.Status,
			"error", err,
		)
	}
}

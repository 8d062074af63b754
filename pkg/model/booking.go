package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Active reports whether the booking still occupies capacity on its
// resource. Cancelled and completed bookings no longer count against it.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Window is the booked time range. Flights book a single departure
// instant, expressed as Start == End. Ranges are half-open [Start, End):
// a checkout at T and a check-in at T do not conflict.
type Window struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w Window) IsInstant() bool {
	return w.End.Equal(w.Start)
}

// Passenger is a traveller or guest attached to a booking. Detail records
// are owned by the booking.
type Passenger struct {
	Name  string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
}

// AddOn is a priced extra (catering, transfer) owned by the booking.
type AddOn struct {
	Label    string          `json:"label" validate:"required,min=2,max=100"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"required,min=1,max=50"`
}

// Booking is the reservation record. It is created in StatusPending and
// mutated only through lifecycle transitions, never directly.
type Booking struct {
	ID             string          `json:"id,omitempty"`
	Reference      string          `json:"reference"`
	ResourceID     string          `json:"resource_id"`
	ResourceKind   ResourceKind    `json:"resource_kind"`
	RequesterID    string          `json:"requester_id"`
	Quantity       int             `json:"quantity"`
	Window         Window          `json:"window"`
	Status         BookingStatus   `json:"status"`
	Currency       string          `json:"currency"`
	BasePrice      decimal.Decimal `json:"base_price"`
	ServiceFee     decimal.Decimal `json:"service_fee"`
	AdditionalFees decimal.Decimal `json:"additional_fees"`
	Total          decimal.Decimal `json:"total"`
	Passengers     []Passenger     `json:"passengers,omitempty"`
	AddOns         []AddOn         `json:"add_ons,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
}

// ComputeTotal derives the total from its components. The total is never
// trusted as stored; it is always the sum of the three parts.
func (b *Booking) ComputeTotal() decimal.Decimal {
	return b.BasePrice.Add(b.ServiceFee).Add(b.AdditionalFees)
}

// BookingRequest is the inbound shape for creating a booking. The window
// interpretation depends on the resource kind: flights use Start as the
// departure instant and ignore End.
type BookingRequest struct {
	ResourceID string      `json:"resource_id" validate:"required"`
	Quantity   int         `json:"quantity" validate:"required,min=1,max=500"`
	Start      time.Time   `json:"start" validate:"required"`
	End        time.Time   `json:"end,omitempty"`
	Passengers []Passenger `json:"passengers,omitempty" validate:"omitempty,max=500,dive"`
	AddOns     []AddOn     `json:"add_ons,omitempty" validate:"omitempty,max=50,dive"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ResourceKind string

const (
	KindFlight    ResourceKind = "flight"
	KindYacht     ResourceKind = "yacht"
	KindCar       ResourceKind = "car"
	KindHotelRoom ResourceKind = "hotel_room"
)

// KindProfile carries the per-kind constants that drive availability,
// pricing and cancellation behaviour. Seat-based kinds allocate from a
// seat counter; the others hold an exclusive date range on the unit.
type KindProfile struct {
	ReferencePrefix string
	SeatBased       bool
	CancelLeadTime  time.Duration
	DurationUnit    time.Duration
	UnitLabel       string
}

var kindProfiles = map[ResourceKind]KindProfile{
	KindFlight: {
		ReferencePrefix: "FL",
		SeatBased:       true,
		CancelLeadTime:  24 * time.Hour,
	},
	KindYacht: {
		ReferencePrefix: "YT",
		CancelLeadTime:  7 * 24 * time.Hour,
		DurationUnit:    24 * time.Hour,
		UnitLabel:       "day",
	},
	KindCar: {
		ReferencePrefix: "CR",
		CancelLeadTime:  4 * time.Hour,
		DurationUnit:    time.Hour,
		UnitLabel:       "hour",
	},
	KindHotelRoom: {
		ReferencePrefix: "HT",
		CancelLeadTime:  24 * time.Hour,
		DurationUnit:    24 * time.Hour,
		UnitLabel:       "night",
	},
}

func (k ResourceKind) Valid() bool {
	_, ok := kindProfiles[k]
	return ok
}

func (k ResourceKind) Profile() KindProfile {
	return kindProfiles[k]
}

// ResourceRequest is the admin payload for adding a bookable unit to
// the catalogue. UnitPrice travels as a string so the wire carries no
// binary floats.
type ResourceRequest struct {
	ID        string       `json:"id" validate:"required,min=1,max=100"`
	Kind      ResourceKind `json:"kind" validate:"required"`
	Name      string       `json:"name" validate:"required,min=2,max=200"`
	UnitPrice string       `json:"unit_price" validate:"required"`
	Currency  string       `json:"currency" validate:"required,len=3,uppercase"`
	Capacity  int          `json:"capacity,omitempty" validate:"omitempty,min=1,max=1000"`
}

// Resource is a bookable unit supplied by the catalogue collaborator.
// Capacity is meaningful only for seat-based kinds; date-range kinds are
// exclusive per unit.
type Resource struct {
	ID        string          `json:"id" bson:"_id,omitempty"`
	Kind      ResourceKind    `json:"kind" bson:"kind"`
	Name      string          `json:"name" bson:"name"`
	UnitPrice decimal.Decimal `json:"unit_price" bson:"-"`
	Currency  string          `json:"currency" bson:"currency"`
	Capacity  int             `json:"capacity,omitempty" bson:"capacity"`
	Active    bool            `json:"active" bson:"active"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}

package model

import "time"

// CapacityHold is a provisional allocation created while a booking is
// being built. It debits capacity until it is committed together with the
// booking insert, or released. Holds that outlive ExpiresAt are treated
// as abandoned and swept.
type CapacityHold struct {
	ID         string    `bson:"_id" json:"id"`
	ResourceID string    `bson:"resource_id" json:"resource_id"`
	Quantity   int       `bson:"quantity" json:"quantity"`
	Window     Window    `bson:"window" json:"window"`
	ExpiresAt  time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

func (h *CapacityHold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentRecord is the outcome of a charge as reported by the external
// payment gateway. It references a booking but is not owned by it; the
// engine records outcomes and does not drive the payment flow.
type PaymentRecord struct {
	ID         string          `json:"id"`
	BookingID  string          `json:"booking_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     PaymentStatus   `json:"status"`
	GatewayRef string          `json:"gateway_ref,omitempty"`
	ReportedAt time.Time       `json:"reported_at"`
}

// PaymentOutcome is the gateway's wire shape for an asynchronous result.
type PaymentOutcome struct {
	BookingID  string `json:"booking_id" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
	Currency   string `json:"currency" validate:"required,len=3"`
	Succeeded  bool   `json:"succeeded"`
	GatewayRef string `json:"gateway_ref,omitempty"`
}

// Decimal parses the reported amount. Gateways send amounts as strings to
// avoid binary floating point on the wire.
func (o PaymentOutcome) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(o.Amount)
}

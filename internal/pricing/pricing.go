package pricing

import (
	"voyara/pkg/model"

	"github.com/shopspring/decimal"
)

// serviceFeeRate is the flat platform fee applied to the base price.
var serviceFeeRate = decimal.NewFromFloat(0.03)

// Quote is the price breakdown for a booking. Total always equals
// Base + ServiceFee + AdditionalFees; it is derived, never stored alone.
type Quote struct {
	Base           decimal.Decimal
	ServiceFee     decimal.Decimal
	AdditionalFees decimal.Decimal
	Total          decimal.Decimal
	Currency       string
}

// Compute prices a booking request against a resource. It is a pure
// function of its inputs: same resource, quantity, window and add-ons
// always yield the same quote.
//
// Seat-based kinds price per seat. Range kinds price per duration unit
// (hours for cars, nights for hotel rooms, days for yachts), rounding
// partial units up and never below one unit. The service fee is 3% of
// the base, rounded half-up at two decimal places; intermediate sums are
// never rounded.
func Compute(resource *model.Resource, quantity int, window model.Window, addOns []model.AddOn) Quote {
	profile := resource.Kind.Profile()

	var base decimal.Decimal
	if profile.SeatBased {
		base = resource.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	} else {
		base = resource.UnitPrice.Mul(decimal.NewFromInt(durationUnits(window, profile)))
	}

	serviceFee := base.Mul(serviceFeeRate).Round(2)

	additionalFees := decimal.Zero
	for _, addOn := range addOns {
		additionalFees = additionalFees.Add(addOn.Price.Mul(decimal.NewFromInt(int64(addOn.Quantity))))
	}

	return Quote{
		Base:           base,
		ServiceFee:     serviceFee,
		AdditionalFees: additionalFees,
		Total:          base.Add(serviceFee).Add(additionalFees),
		Currency:       resource.Currency,
	}
}

// durationUnits converts the booked window into billable units for the
// kind. Partial units round up; every booking is billed at least one.
func durationUnits(window model.Window, profile model.KindProfile) int64 {
	if profile.DurationUnit <= 0 {
		return 1
	}
	d := window.Duration()
	if d <= 0 {
		return 1
	}
	units := int64((d + profile.DurationUnit - 1) / profile.DurationUnit)
	if units < 1 {
		units = 1
	}
	return units
}

package pricing

import (
	"testing"
	"time"

	"voyara/pkg/model"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestCompute_SeatBased(t *testing.T) {
	resource := &model.Resource{
		Kind:      model.KindFlight,
		UnitPrice: mustDecimal(t, "1000.00"),
		Currency:  "USD",
		Capacity:  8,
	}
	departure := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	window := model.Window{Start: departure, End: departure}

	addOns := []model.AddOn{
		{Label: "catering", Price: mustDecimal(t, "125.25"), Quantity: 2},
	}

	quote := Compute(resource, 6, window, addOns)

	if got, want := quote.Base, mustDecimal(t, "6000.00"); !got.Equal(want) {
		t.Errorf("Base = %s, want %s", got, want)
	}
	if got, want := quote.ServiceFee, mustDecimal(t, "180.00"); !got.Equal(want) {
		t.Errorf("ServiceFee = %s, want %s", got, want)
	}
	if got, want := quote.AdditionalFees, mustDecimal(t, "250.50"); !got.Equal(want) {
		t.Errorf("AdditionalFees = %s, want %s", got, want)
	}
	if got, want := quote.Total, mustDecimal(t, "6430.50"); !got.Equal(want) {
		t.Errorf("Total = %s, want %s", got, want)
	}
	if quote.Currency != "USD" {
		t.Errorf("Currency = %s, want USD", quote.Currency)
	}
}

func TestCompute_RangeBasedUnits(t *testing.T) {
	start := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		kind     model.ResourceKind
		price    string
		end      time.Time
		wantBase string
	}{
		{
			name:     "hotel two nights",
			kind:     model.KindHotelRoom,
			price:    "350.00",
			end:      start.Add(48 * time.Hour),
			wantBase: "700.00",
		},
		{
			name:     "car partial hour rounds up",
			kind:     model.KindCar,
			price:    "60.00",
			end:      start.Add(90 * time.Minute),
			wantBase: "120.00",
		},
		{
			name:     "yacht three days",
			kind:     model.KindYacht,
			price:    "12000.00",
			end:      start.Add(3 * 24 * time.Hour),
			wantBase: "36000.00",
		},
		{
			name:     "zero-length window bills one unit",
			kind:     model.KindCar,
			price:    "60.00",
			end:      start,
			wantBase: "60.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource := &model.Resource{
				Kind:      tt.kind,
				UnitPrice: mustDecimal(t, tt.price),
				Currency:  "USD",
			}
			quote := Compute(resource, 1, model.Window{Start: start, End: tt.end}, nil)
			if want := mustDecimal(t, tt.wantBase); !quote.Base.Equal(want) {
				t.Errorf("Base = %s, want %s", quote.Base, want)
			}
		})
	}
}

func TestCompute_ServiceFeeRoundsHalfUp(t *testing.T) {
	// 8.50 * 0.03 = 0.255, which must round up to 0.26.
	resource := &model.Resource{
		Kind:      model.KindFlight,
		UnitPrice: mustDecimal(t, "8.50"),
		Currency:  "USD",
	}
	window := model.Window{}

	quote := Compute(resource, 1, window, nil)
	if want := mustDecimal(t, "0.26"); !quote.ServiceFee.Equal(want) {
		t.Errorf("ServiceFee = %s, want %s", quote.ServiceFee, want)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	resource := &model.Resource{
		Kind:      model.KindHotelRoom,
		UnitPrice: mustDecimal(t, "412.37"),
		Currency:  "EUR",
	}
	start := time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)
	window := model.Window{Start: start, End: start.Add(72 * time.Hour)}
	addOns := []model.AddOn{
		{Label: "airport transfer", Price: mustDecimal(t, "85.00"), Quantity: 1},
		{Label: "breakfast", Price: mustDecimal(t, "22.50"), Quantity: 3},
	}

	first := Compute(resource, 2, window, addOns)
	second := Compute(resource, 2, window, addOns)

	if !first.Total.Equal(second.Total) || !first.ServiceFee.Equal(second.ServiceFee) {
		t.Errorf("Compute not deterministic: %+v vs %+v", first, second)
	}

	sum := first.Base.Add(first.ServiceFee).Add(first.AdditionalFees)
	if !first.Total.Equal(sum) {
		t.Errorf("Total %s does not equal component sum %s", first.Total, sum)
	}
}

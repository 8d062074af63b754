package policy

import (
	"testing"
	"time"

	"voyara/pkg/model"
)

func bookingFor(kind model.ResourceKind, status model.BookingStatus, start time.Time) *model.Booking {
	return &model.Booking{
		ResourceKind: kind,
		Status:       status,
		Window:       model.Window{Start: start, End: start.Add(24 * time.Hour)},
	}
}

func TestCanCancel_FlightLeadTime(t *testing.T) {
	departure := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	booking := bookingFor(model.KindFlight, model.StatusConfirmed, departure)

	if !CanCancel(booking, departure.Add(-30*time.Hour)) {
		t.Error("expected cancellation allowed 30 hours before departure")
	}
	if CanCancel(booking, departure.Add(-23*time.Hour)) {
		t.Error("expected cancellation rejected 23 hours before departure")
	}
}

func TestCanCancel_LeadTimeBoundary(t *testing.T) {
	// Exactly at the deadline is too late: now >= start - leadTime closes
	// the window.
	start := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := bookingFor(model.KindCar, model.StatusPending, start)

	deadline := start.Add(-4 * time.Hour)
	if CanCancel(booking, deadline) {
		t.Error("expected cancellation rejected exactly at deadline")
	}
	if !CanCancel(booking, deadline.Add(-time.Second)) {
		t.Error("expected cancellation allowed one second before deadline")
	}
}

func TestCanCancel_PerKindLeadTimes(t *testing.T) {
	start := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		kind model.ResourceKind
		lead time.Duration
	}{
		{model.KindFlight, 24 * time.Hour},
		{model.KindYacht, 7 * 24 * time.Hour},
		{model.KindCar, 4 * time.Hour},
		{model.KindHotelRoom, 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			booking := bookingFor(tt.kind, model.StatusPending, start)

			justBefore := start.Add(-tt.lead).Add(-time.Minute)
			justAfter := start.Add(-tt.lead).Add(time.Minute)

			if !CanCancel(booking, justBefore) {
				t.Errorf("%s: expected allowed %s before start", tt.kind, tt.lead+time.Minute)
			}
			if CanCancel(booking, justAfter) {
				t.Errorf("%s: expected rejected inside lead time", tt.kind)
			}
		})
	}
}

func TestCanCancel_TerminalStatuses(t *testing.T) {
	// Lead time is irrelevant once the booking left a cancellable status.
	start := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, status := range []model.BookingStatus{model.StatusCancelled, model.StatusCompleted} {
		booking := bookingFor(model.KindYacht, status, start)
		if CanCancel(booking, now) {
			t.Errorf("expected cancellation rejected for status %s", status)
		}
	}
}

func TestEvaluate_Deadline(t *testing.T) {
	start := time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC)
	booking := bookingFor(model.KindHotelRoom, model.StatusConfirmed, start)

	decision := Evaluate(booking, start.Add(-48*time.Hour))
	if !decision.Allowed {
		t.Fatal("expected allowed")
	}
	if want := start.Add(-24 * time.Hour); !decision.Deadline.Equal(want) {
		t.Errorf("Deadline = %s, want %s", decision.Deadline, want)
	}
	if decision.LeadTime != 24*time.Hour {
		t.Errorf("LeadTime = %s, want 24h", decision.LeadTime)
	}
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"voyara/internal/availability"
	reserrors "voyara/internal/reservations/errors"
	"voyara/internal/reservations/validator"
	"voyara/pkg/config"
	mongotx "voyara/pkg/db/mongo"
	apperrors "voyara/pkg/errors"
	"voyara/pkg/logger"
	"voyara/pkg/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// --- In-memory fakes ---

type fakeBookingRepo struct {
	mu           sync.Mutex
	byID         map[string]*model.Booking
	createErr    error
	takenReports int // ExistsByReference reports taken this many times
	conflictOnce bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[string]*model.Booking)}
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, b := range r.byID {
		if b.Reference == booking.Reference {
			return reserrors.ErrReferenceTaken
		}
	}
	booking.ID = primitive.NewObjectID().Hex()
	copied := *booking
	r.byID[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, reserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.byID {
		if b.Reference == reference {
			copied := *b
			return &copied, nil
		}
	}
	return nil, reserrors.ErrNotFound
}

func (r *fakeBookingRepo) FindByResource(_ context.Context, resourceID string, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Booking
	for _, b := range r.byID {
		if b.ResourceID == resourceID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByResource(_ context.Context, resourceID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.byID {
		if b.ResourceID == resourceID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id string, from, to model.BookingStatus, reason string, cancelledAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictOnce {
		r.conflictOnce = false
		return reserrors.ErrStatusConflict
	}
	b, ok := r.byID[id]
	if !ok || b.Status != from {
		return reserrors.ErrStatusConflict
	}
	b.Status = to
	if to == model.StatusCancelled {
		b.CancelReason = reason
		b.CancelledAt = cancelledAt
	}
	return nil
}

func (r *fakeBookingRepo) ExistsByReference(_ context.Context, reference string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.takenReports > 0 {
		r.takenReports--
		return true, nil
	}
	for _, b := range r.byID {
		if b.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) ActiveSeatCount(_ context.Context, resourceID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, b := range r.byID {
		if b.ResourceID == resourceID && b.Status.Active() {
			total += b.Quantity
		}
	}
	return total, nil
}

func (r *fakeBookingRepo) ActiveWindows(_ context.Context, resourceID string) ([]model.Window, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var windows []model.Window
	for _, b := range r.byID {
		if b.ResourceID == resourceID && b.Status.Active() {
			windows = append(windows, b.Window)
		}
	}
	return windows, nil
}

func (r *fakeBookingRepo) ExecuteTransaction(_ context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(context.Background(), nil))
}

type fakeHoldStore struct {
	mu    sync.Mutex
	holds map[string]*model.CapacityHold
}

func newFakeHoldStore() *fakeHoldStore {
	return &fakeHoldStore{holds: make(map[string]*model.CapacityHold)}
}

func (s *fakeHoldStore) Insert(_ context.Context, hold *model.CapacityHold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *hold
	s.holds[hold.ID] = &copied
	return nil
}

func (s *fakeHoldStore) Delete(_ context.Context, holdID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.holds, holdID)
	return nil
}

func (s *fakeHoldStore) ActiveForResource(_ context.Context, resourceID string, now time.Time) ([]*model.CapacityHold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.CapacityHold
	for _, h := range s.holds {
		if h.ResourceID == resourceID && !h.Expired(now) {
			copied := *h
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeHoldStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, h := range s.holds {
		if h.Expired(now) {
			delete(s.holds, id)
			removed++
		}
	}
	return removed, nil
}

func (s *fakeHoldStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.holds)
}

type fakeResourceRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Resource
}

func newFakeResourceRepo(resources ...*model.Resource) *fakeResourceRepo {
	r := &fakeResourceRepo{byID: make(map[string]*model.Resource)}
	for _, res := range resources {
		r.byID[res.ID] = res
	}
	return r
}

func (r *fakeResourceRepo) Create(_ context.Context, resource *model.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[resource.ID]; exists {
		return reserrors.ErrDuplicateID
	}
	r.byID[resource.ID] = resource
	return nil
}

func (r *fakeResourceRepo) FindByID(_ context.Context, id string) (*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok {
		return nil, reserrors.ErrNotFound
	}
	copied := *res
	return &copied, nil
}

func (r *fakeResourceRepo) FindAll(_ context.Context, limit int, offset int64) ([]*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Resource
	for _, res := range r.byID {
		copied := *res
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeResourceRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

type fakePaymentRepo struct {
	mu      sync.Mutex
	records []*model.PaymentRecord
}

func (r *fakePaymentRepo) Create(_ context.Context, record *model.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.records = append(r.records, &copied)
	return nil
}

func (r *fakePaymentRepo) FindByBooking(_ context.Context, bookingID string) ([]*model.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PaymentRecord
	for _, rec := range r.records {
		if rec.BookingID == bookingID {
			copied := *rec
			out = append(out, &copied)
		}
	}
	return out, nil
}

type recordingEvents struct {
	mu      sync.Mutex
	created []string
	changed []string
}

func (e *recordingEvents) BookingCreated(_ context.Context, booking *model.Booking) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.created = append(e.created, booking.ID)
}

func (e *recordingEvents) BookingStatusChanged(_ context.Context, booking *model.Booking, from model.BookingStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.changed = append(e.changed, string(from)+"->"+string(booking.Status))
}

// --- Fixture ---

type fixture struct {
	engine    *engine
	bookings  *fakeBookingRepo
	holds     *fakeHoldStore
	resources *fakeResourceRepo
	payments  *fakePaymentRepo
	events    *recordingEvents
	now       time.Time
}

func newFixture(t *testing.T, resources ...*model.Resource) *fixture {
	t.Helper()

	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	cfg := &config.Config{
		ReferenceMaxAttempts:    5,
		StatusUpdateMaxAttempts: 3,
		Log:                     log,
	}

	f := &fixture{
		bookings:  newFakeBookingRepo(),
		holds:     newFakeHoldStore(),
		resources: newFakeResourceRepo(resources...),
		payments:  &fakePaymentRepo{},
		events:    &recordingEvents{},
		now:       time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	index := availability.New(f.holds, f.bookings, 2*time.Minute, log).
		WithClock(func() time.Time { return f.now })

	eng := NewReservationEngine(
		f.bookings,
		f.resources,
		f.payments,
		index,
		validator.NewBookingValidator(log),
		f.events,
		cfg,
	).(*engine)
	eng.now = func() time.Time { return f.now }
	f.engine = eng
	return f
}

func flightResource(capacity int) *model.Resource {
	return &model.Resource{
		ID:        "flight-1",
		Kind:      model.KindFlight,
		Name:      "LHR to DXB charter",
		UnitPrice: decimal.RequireFromString("1000.00"),
		Currency:  "USD",
		Capacity:  capacity,
		Active:    true,
	}
}

func hotelResource() *model.Resource {
	return &model.Resource{
		ID:        "room-1",
		Kind:      model.KindHotelRoom,
		Name:      "Royal suite",
		UnitPrice: decimal.RequireFromString("900.00"),
		Currency:  "USD",
		Active:    true,
	}
}

func customer(id string) model.Actor {
	return model.Actor{UserID: id, Role: model.RoleCustomer}
}

// --- Tests ---

func TestCreateBooking_Success(t *testing.T) {
	f := newFixture(t, flightResource(8))
	ctx := context.Background()

	departure := f.now.Add(72 * time.Hour)
	booking, err := f.engine.CreateBooking(ctx, customer("user-1"), &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   6,
		Start:      departure,
		AddOns: []model.AddOn{
			{Label: "Catering", Price: decimal.RequireFromString("125.25"), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if booking.Status != model.StatusPending {
		t.Errorf("Status = %s, want pending", booking.Status)
	}
	if len(booking.Reference) != 10 || booking.Reference[:2] != "FL" {
		t.Errorf("Reference = %q, want FL prefix and length 10", booking.Reference)
	}
	if want := decimal.RequireFromString("6430.50"); !booking.Total.Equal(want) {
		t.Errorf("Total = %s, want %s", booking.Total, want)
	}
	if !booking.Total.Equal(booking.BasePrice.Add(booking.ServiceFee).Add(booking.AdditionalFees)) {
		t.Error("Total does not equal sum of components")
	}

	// The hold must be gone: committed with the insert, not left live.
	if f.holds.count() != 0 {
		t.Errorf("live holds = %d, want 0", f.holds.count())
	}
	if len(f.events.created) != 1 {
		t.Errorf("created events = %d, want 1", len(f.events.created))
	}
}

func TestCreateBooking_CapacityScenario(t *testing.T) {
	f := newFixture(t, flightResource(8))
	ctx := context.Background()
	actor := customer("user-1")
	departure := f.now.Add(72 * time.Hour)

	request := func(quantity int) (*model.Booking, error) {
		return f.engine.CreateBooking(ctx, actor, &model.BookingRequest{
			ResourceID: "flight-1",
			Quantity:   quantity,
			Start:      departure,
		})
	}

	if _, err := request(6); err != nil {
		t.Fatalf("CreateBooking(6): %v", err)
	}
	if _, err := request(3); !apperrors.IsCode(err, apperrors.CodeInsufficientCapacity) {
		t.Fatalf("CreateBooking(3) = %v, want INSUFFICIENT_CAPACITY", err)
	}
	if _, err := request(2); err != nil {
		t.Fatalf("CreateBooking(2): %v", err)
	}
	if _, err := request(1); !apperrors.IsCode(err, apperrors.CodeInsufficientCapacity) {
		t.Fatalf("CreateBooking(1) at full = %v, want INSUFFICIENT_CAPACITY", err)
	}
}

func TestCreateBooking_NoDoubleAllocationUnderConcurrency(t *testing.T) {
	f := newFixture(t, flightResource(8))
	ctx := context.Background()
	departure := f.now.Add(72 * time.Hour)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.engine.CreateBooking(ctx, customer("user-1"), &model.BookingRequest{
				ResourceID: "flight-1",
				Quantity:   5,
				Start:      departure,
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case apperrors.IsCode(err, apperrors.CodeInsufficientCapacity):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}

	total, _ := f.bookings.ActiveSeatCount(ctx, "flight-1")
	if total > 8 {
		t.Errorf("active seats = %d, exceeds resource capacity", total)
	}
}

func TestCreateBooking_HotelOverlap(t *testing.T) {
	f := newFixture(t, hotelResource())
	ctx := context.Background()
	actor := customer("user-1")

	day := func(d int) time.Time {
		return time.Date(2026, 7, d, 15, 0, 0, 0, time.UTC)
	}

	book := func(start, end time.Time) (*model.Booking, error) {
		return f.engine.CreateBooking(ctx, actor, &model.BookingRequest{
			ResourceID: "room-1",
			Quantity:   2,
			Start:      start,
			End:        end,
		})
	}

	if _, err := book(day(10), day(12)); err != nil {
		t.Fatalf("book [10,12): %v", err)
	}
	if _, err := book(day(12), day(14)); err != nil {
		t.Fatalf("back-to-back book [12,14): %v", err)
	}
	if _, err := book(day(11), day(13)); !apperrors.IsCode(err, apperrors.CodeInsufficientCapacity) {
		t.Fatalf("overlapping book [11,13) = %v, want INSUFFICIENT_CAPACITY", err)
	}
}

func TestCreateBooking_ResourceErrors(t *testing.T) {
	inactive := flightResource(8)
	inactive.ID = "flight-grounded"
	inactive.Active = false

	f := newFixture(t, inactive)
	ctx := context.Background()
	departure := f.now.Add(72 * time.Hour)

	_, err := f.engine.CreateBooking(ctx, customer("user-1"), &model.BookingRequest{
		ResourceID: "nonexistent",
		Quantity:   1,
		Start:      departure,
	})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown resource = %v, want NOT_FOUND", err)
	}

	_, err = f.engine.CreateBooking(ctx, customer("user-1"), &model.BookingRequest{
		ResourceID: "flight-grounded",
		Quantity:   1,
		Start:      departure,
	})
	if !apperrors.IsCode(err, apperrors.CodeResourceUnavailable) {
		t.Errorf("inactive resource = %v, want RESOURCE_UNAVAILABLE", err)
	}
}

func TestCreateBooking_ReferenceCollisionRetried(t *testing.T) {
	f := newFixture(t, flightResource(8))
	f.bookings.takenReports = 2 // first two generated references collide
	ctx := context.Background()

	booking, err := f.engine.CreateBooking(ctx, customer("user-1"), &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   1,
		Start:      f.now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.Reference == "" {
		t.Error("expected a reference after collision retries")
	}
}

func TestCreateBooking_PersistFailureReleasesHold(t *testing.T) {
	f := newFixture(t, flightResource(8))
	f.bookings.createErr = context.DeadlineExceeded
	ctx := context.Background()

	_, err := f.engine.CreateBooking(ctx, customer("user-1"), &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   2,
		Start:      f.now.Add(72 * time.Hour),
	})
	if err == nil {
		t.Fatal("expected create to fail")
	}
	if f.holds.count() != 0 {
		t.Errorf("live holds = %d after failure, want 0", f.holds.count())
	}

	// Capacity must be fully restored.
	f.bookings.createErr = nil
	if _, err := f.engine.CreateBooking(ctx, customer("user-1"), &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   8,
		Start:      f.now.Add(72 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateBooking after recovery: %v", err)
	}
}

func TestCancelBooking_ReleasesCapacityOnce(t *testing.T) {
	f := newFixture(t, flightResource(8))
	ctx := context.Background()
	owner := customer("user-1")
	departure := f.now.Add(30 * time.Hour)

	booking, err := f.engine.CreateBooking(ctx, owner, &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   8,
		Start:      departure,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	// Resource is now full.
	if _, err := f.engine.CreateBooking(ctx, owner, &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   1,
		Start:      departure,
	}); !apperrors.IsCode(err, apperrors.CodeInsufficientCapacity) {
		t.Fatalf("expected full flight, got %v", err)
	}

	cancelled, err := f.engine.CancelBooking(ctx, owner, booking.ID, "change of plans")
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Errorf("Status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancelReason != "change of plans" || cancelled.CancelledAt == nil {
		t.Error("cancellation reason and timestamp must be recorded")
	}

	// Capacity came back.
	if _, err := f.engine.CreateBooking(ctx, owner, &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   8,
		Start:      departure,
	}); err != nil {
		t.Fatalf("CreateBooking after cancel: %v", err)
	}

	// A second cancel is a state error, not a double release.
	if _, err := f.engine.CancelBooking(ctx, owner, booking.ID, "again"); !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("second cancel = %v, want INVALID_TRANSITION", err)
	}
}

func TestCancelBooking_WindowClosed(t *testing.T) {
	f := newFixture(t, flightResource(8))
	ctx := context.Background()
	owner := customer("user-1")

	// Created 30 hours out; cancellable now, not at T-23h.
	booking, err := f.engine.CreateBooking(ctx, owner, &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   1,
		Start:      f.now.Add(30 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	f.now = f.now.Add(7 * time.Hour) // 23h before departure

	_, err = f.engine.CancelBooking(ctx, owner, booking.ID, "too slow")
	if !apperrors.IsCode(err, apperrors.CodeCancellationWindowClosed) {
		t.Fatalf("CancelBooking = %v, want CANCELLATION_WINDOW_CLOSED", err)
	}

	// Still confirmed-able: the booking stayed pending.
	got, err := f.engine.GetBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if got.Status != model.StatusPending {
		t.Errorf("Status = %s, want pending", got.Status)
	}
}

func TestTransition_PrivilegedFlow(t *testing.T) {
	f := newFixture(t, flightResource(8))
	ctx := context.Background()
	owner := customer("user-1")
	operator := model.Actor{UserID: "op-1", Role: model.RoleOperator, OwnedResourceIDs: []string{"flight-1"}}

	booking, err := f.engine.CreateBooking(ctx, owner, &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   2,
		Start:      f.now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	// The owner cannot confirm their own booking.
	if _, err := f.engine.Transition(ctx, owner, booking.ID, model.StatusConfirmed, ""); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("owner confirm = %v, want FORBIDDEN", err)
	}

	// Pending cannot jump straight to completed.
	if _, err := f.engine.Transition(ctx, operator, booking.ID, model.StatusCompleted, ""); !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("pending->completed = %v, want INVALID_TRANSITION", err)
	}

	confirmed, err := f.engine.Transition(ctx, operator, booking.ID, model.StatusConfirmed, "")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != model.StatusConfirmed {
		t.Errorf("Status = %s, want confirmed", confirmed.Status)
	}

	completed, err := f.engine.Transition(ctx, operator, booking.ID, model.StatusCompleted, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != model.StatusCompleted {
		t.Errorf("Status = %s, want completed", completed.Status)
	}

	// Completed is terminal.
	if _, err := f.engine.Transition(ctx, operator, booking.ID, model.StatusCancelled, ""); !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("completed->cancelled = %v, want INVALID_TRANSITION", err)
	}

	if len(f.events.changed) != 2 {
		t.Errorf("status change events = %d, want 2", len(f.events.changed))
	}
}

func TestTransition_ConcurrentConflictRetried(t *testing.T) {
	f := newFixture(t, flightResource(8))
	ctx := context.Background()
	operator := model.Actor{UserID: "op-1", Role: model.RoleOperator, OwnedResourceIDs: []string{"flight-1"}}

	booking, err := f.engine.CreateBooking(ctx, customer("user-1"), &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   1,
		Start:      f.now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	// First optimistic update loses; the engine reloads and retries.
	f.bookings.conflictOnce = true

	confirmed, err := f.engine.Transition(ctx, operator, booking.ID, model.StatusConfirmed, "")
	if err != nil {
		t.Fatalf("Transition after conflict: %v", err)
	}
	if confirmed.Status != model.StatusConfirmed {
		t.Errorf("Status = %s, want confirmed", confirmed.Status)
	}
}

func TestGetBookingByReference(t *testing.T) {
	f := newFixture(t, flightResource(8))
	ctx := context.Background()

	booking, err := f.engine.CreateBooking(ctx, customer("user-1"), &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   1,
		Start:      f.now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	got, err := f.engine.GetBookingByReference(ctx, booking.Reference)
	if err != nil {
		t.Fatalf("GetBookingByReference: %v", err)
	}
	if got.ID != booking.ID {
		t.Errorf("ID = %s, want %s", got.ID, booking.ID)
	}

	if _, err := f.engine.GetBookingByReference(ctx, "not-a-ref"); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("bad reference = %v, want INVALID_INPUT", err)
	}
}

func TestRecordPaymentOutcome(t *testing.T) {
	f := newFixture(t, flightResource(8))
	ctx := context.Background()

	booking, err := f.engine.CreateBooking(ctx, customer("user-1"), &model.BookingRequest{
		ResourceID: "flight-1",
		Quantity:   1,
		Start:      f.now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	outcome := &model.PaymentOutcome{
		BookingID:  booking.ID,
		Amount:     "1030.00",
		Currency:   "USD",
		Succeeded:  true,
		GatewayRef: "ch_123",
	}
	if err := f.engine.RecordPaymentOutcome(ctx, outcome); err != nil {
		t.Fatalf("RecordPaymentOutcome: %v", err)
	}

	records, err := f.payments.FindByBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("FindByBooking: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("payment records = %d, want 1", len(records))
	}
	if records[0].Status != model.PaymentSucceeded {
		t.Errorf("Status = %s, want succeeded", records[0].Status)
	}
	if !records[0].Amount.Equal(decimal.RequireFromString("1030.00")) {
		t.Errorf("Amount = %s, want 1030.00", records[0].Amount)
	}

	// An outcome against an unknown booking surfaces as not found.
	unknown := &model.PaymentOutcome{
		BookingID: primitive.NewObjectID().Hex(),
		Amount:    "10.00",
		Currency:  "USD",
	}
	if err := f.engine.RecordPaymentOutcome(ctx, unknown); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown booking = %v, want NOT_FOUND", err)
	}
}

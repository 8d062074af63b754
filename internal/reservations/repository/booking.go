package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reserrors "voyara/internal/reservations/errors"
	"voyara/pkg/config"
	mongotx "voyara/pkg/db/mongo"
	"voyara/pkg/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BookingCollection = "Bookings"
)

var activeStatuses = []string{string(model.StatusPending), string(model.StatusConfirmed)}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByReference(ctx context.Context, reference string) (*model.Booking, error)
	FindByResource(ctx context.Context, resourceID string, limit int, offset int64) ([]*model.Booking, error)
	CountByResource(ctx context.Context, resourceID string) (int64, error)
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus, reason string, cancelledAt *time.Time) error
	ExistsByReference(ctx context.Context, reference string) (bool, error)
	ActiveSeatCount(ctx context.Context, resourceID string) (int, error)
	ActiveWindows(ctx context.Context, resourceID string) ([]model.Window, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

// Monetary amounts are persisted as decimal strings; BSON has no exact
// decimal type that shopspring round-trips losslessly without an adapter.
type bookingDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Reference      string             `bson:"reference"`
	ResourceID     string             `bson:"resource_id"`
	ResourceKind   string             `bson:"resource_kind"`
	RequesterID    string             `bson:"requester_id"`
	Quantity       int                `bson:"quantity"`
	Start          time.Time          `bson:"start"`
	End            time.Time          `bson:"end"`
	Status         string             `bson:"status"`
	Currency       string             `bson:"currency"`
	BasePrice      string             `bson:"base_price"`
	ServiceFee     string             `bson:"service_fee"`
	AdditionalFees string             `bson:"additional_fees"`
	Total          string             `bson:"total"`
	Passengers     []model.Passenger  `bson:"passengers,omitempty"`
	AddOns         []addOnDoc         `bson:"add_ons,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	CancelReason   string             `bson:"cancel_reason,omitempty"`
	CancelledAt    *time.Time         `bson:"cancelled_at,omitempty"`
}

type addOnDoc struct {
	Label    string `bson:"label"`
	Price    string `bson:"price"`
	Quantity int    `bson:"quantity"`
}

func toBookingDoc(b *model.Booking) *bookingDoc {
	doc := &bookingDoc{
		Reference:      b.Reference,
		ResourceID:     b.ResourceID,
		ResourceKind:   string(b.ResourceKind),
		RequesterID:    b.RequesterID,
		Quantity:       b.Quantity,
		Start:          b.Window.Start,
		End:            b.Window.End,
		Status:         string(b.Status),
		Currency:       b.Currency,
		BasePrice:      b.BasePrice.String(),
		ServiceFee:     b.ServiceFee.String(),
		AdditionalFees: b.AdditionalFees.String(),
		Total:          b.Total.String(),
		Passengers:     b.Passengers,
		CreatedAt:      b.CreatedAt,
		CancelReason:   b.CancelReason,
		CancelledAt:    b.CancelledAt,
	}
	for _, a := range b.AddOns {
		doc.AddOns = append(doc.AddOns, addOnDoc{
			Label:    a.Label,
			Price:    a.Price.String(),
			Quantity: a.Quantity,
		})
	}
	return doc
}

func (d *bookingDoc) toModel() (*model.Booking, error) {
	base, err := decimal.NewFromString(d.BasePrice)
	if err != nil {
		return nil, fmt.Errorf("decoding base price: %w", err)
	}
	serviceFee, err := decimal.NewFromString(d.ServiceFee)
	if err != nil {
		return nil, fmt.Errorf("decoding service fee: %w", err)
	}
	additionalFees, err := decimal.NewFromString(d.AdditionalFees)
	if err != nil {
		return nil, fmt.Errorf("decoding additional fees: %w", err)
	}
	total, err := decimal.NewFromString(d.Total)
	if err != nil {
		return nil, fmt.Errorf("decoding total: %w", err)
	}

	booking := &model.Booking{
		ID:             d.ID.Hex(),
		Reference:      d.Reference,
		ResourceID:     d.ResourceID,
		ResourceKind:   model.ResourceKind(d.ResourceKind),
		RequesterID:    d.RequesterID,
		Quantity:       d.Quantity,
		Window:         model.Window{Start: d.Start, End: d.End},
		Status:         model.BookingStatus(d.Status),
		Currency:       d.Currency,
		BasePrice:      base,
		ServiceFee:     serviceFee,
		AdditionalFees: additionalFees,
		Total:          total,
		Passengers:     d.Passengers,
		CreatedAt:      d.CreatedAt,
		CancelReason:   d.CancelReason,
		CancelledAt:    d.CancelledAt,
	}
	for _, a := range d.AddOns {
		price, err := decimal.NewFromString(a.Price)
		if err != nil {
			return nil, fmt.Errorf("decoding add-on price: %w", err)
		}
		booking.AddOns = append(booking.AddOns, model.AddOn{
			Label:    a.Label,
			Price:    price,
			Quantity: a.Quantity,
		})
	}
	return booking, nil
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(BookingCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc := toBookingDoc(booking)
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reserrors.ErrReferenceTaken
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	var doc bookingDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return doc.toModel()
}

func (r *mongoBookingRepository) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc bookingDoc
	err := r.collection.FindOne(ctx, bson.M{"reference": reference}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}

	return doc.toModel()
}

func (r *mongoBookingRepository) FindByResource(ctx context.Context, resourceID string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"resource_id": resourceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]*model.Booking, 0, len(docs))
	for i := range docs {
		booking, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByResource(ctx context.Context, resourceID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"resource_id": resourceID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// UpdateStatus flips the status only if the booking is still in the
// expected one. A zero match count means another writer got there first;
// the caller reloads and decides whether the transition is still legal.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus, reason string, cancelledAt *time.Time) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	set := bson.M{"status": string(to)}
	if to == model.StatusCancelled {
		set["cancel_reason"] = reason
		set["cancelled_at"] = cancelledAt
	}

	filter := bson.M{"_id": objectID, "status": string(from)}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return reserrors.ErrStatusConflict
	}
	return nil
}

func (r *mongoBookingRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"reference": reference}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check reference: %w", err)
	}
	return count > 0, nil
}

// ActiveSeatCount sums the quantities of pending and confirmed bookings
// for a resource. Display use only outside the availability index.
func (r *mongoBookingRepository) ActiveSeatCount(ctx context.Context, resourceID string) (int, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"resource_id": resourceID,
			"status":      bson.M{"$in": activeStatuses},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$quantity"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum active seats: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode seat count: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (r *mongoBookingRepository) ActiveWindows(ctx context.Context, resourceID string) ([]model.Window, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"resource_id": resourceID,
		"status":      bson.M{"$in": activeStatuses},
	}
	opts := options.Find().SetProjection(bson.M{"start": 1, "end": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active windows: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Start time.Time `bson:"start"`
		End   time.Time `bson:"end"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode active windows: %w", err)
	}

	windows := make([]model.Window, 0, len(docs))
	for _, d := range docs {
		windows = append(windows, model.Window{Start: d.Start, End: d.End})
	}
	return windows, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"voyara/pkg/config"
	"voyara/pkg/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PaymentCollection = "Payments"
)

type PaymentRepository interface {
	Create(ctx context.Context, record *model.PaymentRecord) error
	FindByBooking(ctx context.Context, bookingID string) ([]*model.PaymentRecord, error)
}

type paymentDoc struct {
	ID         string    `bson:"_id"`
	BookingID  string    `bson:"booking_id"`
	Amount     string    `bson:"amount"`
	Currency   string    `bson:"currency"`
	Status     string    `bson:"status"`
	GatewayRef string    `bson:"gateway_ref,omitempty"`
	ReportedAt time.Time `bson:"reported_at"`
}

type mongoPaymentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPaymentRepository(cfg *config.Config) PaymentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPaymentRepository{
		cfg:        cfg,
		collection: db.Collection(PaymentCollection),
	}
}

func (r *mongoPaymentRepository) Create(ctx context.Context, record *model.PaymentRecord) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc := &paymentDoc{
		ID:         record.ID,
		BookingID:  record.BookingID,
		Amount:     record.Amount.String(),
		Currency:   record.Currency,
		Status:     string(record.Status),
		GatewayRef: record.GatewayRef,
		ReportedAt: record.ReportedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

func (r *mongoPaymentRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.PaymentRecord, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "reported_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find payments: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []paymentDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}

	records := make([]*model.PaymentRecord, 0, len(docs))
	for _, d := range docs {
		amount, err := decimal.NewFromString(d.Amount)
		if err != nil {
			return nil, fmt.Errorf("decoding payment amount: %w", err)
		}
		records = append(records, &model.PaymentRecord{
			ID:         d.ID,
			BookingID:  d.BookingID,
			Amount:     amount,
			Currency:   d.Currency,
			Status:     model.PaymentStatus(d.Status),
			GatewayRef: d.GatewayRef,
			ReportedAt: d.ReportedAt,
		})
	}
	return records, nil
}

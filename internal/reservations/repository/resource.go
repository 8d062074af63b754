package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reserrors "voyara/internal/reservations/errors"
	"voyara/pkg/config"
	"voyara/pkg/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ResourceCollection = "Resources"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *model.Resource) error
	FindByID(ctx context.Context, id string) (*model.Resource, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Resource, error)
	Count(ctx context.Context) (int64, error)
}

type resourceDoc struct {
	ID        string    `bson:"_id"`
	Kind      string    `bson:"kind"`
	Name      string    `bson:"name"`
	UnitPrice string    `bson:"unit_price"`
	Currency  string    `bson:"currency"`
	Capacity  int       `bson:"capacity"`
	Active    bool      `bson:"active"`
	CreatedAt time.Time `bson:"created_at"`
}

func toResourceDoc(r *model.Resource) *resourceDoc {
	return &resourceDoc{
		ID:        r.ID,
		Kind:      string(r.Kind),
		Name:      r.Name,
		UnitPrice: r.UnitPrice.String(),
		Currency:  r.Currency,
		Capacity:  r.Capacity,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}

func (d *resourceDoc) toModel() (*model.Resource, error) {
	price, err := decimal.NewFromString(d.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("decoding unit price: %w", err)
	}
	return &model.Resource{
		ID:        d.ID,
		Kind:      model.ResourceKind(d.Kind),
		Name:      d.Name,
		UnitPrice: price,
		Currency:  d.Currency,
		Capacity:  d.Capacity,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
	}, nil
}

type mongoResourceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoResourceRepository(cfg *config.Config) ResourceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResourceRepository{
		cfg:        cfg,
		collection: db.Collection(ResourceCollection),
	}
}

func (r *mongoResourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	resource.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, toResourceDoc(resource)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reserrors.ErrDuplicateID
		}
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func (r *mongoResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc resourceDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}

	return doc.toModel()
}

func (r *mongoResourceRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Resource, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find resources: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []resourceDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}

	resources := make([]*model.Resource, 0, len(docs))
	for i := range docs {
		resource, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	return resources, nil
}

func (r *mongoResourceRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

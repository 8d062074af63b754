package service

import (
	"context"
	"errors"
	"sync"

	reserrors "voyara/internal/reservations/errors"
	"voyara/internal/reservations/repository"
	"voyara/internal/reservations/validator"
	apperrors "voyara/pkg/errors"
	"voyara/pkg/logger"
	"voyara/pkg/model"
	"voyara/pkg/sanitizer"

	"github.com/shopspring/decimal"
)

// ResourceCatalog manages the bookable units the engine allocates
// against. Mutation is admin-only; the engine itself only reads.
type ResourceCatalog interface {
	AddResource(ctx context.Context, actor model.Actor, req *model.ResourceRequest) (*model.Resource, error)
	GetResource(ctx context.Context, id string) (*model.Resource, error)
	ListResources(ctx context.Context, limit int, offset int64) ([]*model.Resource, int64, error)
}

type catalog struct {
	resources repository.ResourceRepository
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewResourceCatalog(
	resources repository.ResourceRepository,
	validator *validator.BookingValidator,
	log *logger.Logger,
) ResourceCatalog {
	return &catalog{
		resources: resources,
		validator: validator,
		log:       log,
	}
}

func (c *catalog) AddResource(ctx context.Context, actor model.Actor, req *model.ResourceRequest) (*model.Resource, error) {
	if actor.Role != model.RoleAdmin {
		return nil, apperrors.Forbidden("Only admins can manage the resource catalogue")
	}

	req.Name = sanitizer.TrimAndNormalize(req.Name)
	if err := c.validator.ValidateResource(req); err != nil {
		return nil, apperrors.Validation("Invalid resource request", map[string]any{"error": err.Error()})
	}

	// ValidateResource already vetted the string.
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		return nil, apperrors.InvalidInput("Unit price must be a decimal string")
	}

	capacity := req.Capacity
	if !req.Kind.Profile().SeatBased {
		capacity = 1
	}

	resource := &model.Resource{
		ID:        req.ID,
		Kind:      req.Kind,
		Name:      req.Name,
		UnitPrice: price,
		Currency:  req.Currency,
		Capacity:  capacity,
		Active:    true,
	}

	if err := c.resources.Create(ctx, resource); err != nil {
		if errors.Is(err, reserrors.ErrDuplicateID) {
			return nil, apperrors.Conflict("A resource with this ID already exists")
		}
		c.log.Error("Failed to create resource", "resource_id", req.ID, "error", err)
		return nil, apperrors.Internal("Failed to create resource", err)
	}

	c.log.Info("Resource added to catalogue",
		"resource_id", resource.ID,
		"kind", resource.Kind,
		"capacity", resource.Capacity,
	)
	return resource, nil
}

func (c *catalog) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	resource, err := c.resources.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}
	return resource, nil
}

func (c *catalog) ListResources(ctx context.Context, limit int, offset int64) ([]*model.Resource, int64, error) {
	var count int64
	var resources []*model.Resource
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = c.resources.Count(ctx)
		if errCount != nil {
			c.log.Error("Failed to count resources", "error", errCount)
			errCount = apperrors.Internal("Failed to count resources", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		resources, errFind = c.resources.FindAll(ctx, limit, offset)
		if errFind != nil {
			c.log.Error("Failed to list resources", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve resources", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return resources, count, nil
}

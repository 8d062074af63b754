package service

import (
	"context"
	"testing"

	"voyara/internal/reservations/validator"
	apperrors "voyara/pkg/errors"
	"voyara/pkg/logger"
	"voyara/pkg/model"

	"github.com/shopspring/decimal"
)

func newTestCatalog(resources ...*model.Resource) (ResourceCatalog, *fakeResourceRepo) {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	repo := newFakeResourceRepo(resources...)
	return NewResourceCatalog(repo, validator.NewBookingValidator(log), log), repo
}

func admin() model.Actor {
	return model.Actor{UserID: "admin-1", Role: model.RoleAdmin}
}

func TestAddResource_Success(t *testing.T) {
	catalog, repo := newTestCatalog()

	resource, err := catalog.AddResource(context.Background(), admin(), &model.ResourceRequest{
		ID:        "flight-ams-1",
		Kind:      model.KindFlight,
		Name:      "  Amsterdam Charter  ",
		UnitPrice: "1000.00",
		Currency:  "USD",
		Capacity:  8,
	})
	if err != nil {
		t.Fatalf("AddResource returned %v", err)
	}
	if resource.Name != "Amsterdam Charter" {
		t.Errorf("name = %q, want trimmed", resource.Name)
	}
	if !resource.Active {
		t.Error("new resources should be active")
	}
	if !resource.UnitPrice.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("unit price = %s, want 1000.00", resource.UnitPrice)
	}

	stored, err := repo.FindByID(context.Background(), "flight-ams-1")
	if err != nil {
		t.Fatalf("resource not persisted: %v", err)
	}
	if stored.Capacity != 8 {
		t.Errorf("capacity = %d, want 8", stored.Capacity)
	}
}

func TestAddResource_RangeKindCapacityForcedToOne(t *testing.T) {
	catalog, _ := newTestCatalog()

	resource, err := catalog.AddResource(context.Background(), admin(), &model.ResourceRequest{
		ID:        "yacht-1",
		Kind:      model.KindYacht,
		Name:      "Azure Horizon",
		UnitPrice: "5000",
		Currency:  "EUR",
	})
	if err != nil {
		t.Fatalf("AddResource returned %v", err)
	}
	if resource.Capacity != 1 {
		t.Errorf("capacity = %d, want 1 for date-range kinds", resource.Capacity)
	}
}

func TestAddResource_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		actor    model.Actor
		req      model.ResourceRequest
		wantCode string
	}{
		{
			name:     "non-admin forbidden",
			actor:    model.Actor{UserID: "op-1", Role: model.RoleOperator},
			req:      model.ResourceRequest{ID: "x", Kind: model.KindCar, Name: "City Car", UnitPrice: "50", Currency: "USD"},
			wantCode: apperrors.CodeForbidden,
		},
		{
			name:     "unknown kind",
			actor:    admin(),
			req:      model.ResourceRequest{ID: "x", Kind: "submarine", Name: "Nautilus", UnitPrice: "50", Currency: "USD"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "non-decimal price",
			actor:    admin(),
			req:      model.ResourceRequest{ID: "x", Kind: model.KindCar, Name: "City Car", UnitPrice: "fifty", Currency: "USD"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "seat kind without capacity",
			actor:    admin(),
			req:      model.ResourceRequest{ID: "x", Kind: model.KindFlight, Name: "Charter", UnitPrice: "100", Currency: "USD"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "range kind with capacity",
			actor:    admin(),
			req:      model.ResourceRequest{ID: "x", Kind: model.KindHotelRoom, Name: "Royal Suite", UnitPrice: "900", Currency: "USD", Capacity: 4},
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, _ := newTestCatalog()
			_, err := catalog.AddResource(context.Background(), tt.actor, &tt.req)
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestAddResource_DuplicateID(t *testing.T) {
	catalog, _ := newTestCatalog(flightResource(8))

	_, err := catalog.AddResource(context.Background(), admin(), &model.ResourceRequest{
		ID:        flightResource(8).ID,
		Kind:      model.KindFlight,
		Name:      "Duplicate Charter",
		UnitPrice: "1000",
		Currency:  "USD",
		Capacity:  8,
	})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("error = %v, want CONFLICT", err)
	}
}

func TestGetResource(t *testing.T) {
	catalog, _ := newTestCatalog(hotelResource())

	resource, err := catalog.GetResource(context.Background(), hotelResource().ID)
	if err != nil {
		t.Fatalf("GetResource returned %v", err)
	}
	if resource.Kind != model.KindHotelRoom {
		t.Errorf("kind = %s, want hotel_room", resource.Kind)
	}

	if _, err := catalog.GetResource(context.Background(), "missing"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
	if _, err := catalog.GetResource(context.Background(), ""); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestListResources(t *testing.T) {
	catalog, _ := newTestCatalog(flightResource(8), hotelResource())

	resources, total, err := catalog.ListResources(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("ListResources returned %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(resources) != 2 {
		t.Errorf("resources = %d, want 2", len(resources))
	}
}

package services

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/repository"
	"github.com/warsztat/workshop-api/scheduling"
	"github.com/warsztat/workshop-api/tests/testutil"
)

func TestPartService(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := testutil.Seed(t, db)
	svc := NewPartService(repository.NewGormStore(db))
	ctx := context.Background()
	staff := testutil.EmployeeIdentity(f.Mechanic)

	order := testutil.CreateOrder(t, db, models.Order{StartDate: testutil.Day(3, 9, 0), ClientID: f.Client.ID, VehicleID: f.Vehicle.ID})

	part, err := svc.AddPart(ctx, staff, order.ID, PartInput{
		Name: "Oil filter", SerialNumber: "OF-123", Quantity: 2, Price: decimal.RequireFromString("24.50"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdatePart(ctx, staff, order.ID, part.ID, PartInput{Quantity: 3, Price: decimal.Zero})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, "Oil filter", updated.Name)
	assert.True(t, decimal.RequireFromString("24.50").Equal(updated.Price), "non-positive price keeps the old one")

	parts, err := svc.ListParts(ctx, testutil.ClientIdentity(f.Client), order.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.True(t, decimal.RequireFromString("73.50").Equal(parts[0].LineTotal()))

	_, err = svc.ListParts(ctx, testutil.ClientIdentity(f.OtherClient), order.ID)
	assert.True(t, errors.Is(err, scheduling.ErrUnauthorized))

	_, err = svc.AddPart(ctx, testutil.ClientIdentity(f.Client), order.ID, PartInput{Name: "x", SerialNumber: "y", Quantity: 1})
	assert.True(t, errors.Is(err, scheduling.ErrUnauthorized))

	_, err = svc.AddPart(ctx, staff, order.ID, PartInput{Name: "x", SerialNumber: "y", Quantity: 0})
	assert.True(t, errors.Is(err, scheduling.ErrInvalidInput))

	other := testutil.CreateOrder(t, db, models.Order{StartDate: testutil.Day(4, 9, 0), ClientID: f.Client.ID, VehicleID: f.Vehicle.ID})
	err = svc.DeletePart(ctx, staff, other.ID, part.ID)
	assert.True(t, errors.Is(err, scheduling.ErrPartNotFound), "part belongs to another order")

	require.NoError(t, svc.DeletePart(ctx, staff, order.ID, part.ID))
	parts, err = svc.ListParts(ctx, staff, order.ID)
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestPartService_CompletedOrderIsFrozen(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := testutil.Seed(t, db)
	svc := NewPartService(repository.NewGormStore(db))

	order := testutil.CreateOrder(t, db, models.Order{
		StartDate: testutil.Day(3, 9, 0), Status: models.StatusCompleted, ClientID: f.Client.ID, VehicleID: f.Vehicle.ID,
	})
	_, err := svc.AddPart(context.Background(), testutil.ManagerIdentity(f.Manager), order.ID, PartInput{
		Name: "Wiper", SerialNumber: "W-1", Quantity: 1, Price: decimal.NewFromInt(10),
	})
	assert.True(t, errors.Is(err, scheduling.ErrInvalidTransition))
}

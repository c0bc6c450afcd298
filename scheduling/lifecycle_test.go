package scheduling

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warsztat/workshop-api/models"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.StatusPending, models.StatusConfirmed))
	assert.True(t, CanTransition(models.StatusConfirmed, models.StatusCompleted))

	assert.False(t, CanTransition(models.StatusPending, models.StatusCompleted), "no skipping")
	assert.False(t, CanTransition(models.StatusConfirmed, models.StatusPending), "no going back")
	assert.False(t, CanTransition(models.StatusCompleted, models.StatusConfirmed), "no going back")
	assert.False(t, CanTransition(models.StatusCompleted, models.StatusCompleted))
}

func TestCanAssign(t *testing.T) {
	assert.NoError(t, CanAssign(&models.Order{Status: models.StatusPending}))
	assert.NoError(t, CanAssign(&models.Order{Status: models.StatusConfirmed}))

	err := CanAssign(&models.Order{Status: models.StatusCompleted})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestCanAssignEmployee(t *testing.T) {
	assert.NoError(t, CanAssignEmployee(&models.Employee{ID: 1}))

	err := CanAssignEmployee(&models.Employee{ID: 2, IsManager: true})
	assert.True(t, errors.Is(err, ErrEmployeeUnavailable))
}

func TestCanComplete(t *testing.T) {
	employeeID := uint(3)
	confirmed := &models.Order{ID: 1, Status: models.StatusConfirmed, EmployeeID: &employeeID}

	tests := []struct {
		name    string
		id      models.Identity
		order   *models.Order
		wantErr error
	}{
		{
			name:  "assigned employee",
			id:    models.Identity{UserID: 3, Role: models.RoleEmployee},
			order: confirmed,
		},
		{
			name:    "other employee",
			id:      models.Identity{UserID: 4, Role: models.RoleEmployee},
			order:   confirmed,
			wantErr: ErrNotAssignedEmployee,
		},
		{
			name:    "manager with matching id is still not the assignee",
			id:      models.Identity{UserID: 3, Role: models.RoleManager},
			order:   confirmed,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "client",
			id:      models.Identity{UserID: 3, Role: models.RoleClient},
			order:   confirmed,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "pending order",
			id:      models.Identity{UserID: 3, Role: models.RoleEmployee},
			order:   &models.Order{ID: 2, Status: models.StatusPending, EmployeeID: &employeeID},
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "already completed",
			id:      models.Identity{UserID: 3, Role: models.RoleEmployee},
			order:   &models.Order{ID: 3, Status: models.StatusCompleted, EmployeeID: &employeeID},
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanComplete(tt.id, tt.order)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestNotAssignedEmployeeIsUnauthorized(t *testing.T) {
	assert.True(t, errors.Is(ErrNotAssignedEmployee, ErrUnauthorized))
	assert.True(t, errors.Is(ErrVehicleNotOwned, ErrUnauthorized))
	assert.True(t, errors.Is(ErrEmployeeNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrOrderNotFound, ErrNotFound))
}

func TestCanMarkPaid(t *testing.T) {
	assert.NoError(t, CanMarkPaid(&models.Order{PaymentStatus: models.PaymentUnpaid}))
	assert.NoError(t, CanMarkPaid(&models.Order{PaymentStatus: models.PaymentReserved}))
	assert.ErrorIs(t, CanMarkPaid(&models.Order{PaymentStatus: models.PaymentPaid}), ErrAlreadyPaid)
}

func TestApplyUpdate(t *testing.T) {
	employeeID := uint(9)

	t.Run("comment and payment", func(t *testing.T) {
		order := &models.Order{Status: models.StatusPending}
		changes, err := ApplyUpdate(order, OrderUpdate{Comment: ptr("front bumper scratched"), PaymentStatus: ptr(2)})
		require.NoError(t, err)
		assert.Equal(t, "front bumper scratched", changes["comment"])
		assert.Equal(t, models.PaymentReserved, changes["payment_status"])
		assert.Equal(t, models.StatusPending, order.Status, "order is not mutated")
	})

	t.Run("payment out of range", func(t *testing.T) {
		for _, v := range []int{-1, 3, 256, 257, -255} {
			_, err := ApplyUpdate(&models.Order{}, OrderUpdate{PaymentStatus: ptr(v)})
			assert.True(t, errors.Is(err, ErrInvalidPaymentStatus), "value %d", v)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := ApplyUpdate(&models.Order{Status: models.StatusPending}, OrderUpdate{Status: ptr("Oczekuje")})
		assert.True(t, errors.Is(err, ErrInvalidStatus))
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		changes, err := ApplyUpdate(&models.Order{Status: models.StatusPending}, OrderUpdate{Status: ptr("pending")})
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("confirm without employee", func(t *testing.T) {
		_, err := ApplyUpdate(&models.Order{Status: models.StatusPending}, OrderUpdate{Status: ptr("confirmed")})
		assert.True(t, errors.Is(err, ErrInvalidTransition))
	})

	t.Run("confirm with employee", func(t *testing.T) {
		changes, err := ApplyUpdate(&models.Order{Status: models.StatusPending, EmployeeID: &employeeID}, OrderUpdate{Status: ptr("confirmed")})
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, changes["status"])
	})

	t.Run("complete needs invoice", func(t *testing.T) {
		order := &models.Order{Status: models.StatusConfirmed, EmployeeID: &employeeID}
		_, err := ApplyUpdate(order, OrderUpdate{Status: ptr("completed")})
		assert.True(t, errors.Is(err, ErrInvalidTransition))

		changes, err := ApplyUpdate(order, OrderUpdate{Status: ptr("completed"), InvoiceKey: ptr("documents/invoices/1.txt")})
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, changes["status"])
		assert.Equal(t, "documents/invoices/1.txt", changes["invoice_key"])
	})

	t.Run("backwards", func(t *testing.T) {
		_, err := ApplyUpdate(&models.Order{Status: models.StatusCompleted}, OrderUpdate{Status: ptr("pending")})
		assert.True(t, errors.Is(err, ErrInvalidTransition))
	})
}

// Package repository is the persistence layer behind the scheduling
// services. Store is implemented on gorm; tests run it against SQLite.
package repository

import (
	"context"
	"time"

	"github.com/warsztat/workshop-api/models"
)

// OrderFilter narrows ListOrders. Zero values mean "no restriction".
type OrderFilter struct {
	ClientID       *uint
	EmployeeID     *uint
	Statuses       []models.OrderStatus
	ExcludeStatus  *models.OrderStatus
	StartingBefore *time.Time
	// Unresolved keeps orders that are not yet both completed and paid.
	Unresolved bool
	// Resolved keeps orders that are completed and paid.
	Resolved bool
}

// Store is the persistence interface consumed by the scheduling services.
// Orders returned by the store always carry their services and parts.
type Store interface {
	// WithSchedulingLock runs fn inside a transaction that is serialized
	// against every other scheduling transaction.
	WithSchedulingLock(ctx context.Context, fn func(tx Store) error) error
	// Transaction runs fn inside a plain transaction.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	ListServices(ctx context.Context) ([]models.Service, error)
	FindServicesByIDs(ctx context.Context, ids []uint) ([]models.Service, error)

	FindOrder(ctx context.Context, id uint) (*models.Order, error)
	// FindOrderDetails additionally loads client, vehicle, employee and
	// the handover protocol with its photos.
	FindOrderDetails(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, id uint, changes map[string]interface{}) error
	DeleteOrder(ctx context.Context, order *models.Order) error

	FindClient(ctx context.Context, id uint) (*models.Client, error)
	FindClientByAuth0ID(ctx context.Context, auth0ID string) (*models.Client, error)
	CreateClient(ctx context.Context, client *models.Client) error
	UpdateClient(ctx context.Context, id uint, changes map[string]interface{}) error
	// DeleteClient soft-deletes a client and its vehicles. The unique
	// identity columns are released so the subject can register again.
	DeleteClient(ctx context.Context, client *models.Client) error

	FindEmployee(ctx context.Context, id uint) (*models.Employee, error)
	FindEmployeeByAuth0ID(ctx context.Context, auth0ID string) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)

	FindVehicle(ctx context.Context, id uint) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, clientID uint) ([]models.Vehicle, error)
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error
	UpdateVehicle(ctx context.Context, id uint, changes map[string]interface{}) error
	DeleteVehicle(ctx context.Context, id uint) error

	FindPart(ctx context.Context, id uint) (*models.Part, error)
	ListParts(ctx context.Context, orderID uint) ([]models.Part, error)
	CreatePart(ctx context.Context, part *models.Part) error
	UpdatePart(ctx context.Context, id uint, changes map[string]interface{}) error
	DeletePart(ctx context.Context, id uint) error

	FindProtocol(ctx context.Context, orderID uint) (*models.HandoverProtocol, error)
	SaveProtocolDescription(ctx context.Context, orderID uint, description string) error
	AddProtocolPhoto(ctx context.Context, photo *models.ProtocolPhoto) error
}

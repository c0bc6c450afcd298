package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/scheduling"
)

// schedulingLockKey is the PostgreSQL advisory lock guarding the shared
// workstation pool. The pool is global, so one key covers every window.
const schedulingLockKey = 7_340_001

// GormStore implements Store on top of gorm
type GormStore struct {
	db *gorm.DB
	// mu serializes scheduling transactions inside this process. It is shared
	// by every transaction-bound copy of the store.
	mu *sync.Mutex
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a store backed by db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, mu: &sync.Mutex{}}
}

func (s *GormStore) with(tx *gorm.DB) *GormStore {
	return &GormStore{db: tx, mu: s.mu}
}

// WithSchedulingLock runs fn in a transaction holding both the in-process
// mutex and, on PostgreSQL, a transaction-scoped advisory lock.
func (s *GormStore) WithSchedulingLock(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", schedulingLockKey).Error; err != nil {
				return errors.Wrap(err, "acquire scheduling lock")
			}
		}
		return fn(s.with(tx))
	})
}

// Transaction runs fn inside a plain transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.with(tx))
	})
}

func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// ListServices returns the service catalog ordered by name
func (s *GormStore) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&services).Error; err != nil {
		return nil, errors.Wrap(err, "list services")
	}
	return services, nil
}

// FindServicesByIDs returns the services matching ids. Missing ids are
// silently skipped; callers compare lengths.
func (s *GormStore) FindServicesByIDs(ctx context.Context, ids []uint) ([]models.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var services []models.Service
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&services).Error; err != nil {
		return nil, errors.Wrap(err, "find services")
	}
	return services, nil
}

func (s *GormStore) orders(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Services").Preload("Parts")
}

// FindOrder loads an order with its services and parts
func (s *GormStore) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.orders(ctx).First(&order, id).Error; err != nil {
		return nil, notFound(err, scheduling.ErrOrderNotFound)
	}
	return &order, nil
}

// FindOrderDetails loads an order with everything rendered on its documents.
// Soft-deleted clients and vehicles are still loaded.
func (s *GormStore) FindOrderDetails(ctx context.Context, id uint) (*models.Order, error) {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }

	var order models.Order
	err := s.orders(ctx).
		Preload("Client", unscoped).
		Preload("Vehicle", unscoped).
		Preload("Employee", unscoped).
		Preload("Protocol.Photos").
		First(&order, id).Error
	if err != nil {
		return nil, notFound(err, scheduling.ErrOrderNotFound)
	}
	return &order, nil
}

// ListOrders returns orders matching filter ordered by start date ascending
func (s *GormStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := s.orders(ctx)
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if filter.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filter.EmployeeID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.ExcludeStatus != nil {
		q = q.Where("status <> ?", *filter.ExcludeStatus)
	}
	if filter.StartingBefore != nil {
		q = q.Where("start_date < ?", filter.StartingBefore.UTC())
	}
	if filter.Unresolved {
		q = q.Where("(status <> ? OR payment_status = ?)", models.StatusCompleted, models.PaymentUnpaid)
	}
	if filter.Resolved {
		q = q.Where("status = ? AND payment_status = ?", models.StatusCompleted, models.PaymentPaid)
	}

	var orders []models.Order
	if err := q.Order("start_date ASC").Order("id ASC").Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// CreateOrder inserts the order and its service associations. Services are
// reference data and are never upserted.
func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	order.StartDate = order.StartDate.UTC()
	err := s.db.WithContext(ctx).Omit("Services.*").Create(order).Error
	if err != nil {
		return errors.Wrap(err, "create order")
	}
	return nil
}

// UpdateOrder applies column changes to an order
func (s *GormStore) UpdateOrder(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update order")
	}
	if res.RowsAffected == 0 {
		return scheduling.ErrOrderNotFound
	}
	return nil
}

// DeleteOrder detaches the order's services, removes its parts and protocol,
// then removes the order row.
func (s *GormStore) DeleteOrder(ctx context.Context, order *models.Order) error {
	db := s.db.WithContext(ctx)
	if err := db.Model(order).Association("Services").Clear(); err != nil {
		return errors.Wrap(err, "detach services")
	}
	if err := db.Where("order_id = ?", order.ID).Delete(&models.Part{}).Error; err != nil {
		return errors.Wrap(err, "delete parts")
	}
	if err := db.Where("order_id = ?", order.ID).Delete(&models.ProtocolPhoto{}).Error; err != nil {
		return errors.Wrap(err, "delete protocol photos")
	}
	if err := db.Where("order_id = ?", order.ID).Delete(&models.HandoverProtocol{}).Error; err != nil {
		return errors.Wrap(err, "delete protocol")
	}
	if err := db.Delete(&models.Order{}, order.ID).Error; err != nil {
		return errors.Wrap(err, "delete order")
	}
	return nil
}

// FindClient loads a client by id
func (s *GormStore) FindClient(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, notFound(err, scheduling.ErrClientNotFound)
	}
	return &client, nil
}

// FindClientByAuth0ID loads the client registered for an Auth0 subject
func (s *GormStore) FindClientByAuth0ID(ctx context.Context, auth0ID string) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&client).Error; err != nil {
		return nil, notFound(err, scheduling.ErrClientNotFound)
	}
	return &client, nil
}

// CreateClient inserts a client
func (s *GormStore) CreateClient(ctx context.Context, client *models.Client) error {
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return scheduling.ErrAlreadyRegistered
		}
		return errors.Wrap(err, "create client")
	}
	return nil
}

// UpdateClient applies column changes to a client
func (s *GormStore) UpdateClient(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		return errors.Wrap(err, "update client")
	}
	return nil
}

// DeleteClient soft-deletes a client together with its vehicles
func (s *GormStore) DeleteClient(ctx context.Context, client *models.Client) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tombstone := func(v string) string { return fmt.Sprintf("deleted:%d:%s", client.ID, v) }
		if err := tx.Model(&models.Client{}).Where("id = ?", client.ID).Updates(map[string]interface{}{
			"auth0_id": tombstone(client.Auth0ID),
			"email":    tombstone(client.Email),
		}).Error; err != nil {
			return errors.Wrap(err, "release client identity")
		}

		var vehicles []models.Vehicle
		if err := tx.Where("client_id = ?", client.ID).Find(&vehicles).Error; err != nil {
			return errors.Wrap(err, "list client vehicles")
		}
		for _, v := range vehicles {
			if err := tx.Model(&models.Vehicle{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
				"vin":                 tombstone(v.VIN),
				"registration_number": tombstone(v.RegistrationNumber),
			}).Error; err != nil {
				return errors.Wrap(err, "release vehicle identity")
			}
		}
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.Vehicle{}).Error; err != nil {
			return errors.Wrap(err, "delete client vehicles")
		}
		if err := tx.Delete(&models.Client{}, client.ID).Error; err != nil {
			return errors.Wrap(err, "delete client")
		}
		return nil
	})
}

// FindEmployeeByAuth0ID loads the employee registered for an Auth0 subject
func (s *GormStore) FindEmployeeByAuth0ID(ctx context.Context, auth0ID string) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&employee).Error; err != nil {
		return nil, notFound(err, scheduling.ErrEmployeeNotFound)
	}
	return &employee, nil
}

// FindEmployee loads an employee by id
func (s *GormStore) FindEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.WithContext(ctx).First(&employee, id).Error; err != nil {
		return nil, notFound(err, scheduling.ErrEmployeeNotFound)
	}
	return &employee, nil
}

// ListEmployees returns every employee, managers included
func (s *GormStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.WithContext(ctx).Order("last_name ASC, first_name ASC").Find(&employees).Error; err != nil {
		return nil, errors.Wrap(err, "list employees")
	}
	return employees, nil
}

// FindVehicle loads a vehicle by id
func (s *GormStore) FindVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := s.db.WithContext(ctx).First(&vehicle, id).Error; err != nil {
		return nil, notFound(err, scheduling.ErrVehicleNotFound)
	}
	return &vehicle, nil
}

// ListVehicles returns the vehicles owned by a client
func (s *GormStore) ListVehicles(ctx context.Context, clientID uint) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Order("id ASC").Find(&vehicles).Error; err != nil {
		return nil, errors.Wrap(err, "list vehicles")
	}
	return vehicles, nil
}

// CreateVehicle inserts a vehicle
func (s *GormStore) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if err := s.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return scheduling.ErrVehicleExists
		}
		return errors.Wrap(err, "create vehicle")
	}
	return nil
}

// UpdateVehicle applies column changes to a vehicle
func (s *GormStore) UpdateVehicle(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Vehicle{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return scheduling.ErrVehicleExists
		}
		return errors.Wrap(err, "update vehicle")
	}
	return nil
}

// DeleteVehicle soft-deletes a vehicle
func (s *GormStore) DeleteVehicle(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.Vehicle{}, id).Error; err != nil {
		return errors.Wrap(err, "delete vehicle")
	}
	return nil
}

// FindPart loads a part by id
func (s *GormStore) FindPart(ctx context.Context, id uint) (*models.Part, error) {
	var part models.Part
	if err := s.db.WithContext(ctx).First(&part, id).Error; err != nil {
		return nil, notFound(err, scheduling.ErrPartNotFound)
	}
	return &part, nil
}

// ListParts returns the parts used on an order
func (s *GormStore) ListParts(ctx context.Context, orderID uint) ([]models.Part, error) {
	var parts []models.Part
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&parts).Error; err != nil {
		return nil, errors.Wrap(err, "list parts")
	}
	return parts, nil
}

// CreatePart inserts a part
func (s *GormStore) CreatePart(ctx context.Context, part *models.Part) error {
	if err := s.db.WithContext(ctx).Create(part).Error; err != nil {
		return errors.Wrap(err, "create part")
	}
	return nil
}

// UpdatePart applies column changes to a part
func (s *GormStore) UpdatePart(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Part{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		return errors.Wrap(err, "update part")
	}
	return nil
}

// DeletePart removes a part
func (s *GormStore) DeletePart(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.Part{}, id).Error; err != nil {
		return errors.Wrap(err, "delete part")
	}
	return nil
}

// FindProtocol loads the handover protocol of an order with its photos
func (s *GormStore) FindProtocol(ctx context.Context, orderID uint) (*models.HandoverProtocol, error) {
	var protocol models.HandoverProtocol
	err := s.db.WithContext(ctx).Preload("Photos").Where("order_id = ?", orderID).First(&protocol).Error
	if err != nil {
		return nil, notFound(err, scheduling.ErrProtocolNotFound)
	}
	return &protocol, nil
}

// SaveProtocolDescription creates the protocol when missing and sets its
// description
func (s *GormStore) SaveProtocolDescription(ctx context.Context, orderID uint, description string) error {
	protocol := models.HandoverProtocol{OrderID: orderID, Description: &description}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
	}).Create(&protocol).Error
	if err != nil {
		return errors.Wrap(err, "save protocol description")
	}
	return nil
}

// AddProtocolPhoto attaches a photo to an order's protocol, creating the
// protocol when needed
func (s *GormStore) AddProtocolPhoto(ctx context.Context, photo *models.ProtocolPhoto) error {
	return s.Transaction(ctx, func(tx Store) error {
		db := tx.(*GormStore).db
		protocol := models.HandoverProtocol{OrderID: photo.OrderID}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&protocol).Error; err != nil {
			return errors.Wrap(err, "ensure protocol")
		}
		if err := db.Create(photo).Error; err != nil {
			return errors.Wrap(err, "add protocol photo")
		}
		return nil
	})
}

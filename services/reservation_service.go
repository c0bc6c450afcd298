package services

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/repository"
	"github.com/warsztat/workshop-api/scheduling"
)

// FinalizeRequest is a client's booking: a vehicle, a set of services and
// the preferred start of the repair
type FinalizeRequest struct {
	VehicleID      uint
	ServiceIDs     []uint
	PreferredStart time.Time
}

// ReservationResult summarizes a newly created order
type ReservationResult struct {
	Order        *models.Order   `json:"order"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalMinutes int             `json:"total_minutes"`
	EstimatedEnd time.Time       `json:"estimated_end_date"`
}

// OrderSummary is the read view of an order with its derived window and cost
type OrderSummary struct {
	ID            uint                 `json:"id"`
	StartDate     time.Time            `json:"start_date"`
	EstimatedEnd  time.Time            `json:"estimated_end_date"`
	TotalMinutes  int                  `json:"total_minutes"`
	TotalCost     decimal.Decimal      `json:"total_cost"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Comment       *string              `json:"comment"`
	InvoiceKey    *string              `json:"invoice_key"`
	ProtocolKey   *string              `json:"protocol_key"`
	ClientID      uint                 `json:"client_id"`
	VehicleID     uint                 `json:"vehicle_id"`
	EmployeeID    *uint                `json:"employee_id"`
	Services      []models.Service     `json:"services"`
	Parts         []models.Part        `json:"parts"`
}

// Summarize builds the read view of an order
func Summarize(o models.Order) OrderSummary {
	services := o.Services
	if services == nil {
		services = []models.Service{}
	}
	parts := o.Parts
	if parts == nil {
		parts = []models.Part{}
	}
	start := o.StartDate.UTC()
	return OrderSummary{
		ID:            o.ID,
		StartDate:     start,
		EstimatedEnd:  scheduling.EstimatedEnd(start, o.Services),
		TotalMinutes:  scheduling.TotalMinutes(o.Services),
		TotalCost:     scheduling.TotalCost(o.Services, o.Parts),
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Comment:       o.Comment,
		InvoiceKey:    o.InvoiceKey,
		ProtocolKey:   o.ProtocolKey,
		ClientID:      o.ClientID,
		VehicleID:     o.VehicleID,
		EmployeeID:    o.EmployeeID,
		Services:      services,
		Parts:         parts,
	}
}

func summarizeAll(orders []models.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, Summarize(o))
	}
	return out
}

// ReservationInit is what a client needs to pick a slot
type ReservationInit struct {
	OccupiedSlots []scheduling.Interval `json:"occupied_slots"`
	Services      []models.Service      `json:"services"`
}

// ReservationService books repairs and drives orders through their lifecycle
type ReservationService struct {
	store           repository.Store
	docs            DocumentGenerator
	log             *zap.Logger
	maxWorkstations int
	now             func() time.Time
}

var reservationServiceInstance *ReservationService

// NewReservationService creates a reservation service
func NewReservationService(store repository.Store, docs DocumentGenerator, log *zap.Logger, maxWorkstations int) *ReservationService {
	if maxWorkstations <= 0 {
		maxWorkstations = scheduling.MaxWorkstations
	}
	return &ReservationService{
		store:           store,
		docs:            docs,
		log:             log,
		maxWorkstations: maxWorkstations,
		now:             time.Now,
	}
}

// InitReservationService initializes the global reservation service
func InitReservationService(store repository.Store, docs DocumentGenerator, log *zap.Logger, maxWorkstations int) *ReservationService {
	reservationServiceInstance = NewReservationService(store, docs, log, maxWorkstations)
	return reservationServiceInstance
}

// GetReservationService returns the initialized reservation service
func GetReservationService() *ReservationService {
	return reservationServiceInstance
}

// SetReservationService sets the reservation service (primarily for testing)
func SetReservationService(service *ReservationService) {
	reservationServiceInstance = service
}

// firstDuplicate returns an id that occurs more than once in ids
func firstDuplicate(ids []uint) (uint, bool) {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return 0, false
}

// FinalizeReservation books a repair for one of the caller's vehicles. The
// capacity check and the insert run under the scheduling lock, so two
// concurrent bookings can never both take the last workstation.
func (s *ReservationService) FinalizeReservation(ctx context.Context, id models.Identity, req FinalizeRequest) (*ReservationResult, error) {
	if err := scheduling.Authorize(id, scheduling.CapBookReservation); err != nil {
		return nil, err
	}

	ids := req.ServiceIDs
	if len(ids) == 0 {
		return nil, errors.Wrap(scheduling.ErrInvalidServiceSelection, "no services selected")
	}
	if dup, ok := firstDuplicate(ids); ok {
		return nil, errors.Wrapf(scheduling.ErrInvalidServiceSelection, "service %d selected twice", dup)
	}
	start := req.PreferredStart.UTC()

	var result *ReservationResult
	err := s.store.WithSchedulingLock(ctx, func(tx repository.Store) error {
		vehicle, err := tx.FindVehicle(ctx, req.VehicleID)
		if errors.Is(err, scheduling.ErrNotFound) {
			return scheduling.ErrVehicleNotOwned
		}
		if err != nil {
			return err
		}
		if vehicle.ClientID != id.UserID {
			return scheduling.ErrVehicleNotOwned
		}

		services, err := tx.FindServicesByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(services) != len(ids) {
			return errors.Wrapf(scheduling.ErrInvalidServiceSelection, "%d of %d services exist", len(services), len(ids))
		}

		candidate := scheduling.Interval{Start: start, End: scheduling.EstimatedEnd(start, services)}
		existing, err := tx.ListOrders(ctx, repository.OrderFilter{StartingBefore: &candidate.End})
		if err != nil {
			return err
		}
		if !scheduling.HasWorkstationCapacity(candidate, scheduling.Windows(existing), s.maxWorkstations) {
			return errors.Wrapf(scheduling.ErrCapacityExceeded, "%s - %s",
				candidate.Start.Format(time.RFC3339), candidate.End.Format(time.RFC3339))
		}

		order := &models.Order{
			StartDate:     start,
			Status:        models.StatusPending,
			PaymentStatus: models.PaymentUnpaid,
			ClientID:      id.UserID,
			VehicleID:     vehicle.ID,
			Services:      services,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		result = &ReservationResult{
			Order:        order,
			TotalCost:    scheduling.TotalCost(services, nil),
			TotalMinutes: scheduling.TotalMinutes(services),
			EstimatedEnd: candidate.End,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Reservation created",
		zap.Uint("order_id", result.Order.ID),
		zap.Uint("client_id", id.UserID),
		zap.Time("start", start),
		zap.Time("end", result.EstimatedEnd),
	)
	return result, nil
}

// AssignEmployee assigns a mechanic to an order. A pending order becomes
// confirmed; a confirmed order is reassigned.
func (s *ReservationService) AssignEmployee(ctx context.Context, id models.Identity, orderID, employeeID uint) (*models.Order, error) {
	if err := scheduling.Authorize(id, scheduling.CapAssignEmployee); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.store.WithSchedulingLock(ctx, func(tx repository.Store) error {
		order, err := tx.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := scheduling.CanAssign(order); err != nil {
			return err
		}

		employee, err := tx.FindEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		if err := scheduling.CanAssignEmployee(employee); err != nil {
			return err
		}

		window := scheduling.Window(order)
		assigned, err := tx.ListOrders(ctx, repository.OrderFilter{EmployeeID: &employee.ID, StartingBefore: &window.End})
		if err != nil {
			return err
		}
		others := assigned[:0]
		for _, o := range assigned {
			if o.ID != order.ID {
				others = append(others, o)
			}
		}
		if !scheduling.IsEmployeeFree(employee.ID, window, others) {
			return errors.Wrapf(scheduling.ErrEmployeeUnavailable, "employee %d", employee.ID)
		}

		changes := map[string]interface{}{"employee_id": employee.ID}
		if order.Status == models.StatusPending {
			changes["status"] = models.StatusConfirmed
		}
		if err := tx.UpdateOrder(ctx, order.ID, changes); err != nil {
			return err
		}

		updated, err = tx.FindOrder(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Employee assigned", zap.Uint("order_id", orderID), zap.Uint("employee_id", employeeID))
	return updated, nil
}

// CompleteOrder closes an order on behalf of its assigned employee. The
// invoice is generated first and the order only becomes completed, together
// with its invoice key, once the document exists. A failed generation leaves
// the order confirmed.
func (s *ReservationService) CompleteOrder(ctx context.Context, id models.Identity, orderID uint) (*models.Order, error) {
	order, err := s.store.FindOrderDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := scheduling.CanComplete(id, order); err != nil {
		return nil, err
	}

	key, err := s.docs.Generate(ctx, DocumentInvoice, order)
	if err != nil {
		s.log.Error("Invoice generation failed", zap.Uint("order_id", orderID), zap.Error(err))
		if errors.Is(err, scheduling.ErrDocumentGenerationFailed) {
			return nil, err
		}
		return nil, &scheduling.DocumentError{Kind: string(DocumentInvoice), Err: err}
	}

	var updated *models.Order
	err = s.store.WithSchedulingLock(ctx, func(tx repository.Store) error {
		current, err := tx.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		// someone may have completed it while the invoice was rendered
		if err := scheduling.CanComplete(id, current); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, orderID, map[string]interface{}{
			"status":      models.StatusCompleted,
			"invoice_key": key,
		}); err != nil {
			return err
		}
		updated, err = tx.FindOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Order completed", zap.Uint("order_id", orderID), zap.String("invoice_key", key))
	return updated, nil
}

// MarkPaid records the payment of an order. Marking a paid order again
// fails with scheduling.ErrAlreadyPaid and changes nothing.
func (s *ReservationService) MarkPaid(ctx context.Context, id models.Identity, orderID uint) (*models.Order, error) {
	if err := scheduling.Authorize(id, scheduling.CapMarkPaid); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.store.WithSchedulingLock(ctx, func(tx repository.Store) error {
		order, err := tx.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := scheduling.CanMarkPaid(order); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, orderID, map[string]interface{}{"payment_status": models.PaymentPaid}); err != nil {
			return err
		}
		updated, err = tx.FindOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateOrder applies a staff update to an order
func (s *ReservationService) UpdateOrder(ctx context.Context, id models.Identity, orderID uint, u scheduling.OrderUpdate) (*models.Order, error) {
	if err := scheduling.Authorize(id, scheduling.CapUpdateOrder); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.store.WithSchedulingLock(ctx, func(tx repository.Store) error {
		order, err := tx.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		changes, err := scheduling.ApplyUpdate(order, u)
		if err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, orderID, changes); err != nil {
			return err
		}
		updated, err = tx.FindOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteOrder removes an order. Clients may only remove their own orders.
func (s *ReservationService) DeleteOrder(ctx context.Context, id models.Identity, orderID uint) error {
	return s.store.WithSchedulingLock(ctx, func(tx repository.Store) error {
		order, err := tx.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !id.IsStaff() && !id.Owns(order.ClientID) {
			return errors.Wrapf(scheduling.ErrUnauthorized, "order %d", orderID)
		}
		if err := tx.DeleteOrder(ctx, order); err != nil {
			return err
		}
		s.log.Info("Order deleted", zap.Uint("order_id", orderID), zap.String("role", string(id.Role)))
		return nil
	})
}

func (s *ReservationService) staffView(ctx context.Context, id models.Identity, filter repository.OrderFilter) ([]OrderSummary, error) {
	if err := scheduling.Authorize(id, scheduling.CapViewSchedule); err != nil {
		return nil, err
	}
	orders, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return summarizeAll(orders), nil
}

// GetAll lists every order by start date
func (s *ReservationService) GetAll(ctx context.Context, id models.Identity) ([]OrderSummary, error) {
	return s.staffView(ctx, id, repository.OrderFilter{})
}

// GetPending lists orders still waiting for an employee
func (s *ReservationService) GetPending(ctx context.Context, id models.Identity) ([]OrderSummary, error) {
	return s.staffView(ctx, id, repository.OrderFilter{Statuses: []models.OrderStatus{models.StatusPending}})
}

// GetSchedule lists orders that are not yet both completed and paid
func (s *ReservationService) GetSchedule(ctx context.Context, id models.Identity) ([]OrderSummary, error) {
	return s.staffView(ctx, id, repository.OrderFilter{Unresolved: true})
}

// GetHistory lists completed and paid orders
func (s *ReservationService) GetHistory(ctx context.Context, id models.Identity) ([]OrderSummary, error) {
	return s.staffView(ctx, id, repository.OrderFilter{Resolved: true})
}

// GetClientReservations lists the caller's orders: unresolved ones oldest
// first, followed by resolved ones newest first.
func (s *ReservationService) GetClientReservations(ctx context.Context, id models.Identity) ([]OrderSummary, error) {
	if !id.IsClient() {
		return nil, errors.Wrap(scheduling.ErrUnauthorized, "only clients have reservations")
	}
	orders, err := s.store.ListOrders(ctx, repository.OrderFilter{ClientID: &id.UserID})
	if err != nil {
		return nil, err
	}

	var open, resolved []models.Order
	for _, o := range orders {
		if o.IsResolved() {
			resolved = append(resolved, o)
		} else {
			open = append(open, o)
		}
	}
	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].StartDate.After(resolved[j].StartDate)
	})

	return summarizeAll(append(open, resolved...)), nil
}

// GetOrder returns one order. Clients may only read their own.
func (s *ReservationService) GetOrder(ctx context.Context, id models.Identity, orderID uint) (*OrderSummary, error) {
	order, err := s.store.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !id.IsStaff() && !id.Owns(order.ClientID) {
		return nil, errors.Wrapf(scheduling.ErrUnauthorized, "order %d", orderID)
	}
	summary := Summarize(*order)
	return &summary, nil
}

// OccupiedSlots returns the windows of every order overlapping [from, to)
func (s *ReservationService) OccupiedSlots(ctx context.Context, from, to time.Time) ([]scheduling.Interval, error) {
	if !from.Before(to) {
		return nil, errors.Wrap(scheduling.ErrInvalidInput, "range start must be before its end")
	}
	to = to.UTC()
	orders, err := s.store.ListOrders(ctx, repository.OrderFilter{StartingBefore: &to})
	if err != nil {
		return nil, err
	}

	query := scheduling.Interval{Start: from.UTC(), End: to}
	slots := make([]scheduling.Interval, 0, len(orders))
	for _, w := range scheduling.Windows(orders) {
		if w.Overlaps(query) {
			slots = append(slots, w)
		}
	}
	return slots, nil
}

// ListServices returns the service catalog
func (s *ReservationService) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.store.ListServices(ctx)
}

// ReservationInit returns the occupied slots of the coming year and the
// service catalog
func (s *ReservationService) ReservationInit(ctx context.Context, id models.Identity) (*ReservationInit, error) {
	if err := scheduling.Authorize(id, scheduling.CapBookReservation); err != nil {
		return nil, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	slots, err := s.OccupiedSlots(ctx, today, today.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}
	services, err := s.store.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	return &ReservationInit{OccupiedSlots: slots, Services: services}, nil
}

// AvailableEmployees lists mechanics with no assigned order overlapping
// [from, to). Managers are never listed.
func (s *ReservationService) AvailableEmployees(ctx context.Context, id models.Identity, from, to time.Time) ([]models.Employee, error) {
	if err := scheduling.Authorize(id, scheduling.CapViewSchedule); err != nil {
		return nil, err
	}
	if !from.Before(to) {
		return nil, errors.Wrap(scheduling.ErrInvalidInput, "range start must be before its end")
	}

	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	to = to.UTC()
	orders, err := s.store.ListOrders(ctx, repository.OrderFilter{StartingBefore: &to})
	if err != nil {
		return nil, err
	}

	query := scheduling.Interval{Start: from.UTC(), End: to}
	available := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if e.IsManager {
			continue
		}
		if scheduling.IsEmployeeFree(e.ID, query, orders) {
			available = append(available, e)
		}
	}
	return available, nil
}

// EmployeeReservations lists an employee's open orders. Managers may look
// at anyone, employees only at themselves.
func (s *ReservationService) EmployeeReservations(ctx context.Context, id models.Identity, employeeID uint) ([]OrderSummary, error) {
	if err := scheduling.Authorize(id, scheduling.CapViewSchedule); err != nil {
		return nil, err
	}
	if id.Role != models.RoleManager && id.UserID != employeeID {
		return nil, errors.Wrapf(scheduling.ErrUnauthorized, "reservations of employee %d", employeeID)
	}
	if _, err := s.store.FindEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	completed := models.StatusCompleted
	orders, err := s.store.ListOrders(ctx, repository.OrderFilter{EmployeeID: &employeeID, ExcludeStatus: &completed})
	if err != nil {
		return nil, err
	}
	return summarizeAll(orders), nil
}

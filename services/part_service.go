package services

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/repository"
	"github.com/warsztat/workshop-api/scheduling"
)

// PartInput holds part fields sent by staff. On update, empty strings and
// non-positive numbers keep the current value.
type PartInput struct {
	Name         string
	SerialNumber string
	Quantity     int
	Price        decimal.Decimal
}

// PartService manages the spare parts used on orders
type PartService struct {
	store repository.Store
}

var partServiceInstance *PartService

// NewPartService creates a part service
func NewPartService(store repository.Store) *PartService {
	return &PartService{store: store}
}

// InitPartService initializes the global part service
func InitPartService(store repository.Store) *PartService {
	partServiceInstance = NewPartService(store)
	return partServiceInstance
}

// GetPartService returns the initialized part service
func GetPartService() *PartService {
	return partServiceInstance
}

// SetPartService sets the part service (primarily for testing)
func SetPartService(service *PartService) {
	partServiceInstance = service
}

// ListParts returns the parts of an order to its client or to staff
func (s *PartService) ListParts(ctx context.Context, id models.Identity, orderID uint) ([]models.Part, error) {
	order, err := s.store.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !id.IsStaff() && !id.Owns(order.ClientID) {
		return nil, errors.Wrapf(scheduling.ErrUnauthorized, "parts of order %d", orderID)
	}
	return s.store.ListParts(ctx, orderID)
}

// editableOrder loads an order whose parts may still change. The invoice of
// a completed order is final.
func (s *PartService) editableOrder(ctx context.Context, id models.Identity, orderID uint) (*models.Order, error) {
	if err := scheduling.Authorize(id, scheduling.CapManageParts); err != nil {
		return nil, err
	}
	order, err := s.store.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.StatusCompleted {
		return nil, errors.Wrapf(scheduling.ErrInvalidTransition, "order %d is completed", orderID)
	}
	return order, nil
}

// AddPart records a part used on an order
func (s *PartService) AddPart(ctx context.Context, id models.Identity, orderID uint, in PartInput) (*models.Part, error) {
	if _, err := s.editableOrder(ctx, id, orderID); err != nil {
		return nil, err
	}

	part := &models.Part{
		OrderID:      orderID,
		Name:         strings.TrimSpace(in.Name),
		SerialNumber: strings.TrimSpace(in.SerialNumber),
		Quantity:     in.Quantity,
		Price:        in.Price.Round(2),
	}
	if part.Name == "" || part.SerialNumber == "" {
		return nil, errors.Wrap(scheduling.ErrInvalidInput, "name and serial number are required")
	}
	if part.Quantity <= 0 {
		return nil, errors.Wrap(scheduling.ErrInvalidInput, "quantity must be positive")
	}
	if part.Price.IsNegative() {
		return nil, errors.Wrap(scheduling.ErrInvalidInput, "price must not be negative")
	}

	if err := s.store.CreatePart(ctx, part); err != nil {
		return nil, err
	}
	return part, nil
}

func (s *PartService) partOf(ctx context.Context, orderID, partID uint) (*models.Part, error) {
	part, err := s.store.FindPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part.OrderID != orderID {
		return nil, scheduling.ErrPartNotFound
	}
	return part, nil
}

// UpdatePart changes a part of an order
func (s *PartService) UpdatePart(ctx context.Context, id models.Identity, orderID, partID uint, in PartInput) (*models.Part, error) {
	if _, err := s.editableOrder(ctx, id, orderID); err != nil {
		return nil, err
	}
	if _, err := s.partOf(ctx, orderID, partID); err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if v := strings.TrimSpace(in.Name); v != "" {
		changes["name"] = v
	}
	if v := strings.TrimSpace(in.SerialNumber); v != "" {
		changes["serial_number"] = v
	}
	if in.Quantity > 0 {
		changes["quantity"] = in.Quantity
	}
	if in.Price.IsPositive() {
		changes["price"] = in.Price.Round(2)
	}

	if err := s.store.UpdatePart(ctx, partID, changes); err != nil {
		return nil, err
	}
	return s.store.FindPart(ctx, partID)
}

// DeletePart removes a part from an order
func (s *PartService) DeletePart(ctx context.Context, id models.Identity, orderID, partID uint) error {
	if _, err := s.editableOrder(ctx, id, orderID); err != nil {
		return err
	}
	if _, err := s.partOf(ctx, orderID, partID); err != nil {
		return err
	}
	return s.store.DeletePart(ctx, partID)
}

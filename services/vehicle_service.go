package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/repository"
	"github.com/warsztat/workshop-api/scheduling"
)

// firstProductionYear bounds plausible production years
const firstProductionYear = 1900

// VehicleInput holds vehicle fields sent by a client. On update, empty
// strings and a zero year keep the current value.
type VehicleInput struct {
	Brand              string
	Model              string
	ProductionYear     int
	VIN                string
	RegistrationNumber string
}

// VehicleService manages the vehicles of clients
type VehicleService struct {
	store repository.Store
	now   func() time.Time
}

var vehicleServiceInstance *VehicleService

// NewVehicleService creates a vehicle service
func NewVehicleService(store repository.Store) *VehicleService {
	return &VehicleService{store: store, now: time.Now}
}

// InitVehicleService initializes the global vehicle service
func InitVehicleService(store repository.Store) *VehicleService {
	vehicleServiceInstance = NewVehicleService(store)
	return vehicleServiceInstance
}

// GetVehicleService returns the initialized vehicle service
func GetVehicleService() *VehicleService {
	return vehicleServiceInstance
}

// SetVehicleService sets the vehicle service (primarily for testing)
func SetVehicleService(service *VehicleService) {
	vehicleServiceInstance = service
}

func (s *VehicleService) validYear(year int) bool {
	return year >= firstProductionYear && year <= s.now().Year()+1
}

// ListVehicles returns the caller's vehicles
func (s *VehicleService) ListVehicles(ctx context.Context, id models.Identity) ([]models.Vehicle, error) {
	if err := scheduling.Authorize(id, scheduling.CapManageVehicles); err != nil {
		return nil, err
	}
	return s.store.ListVehicles(ctx, id.UserID)
}

// AddVehicle registers a vehicle for the caller
func (s *VehicleService) AddVehicle(ctx context.Context, id models.Identity, in VehicleInput) (*models.Vehicle, error) {
	if err := scheduling.Authorize(id, scheduling.CapManageVehicles); err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{
		Brand:              strings.TrimSpace(in.Brand),
		Model:              strings.TrimSpace(in.Model),
		ProductionYear:     in.ProductionYear,
		VIN:                strings.ToUpper(strings.TrimSpace(in.VIN)),
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(in.RegistrationNumber)),
		ClientID:           id.UserID,
	}
	if vehicle.Brand == "" || vehicle.Model == "" || vehicle.VIN == "" || vehicle.RegistrationNumber == "" {
		return nil, errors.Wrap(scheduling.ErrInvalidInput, "brand, model, VIN and registration number are required")
	}
	if !s.validYear(vehicle.ProductionYear) {
		return nil, errors.Wrapf(scheduling.ErrInvalidInput, "production year %d", vehicle.ProductionYear)
	}

	if err := s.store.CreateVehicle(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) owned(ctx context.Context, id models.Identity, vehicleID uint) (*models.Vehicle, error) {
	if err := scheduling.Authorize(id, scheduling.CapManageVehicles); err != nil {
		return nil, err
	}
	vehicle, err := s.store.FindVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !id.Owns(vehicle.ClientID) {
		return nil, scheduling.ErrVehicleNotOwned
	}
	return vehicle, nil
}

// UpdateVehicle changes the caller's vehicle
func (s *VehicleService) UpdateVehicle(ctx context.Context, id models.Identity, vehicleID uint, in VehicleInput) (*models.Vehicle, error) {
	if _, err := s.owned(ctx, id, vehicleID); err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if v := strings.TrimSpace(in.Brand); v != "" {
		changes["brand"] = v
	}
	if v := strings.TrimSpace(in.Model); v != "" {
		changes["model"] = v
	}
	if in.ProductionYear != 0 {
		if !s.validYear(in.ProductionYear) {
			return nil, errors.Wrapf(scheduling.ErrInvalidInput, "production year %d", in.ProductionYear)
		}
		changes["production_year"] = in.ProductionYear
	}
	if v := strings.TrimSpace(in.VIN); v != "" {
		changes["vin"] = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(in.RegistrationNumber); v != "" {
		changes["registration_number"] = strings.ToUpper(v)
	}

	if err := s.store.UpdateVehicle(ctx, vehicleID, changes); err != nil {
		return nil, err
	}
	return s.store.FindVehicle(ctx, vehicleID)
}

// DeleteVehicle removes the caller's vehicle. Orders keep referring to it.
func (s *VehicleService) DeleteVehicle(ctx context.Context, id models.Identity, vehicleID uint) error {
	if _, err := s.owned(ctx, id, vehicleID); err != nil {
		return err
	}
	return s.store.DeleteVehicle(ctx, vehicleID)
}

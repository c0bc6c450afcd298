package services

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/repository"
	"github.com/warsztat/workshop-api/scheduling"
)

// ClientProfile holds the editable client fields. Empty fields keep their
// current value on update.
type ClientProfile struct {
	FirstName   string
	LastName    string
	PhoneNumber string
}

// ClientService registers clients and manages their profiles
type ClientService struct {
	store    repository.Store
	userInfo UserInfoProvider
	log      *zap.Logger
}

var clientServiceInstance *ClientService

// NewClientService creates a client service
func NewClientService(store repository.Store, userInfo UserInfoProvider, log *zap.Logger) *ClientService {
	return &ClientService{store: store, userInfo: userInfo, log: log}
}

// InitClientService initializes the global client service
func InitClientService(store repository.Store, userInfo UserInfoProvider, log *zap.Logger) *ClientService {
	clientServiceInstance = NewClientService(store, userInfo, log)
	return clientServiceInstance
}

// GetClientService returns the initialized client service
func GetClientService() *ClientService {
	return clientServiceInstance
}

// SetClientService sets the client service (primarily for testing)
func SetClientService(service *ClientService) {
	clientServiceInstance = service
}

// Register creates the client account for an Auth0 subject. The email comes
// from Auth0; names fall back to the Auth0 profile when not supplied.
func (s *ClientService) Register(ctx context.Context, subject, accessToken string, profile ClientProfile) (*models.Client, error) {
	if _, err := s.store.FindClientByAuth0ID(ctx, subject); err == nil {
		return nil, scheduling.ErrAlreadyRegistered
	} else if !errors.Is(err, scheduling.ErrNotFound) {
		return nil, err
	}

	info, err := s.userInfo.GetUserInfo(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "fetch Auth0 profile")
	}
	if info.Email == "" {
		return nil, errors.Wrap(scheduling.ErrInvalidInput, "email not provided by Auth0")
	}

	client := &models.Client{
		Auth0ID:     subject,
		Email:       info.Email,
		FirstName:   firstNonEmpty(profile.FirstName, info.GivenName),
		LastName:    firstNonEmpty(profile.LastName, info.FamilyName),
		PhoneNumber: firstNonEmpty(profile.PhoneNumber, info.PhoneNumber),
	}
	if client.FirstName == "" && client.LastName == "" {
		client.FirstName, client.LastName = splitName(info.Name)
	}
	if client.FirstName == "" {
		return nil, errors.Wrap(scheduling.ErrInvalidInput, "first name is required")
	}

	if err := s.store.CreateClient(ctx, client); err != nil {
		return nil, err
	}

	s.log.Info("Client registered", zap.Uint("client_id", client.ID))
	return client, nil
}

// GetProfile returns the caller's client profile
func (s *ClientService) GetProfile(ctx context.Context, id models.Identity) (*models.Client, error) {
	if !id.IsClient() {
		return nil, errors.Wrap(scheduling.ErrUnauthorized, "only clients have a profile")
	}
	return s.store.FindClient(ctx, id.UserID)
}

// UpdateProfile changes the caller's non-empty profile fields
func (s *ClientService) UpdateProfile(ctx context.Context, id models.Identity, profile ClientProfile) (*models.Client, error) {
	if !id.IsClient() {
		return nil, errors.Wrap(scheduling.ErrUnauthorized, "only clients have a profile")
	}

	changes := map[string]interface{}{}
	if v := strings.TrimSpace(profile.FirstName); v != "" {
		changes["first_name"] = v
	}
	if v := strings.TrimSpace(profile.LastName); v != "" {
		changes["last_name"] = v
	}
	if v := strings.TrimSpace(profile.PhoneNumber); v != "" {
		changes["phone_number"] = v
	}
	if err := s.store.UpdateClient(ctx, id.UserID, changes); err != nil {
		return nil, err
	}
	return s.store.FindClient(ctx, id.UserID)
}

// DeleteAccount removes the caller's account and vehicles. Orders that are
// not yet completed and paid keep the account alive.
func (s *ClientService) DeleteAccount(ctx context.Context, id models.Identity) error {
	if !id.IsClient() {
		return errors.Wrap(scheduling.ErrUnauthorized, "only clients can delete their account")
	}

	err := s.store.WithSchedulingLock(ctx, func(tx repository.Store) error {
		client, err := tx.FindClient(ctx, id.UserID)
		if err != nil {
			return err
		}
		orders, err := tx.ListOrders(ctx, repository.OrderFilter{ClientID: &client.ID})
		if err != nil {
			return err
		}
		for i := range orders {
			if !orders[i].IsResolved() {
				return errors.Wrapf(scheduling.ErrInvalidTransition, "order %d is still open", orders[i].ID)
			}
		}
		return tx.DeleteClient(ctx, client)
	})
	if err != nil {
		return err
	}

	s.log.Info("Client account deleted", zap.Uint("client_id", id.UserID))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/repository"
	"github.com/warsztat/workshop-api/scheduling"
)

// ProtocolService documents the vehicle condition at handover
type ProtocolService struct {
	store  repository.Store
	images ImageService
	docs   DocumentGenerator
	log    *zap.Logger
}

var protocolServiceInstance *ProtocolService

// NewProtocolService creates a protocol service
func NewProtocolService(store repository.Store, images ImageService, docs DocumentGenerator, log *zap.Logger) *ProtocolService {
	return &ProtocolService{store: store, images: images, docs: docs, log: log}
}

// InitProtocolService initializes the global protocol service
func InitProtocolService(store repository.Store, images ImageService, docs DocumentGenerator, log *zap.Logger) *ProtocolService {
	protocolServiceInstance = NewProtocolService(store, images, docs, log)
	return protocolServiceInstance
}

// GetProtocolService returns the initialized protocol service
func GetProtocolService() *ProtocolService {
	return protocolServiceInstance
}

// SetProtocolService sets the protocol service (primarily for testing)
func SetProtocolService(service *ProtocolService) {
	protocolServiceInstance = service
}

func (s *ProtocolService) staffOrder(ctx context.Context, id models.Identity, orderID uint) (*models.Order, error) {
	if err := scheduling.Authorize(id, scheduling.CapManageProtocol); err != nil {
		return nil, err
	}
	return s.store.FindOrder(ctx, orderID)
}

// SetDescription stores the condition description of the vehicle
func (s *ProtocolService) SetDescription(ctx context.Context, id models.Identity, orderID uint, description string) (*models.HandoverProtocol, error) {
	if _, err := s.staffOrder(ctx, id, orderID); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errors.Wrap(scheduling.ErrInvalidInput, "description is required")
	}

	if err := s.store.SaveProtocolDescription(ctx, orderID, description); err != nil {
		return nil, err
	}
	return s.store.FindProtocol(ctx, orderID)
}

// AddPhoto uploads a PNG photo and attaches it to the order's protocol
func (s *ProtocolService) AddPhoto(ctx context.Context, id models.Identity, orderID uint, fileHeader *multipart.FileHeader) (*models.ProtocolPhoto, error) {
	if _, err := s.staffOrder(ctx, id, orderID); err != nil {
		return nil, err
	}

	key, err := s.images.UploadImage(ctx, fmt.Sprintf("protocols/%d", orderID), fileHeader)
	if err != nil {
		return nil, err
	}

	photo := &models.ProtocolPhoto{OrderID: orderID, S3Key: key}
	if err := s.store.AddProtocolPhoto(ctx, photo); err != nil {
		if delErr := s.images.DeleteImage(ctx, key); delErr != nil {
			s.log.Warn("Failed to remove orphaned photo", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	if url, err := s.images.GetImageURL(ctx, key); err == nil {
		photo.URL = &url
	}
	return photo, nil
}

// GetProtocol returns the protocol with presigned photo URLs to the order's
// client or to staff
func (s *ProtocolService) GetProtocol(ctx context.Context, id models.Identity, orderID uint) (*models.HandoverProtocol, error) {
	order, err := s.store.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !id.IsStaff() && !id.Owns(order.ClientID) {
		return nil, errors.Wrapf(scheduling.ErrUnauthorized, "protocol of order %d", orderID)
	}

	protocol, err := s.store.FindProtocol(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for i := range protocol.Photos {
		url, err := s.images.GetImageURL(ctx, protocol.Photos[i].S3Key)
		if err != nil {
			s.log.Warn("Failed to presign photo", zap.String("key", protocol.Photos[i].S3Key), zap.Error(err))
			continue
		}
		protocol.Photos[i].URL = &url
	}
	return protocol, nil
}

// GenerateDocument renders the handover protocol document and stores its
// key on the order
func (s *ProtocolService) GenerateDocument(ctx context.Context, id models.Identity, orderID uint) (string, error) {
	if err := scheduling.Authorize(id, scheduling.CapManageProtocol); err != nil {
		return "", err
	}
	order, err := s.store.FindOrderDetails(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.Protocol == nil {
		return "", scheduling.ErrProtocolNotFound
	}

	key, err := s.docs.Generate(ctx, DocumentProtocol, order)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateOrder(ctx, orderID, map[string]interface{}{"protocol_key": key}); err != nil {
		return "", err
	}

	s.log.Info("Protocol document generated", zap.Uint("order_id", orderID), zap.String("key", key))
	return key, nil
}

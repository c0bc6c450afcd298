package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/scheduling"
)

// MockDocumentGenerator records generated documents without storing them
type MockDocumentGenerator struct {
	mu        sync.Mutex
	generated []string

	// Fail makes every Generate call fail
	Fail bool
}

// NewMockDocumentGenerator creates a new mock generator
func NewMockDocumentGenerator() *MockDocumentGenerator {
	return &MockDocumentGenerator{}
}

// SetAsMockForTesting sets this mock as the global document generator
func (m *MockDocumentGenerator) SetAsMockForTesting() {
	SetDocumentService(m)
}

// Generate returns a deterministic key for the order
func (m *MockDocumentGenerator) Generate(_ context.Context, kind DocumentKind, order *models.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return "", scheduling.ErrDocumentGenerationFailed
	}
	key := fmt.Sprintf("documents/%s/%d/mock.txt", kind, order.ID)
	m.generated = append(m.generated, key)
	return key, nil
}

// Generated lists the keys handed out so far
func (m *MockDocumentGenerator) Generated() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.generated...)
}

package testutil

import (
	"context"
	"sync"

	"github.com/FrenchMajesty/emotion-classifier/pkg/cache"
)

// MockArtifact is a mock implementation of model.Artifact for testing
type MockArtifact struct {
	ClassesFunc             func() []string
	PredictLabelFunc        func(text string) string
	PredictDistributionFunc func(text string) []float64

	// Safe is returned from ConcurrencySafe
	Safe bool

	mu                sync.Mutex
	LabelCalls        int
	DistributionCalls int
	LastText          string
}

// NewMockArtifact returns a mock that always predicts label with the given distribution
func NewMockArtifact(classes []string, label string, dist []float64) *MockArtifact {
	return &MockArtifact{
		ClassesFunc:             func() []string { return classes },
		PredictLabelFunc:        func(string) string { return label },
		PredictDistributionFunc: func(string) []float64 { return dist },
		Safe:                    true,
	}
}

func (m *MockArtifact) Classes() []string {
	if m.ClassesFunc != nil {
		return m.ClassesFunc()
	}
	return []string{"neutral"}
}

func (m *MockArtifact) PredictLabel(text string) string {
	m.mu.Lock()
	m.LabelCalls++
	m.LastText = text
	m.mu.Unlock()

	if m.PredictLabelFunc != nil {
		return m.PredictLabelFunc(text)
	}
	return m.Classes()[0]
}

func (m *MockArtifact) PredictDistribution(text string) []float64 {
	m.mu.Lock()
	m.DistributionCalls++
	m.LastText = text
	m.mu.Unlock()

	if m.PredictDistributionFunc != nil {
		return m.PredictDistributionFunc(text)
	}

	// Default: uniform over the classes
	classes := m.Classes()
	dist := make([]float64, len(classes))
	for i := range dist {
		dist[i] = 1 / float64(len(classes))
	}
	return dist
}

func (m *MockArtifact) ConcurrencySafe() bool { return m.Safe }

// Calls returns the number of label and distribution predictions made so far
func (m *MockArtifact) Calls() (label, distribution int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LabelCalls, m.DistributionCalls
}

// MockCache is a mock implementation of cache.Cache for testing
type MockCache struct {
	GetFunc func(ctx context.Context, key string) (*cache.Entry, bool, error)
	SetFunc func(ctx context.Context, key string, entry *cache.Entry) error

	mu       sync.Mutex
	GetCount int
	SetCount int
	Storage  map[string]*cache.Entry
}

func NewMockCache() *MockCache {
	return &MockCache{Storage: make(map[string]*cache.Entry)}
}

func (m *MockCache) Get(ctx context.Context, key string) (*cache.Entry, bool, error) {
	m.mu.Lock()
	m.GetCount++
	m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Storage[key]
	return e, ok, nil
}

func (m *MockCache) Set(ctx context.Context, key string, entry *cache.Entry) error {
	m.mu.Lock()
	m.SetCount++
	if m.Storage == nil {
		m.Storage = make(map[string]*cache.Entry)
	}
	m.Storage[key] = entry
	m.mu.Unlock()

	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, entry)
	}
	return nil
}

// Counts returns the number of Get and Set calls made so far
func (m *MockCache) Counts() (gets, sets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GetCount, m.SetCount
}

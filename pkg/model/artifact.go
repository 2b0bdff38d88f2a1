package model

import "sync"

// Artifact is a loaded, pre-trained text classifier.
type Artifact interface {
	// Classes returns the labels in distribution order.
	Classes() []string

	// PredictLabel returns the most probable label for text.
	PredictLabel(text string) string

	// PredictDistribution returns one probability per class, in Classes order.
	// It must be deterministic for a given text.
	PredictDistribution(text string) []float64
}

// ConcurrencySafe is implemented by artifacts whose inference keeps no
// mutable state and may be called from many goroutines at once.
type ConcurrencySafe interface {
	ConcurrencySafe() bool
}

func isConcurrencySafe(a Artifact) bool {
	cs, ok := a.(ConcurrencySafe)
	return ok && cs.ConcurrencySafe()
}

// Synchronized serializes every call into a behind one mutex. Use it for
// artifacts that cache or otherwise mutate state during inference.
func Synchronized(a Artifact) Artifact {
	if s, ok := a.(*synchronized); ok {
		return s
	}
	return &synchronized{inner: a}
}

type synchronized struct {
	mu    sync.Mutex
	inner Artifact
}

func (s *synchronized) Classes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Classes()
}

func (s *synchronized) PredictLabel(text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.PredictLabel(text)
}

func (s *synchronized) PredictDistribution(text string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.PredictDistribution(text)
}

func (s *synchronized) ConcurrencySafe() bool { return true }

// Package cache stores raw model output keyed by artifact and input text, so
// repeated submissions of the same text skip inference.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Entry is the raw output of one prediction.
type Entry struct {
	Label        string    `msgpack:"label"`
	Distribution []float64 `msgpack:"dist"`
}

// Cache stores prediction entries. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Set(ctx context.Context, key string, entry *Entry) error
}

// Key derives the cache key for text classified by the artifact with the given fingerprint.
func Key(fingerprint, text string) string {
	if len(fingerprint) > 12 {
		fingerprint = fingerprint[:12]
	}
	sum := sha256.Sum256([]byte(text))
	return "emotion:" + fingerprint + ":" + hex.EncodeToString(sum[:])
}

func cloneEntry(e *Entry) *Entry {
	if e == nil {
		return nil
	}
	out := &Entry{Label: e.Label, Distribution: make([]float64, len(e.Distribution))}
	copy(out.Distribution, e.Distribution)
	return out
}

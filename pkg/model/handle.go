// Package model owns the pre-trained classifier artifact: loading it once,
// exposing its class list, and running label and distribution prediction.
package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrModelUnavailable wraps every failure to obtain a usable artifact.
var ErrModelUnavailable = errors.New("model unavailable")

// Handle is the process-wide, read-only view of a loaded artifact.
// It is safe for concurrent use.
type Handle struct {
	artifact    Artifact
	classes     ClassList
	source      string
	fingerprint string
}

// HandleOption customizes New.
type HandleOption func(*Handle)

// WithFingerprint sets the identity used to namespace cache keys. Handles
// sharing a fingerprint share cached predictions, so it must change whenever
// the artifact's behaviour does.
func WithFingerprint(fp string) HandleOption {
	return func(h *Handle) { h.fingerprint = fp }
}

// New wraps an already constructed artifact. Artifacts that do not report
// ConcurrencySafe are placed behind a mutex. Without WithFingerprint every
// handle gets a fingerprint of its own.
func New(artifact Artifact, opts ...HandleOption) (*Handle, error) {
	if artifact == nil {
		return nil, fmt.Errorf("%w: nil artifact", ErrModelUnavailable)
	}

	classes := ClassList(artifact.Classes()).Clone()
	if err := classes.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	if !isConcurrencySafe(artifact) {
		artifact = Synchronized(artifact)
	}

	h := &Handle{
		artifact: artifact,
		classes:  classes,
		source:   "memory",
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.fingerprint == "" {
		sum := sha256.Sum256([]byte(strings.Join(classes, "\x00") + "\x00" + uuid.NewString()))
		h.fingerprint = hex.EncodeToString(sum[:])
	}
	return h, nil
}

type loadOptions struct {
	format  Format
	sources map[string]Source
}

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

// WithFormat forces the artifact encoding instead of guessing it.
func WithFormat(f Format) LoadOption {
	return func(o *loadOptions) { o.format = f }
}

// WithSource registers src for locations with the given scheme ("file", "s3", ...).
func WithSource(scheme string, src Source) LoadOption {
	return func(o *loadOptions) { o.sources[strings.ToLower(scheme)] = src }
}

// Fetch returns the raw artifact bytes at location, using the source
// registered for its scheme.
func Fetch(ctx context.Context, location string, opts ...LoadOption) ([]byte, error) {
	o := newLoadOptions(opts)
	return o.fetch(ctx, location)
}

// Load fetches, decodes and validates the artifact at location. Any failure
// is returned wrapped in ErrModelUnavailable.
func Load(ctx context.Context, location string, opts ...LoadOption) (*Handle, error) {
	o := newLoadOptions(opts)

	data, err := o.fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	format := o.format
	if format == "" {
		format, _ = FormatFor(location)
	}
	artifact, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelUnavailable, location, err)
	}

	sum := sha256.Sum256(data)
	h, err := New(artifact, WithFingerprint(hex.EncodeToString(sum[:])))
	if err != nil {
		return nil, err
	}
	h.source = location
	return h, nil
}

func newLoadOptions(opts []LoadOption) loadOptions {
	o := loadOptions{sources: map[string]Source{"file": FileSource{}}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o loadOptions) fetch(ctx context.Context, location string) ([]byte, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("no model location configured")
	}
	src, ok := o.sources[scheme(location)]
	if !ok {
		return nil, fmt.Errorf("no source for %s", location)
	}
	return src.Fetch(ctx, location)
}

// Classes returns a copy of the class list.
func (h *Handle) Classes() ClassList {
	return h.classes.Clone()
}

// NumClasses returns the number of classes.
func (h *Handle) NumClasses() int {
	return len(h.classes)
}

// PredictLabel returns the most probable class for text.
func (h *Handle) PredictLabel(text string) string {
	return h.artifact.PredictLabel(text)
}

// PredictDistribution returns a fresh slice of probabilities aligned with Classes.
func (h *Handle) PredictDistribution(text string) []float64 {
	dist := h.artifact.PredictDistribution(text)
	out := make([]float64, len(dist))
	copy(out, dist)
	return out
}

// Fingerprint identifies the loaded artifact. Loaded artifacts use the
// SHA-256 of their bytes; handles built with New are unique unless
// WithFingerprint was given.
func (h *Handle) Fingerprint() string {
	return h.fingerprint
}

// Source returns where the artifact came from.
func (h *Handle) Source() string {
	return h.source
}

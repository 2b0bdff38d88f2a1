package classifier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FrenchMajesty/emotion-classifier/pkg/cache"
	"github.com/FrenchMajesty/emotion-classifier/pkg/model"
	"github.com/FrenchMajesty/emotion-classifier/pkg/validate"
)

const (
	reasonModelUnavailable = "sentiment analysis model not loaded"
	reasonInferenceFailed  = "model inference failed"
)

// Classifier turns raw text into an emotion label, a confidence and a
// per-class distribution. It is safe for concurrent use.
type Classifier struct {
	model        *model.Handle
	modelErr     error
	classes      model.ClassList
	defaultLabel string
	input        validate.InputPolicy
	distribution validate.DistributionPolicy
	annotate     func(string) string
	cache        cache.Cache
	batchLimit   int
	logger       *slog.Logger

	// Metrics tracking
	metrics     Metrics
	predictions int
	metricsLock sync.Mutex

	shutdownOnce sync.Once
}

// NewClassifier creates a new Classifier with the given configuration.
// A model that fails to load does not fail construction: the classifier
// runs in degraded mode and every request reports OutcomeModelUnavailable.
func NewClassifier(ctx context.Context, cfg Config) (*Classifier, error) {
	cfg.applyDefaults()

	if cfg.Input.MinLetters < 0 {
		return nil, fmt.Errorf("minimum letter count must not be negative, got %d", cfg.Input.MinLetters)
	}
	if cfg.Distribution.Tolerance < 0 {
		return nil, fmt.Errorf("distribution tolerance must not be negative, got %g", cfg.Distribution.Tolerance)
	}

	c := &Classifier{
		defaultLabel: cfg.DefaultLabel,
		input:        cfg.Input,
		distribution: cfg.Distribution,
		annotate:     cfg.Annotate,
		cache:        cfg.Cache,
		batchLimit:   cfg.BatchConcurrency,
		logger:       cfg.Logger,
	}

	handle := cfg.Model
	if handle == nil {
		var err error
		handle, err = model.Load(ctx, cfg.ModelPath, cfg.LoadOptions...)
		if err != nil {
			c.modelErr = err
			c.logger.Error("model failed to load, running in degraded mode",
				"path", cfg.ModelPath,
				"default_label", c.defaultLabel,
				"err", err,
			)
			return c, nil
		}
	}

	c.model = handle
	c.classes = handle.Classes()
	c.logger.Info("model loaded",
		"source", handle.Source(),
		"classes", len(c.classes),
		"fingerprint", shortFingerprint(handle.Fingerprint()),
	)
	return c, nil
}

// Classify classifies the given text. It never fails: every path ends in a
// Result whose Outcome says which terminal state was reached.
func (c *Classifier) Classify(ctx context.Context, text string) *Result {
	start := time.Now()
	result := c.classify(ctx, text)
	result.Latency = time.Since(start)
	c.record(result)
	return result
}

func (c *Classifier) classify(ctx context.Context, text string) *Result {
	// Step 1: minimum-content check
	in := c.input.Validate(text)
	if !in.Accepted() {
		c.logger.Debug("input rejected", "reason", in.Reason)
		return &Result{Outcome: OutcomeInvalidInput, Reason: in.Reason}
	}

	// Step 2: degraded mode
	if c.model == nil {
		c.logger.Warn("classification requested without a model", "err", c.modelErr)
		return c.unavailable(reasonModelUnavailable)
	}

	// Step 3: inference, possibly served from the cache
	label, dist, cacheHit, err := c.predict(ctx, in.Text)
	if err != nil {
		c.logger.Error("label prediction failed", "err", err)
		return c.unavailable(reasonInferenceFailed + ": " + err.Error())
	}

	// Step 4: numeric checks before anything is charted
	if err := c.distribution.Check(dist, c.classes); err != nil {
		c.logger.Warn("model returned an invalid distribution", "label", label, "err", err)
		return &Result{
			Outcome:  OutcomeDistributionInvalid,
			Label:    label,
			Glyph:    c.annotate(label),
			Reason:   err.Error(),
			CacheHit: cacheHit,
		}
	}

	distribution := make(Distribution, len(dist))
	for i, p := range dist {
		distribution[i] = Probability{Label: c.classes[i], Probability: p}
	}
	best, _ := distribution.Max()
	confidence := best.Probability

	return &Result{
		Outcome:      OutcomeOK,
		Label:        label,
		Glyph:        c.annotate(label),
		Confidence:   &confidence,
		Distribution: distribution,
		CacheHit:     cacheHit,
	}
}

func (c *Classifier) unavailable(reason string) *Result {
	return &Result{
		Outcome: OutcomeModelUnavailable,
		Label:   c.defaultLabel,
		Glyph:   c.annotate(c.defaultLabel),
		Reason:  reason,
	}
}

// predict returns the label and raw distribution for text. An error means no
// label could be produced; a failed distribution comes back as nil.
func (c *Classifier) predict(ctx context.Context, text string) (string, []float64, bool, error) {
	var key string
	if c.cache != nil {
		key = cache.Key(c.model.Fingerprint(), text)
		entry, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn("prediction cache lookup failed", "err", err)
		case ok && entry != nil:
			return entry.Label, entry.Distribution, true, nil
		}
	}

	label, err := recoverCall(func() string { return c.model.PredictLabel(text) })
	if err != nil {
		return "", nil, false, err
	}

	dist, err := recoverCall(func() []float64 { return c.model.PredictDistribution(text) })
	if err != nil {
		c.logger.Error("distribution prediction failed", "label", label, "err", err)
		return label, nil, false, nil
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, &cache.Entry{Label: label, Distribution: dist}); err != nil {
			c.logger.Warn("prediction cache store failed", "err", err)
		}
	}
	return label, dist, false, nil
}

// recoverCall turns a panic inside fn into an error.
func recoverCall[T any](fn func() T) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()
	return fn(), nil
}

// ClassifyBatch classifies texts concurrently and returns results in input
// order. It only fails when ctx is done before every text was classified.
func (c *Classifier) ClassifyBatch(ctx context.Context, texts []string) ([]*Result, error) {
	results := make([]*Result, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.batchLimit)
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.Classify(gctx, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch classification interrupted: %w", err)
	}
	return results, nil
}

// Available reports whether a model is loaded
func (c *Classifier) Available() bool {
	return c.model != nil
}

// ModelError returns the load failure behind degraded mode, or nil
func (c *Classifier) ModelError() error {
	return c.modelErr
}

// Model returns the loaded handle, or nil in degraded mode
func (c *Classifier) Model() *model.Handle {
	return c.model
}

// Classes returns the labels the model can predict, or nil in degraded mode
func (c *Classifier) Classes() []string {
	if c.model == nil {
		return nil
	}
	return c.classes.Clone()
}

// GetMetrics returns current classification metrics
func (c *Classifier) GetMetrics() Metrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	m := c.metrics
	if c.predictions > 0 {
		m.CacheHitRate = float32(m.CacheHits) / float32(c.predictions) * 100
	}
	return m
}

// record updates metrics for a finished classification
func (c *Classifier) record(r *Result) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.Total++
	switch r.Outcome {
	case OutcomeOK:
		c.metrics.OK++
		c.predictions++
	case OutcomeInvalidInput:
		c.metrics.InvalidInput++
	case OutcomeModelUnavailable:
		c.metrics.ModelUnavailable++
	case OutcomeDistributionInvalid:
		c.metrics.DistributionInvalid++
		c.predictions++
	}
	if r.CacheHit {
		c.metrics.CacheHits++
	}
}

// Close releases the prediction cache if it holds resources. It's safe to call Close multiple times.
func (c *Classifier) Close() error {
	var err error
	c.shutdownOnce.Do(func() {
		if closer, ok := c.cache.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return err
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

package classifier

import (
	"log/slog"

	"github.com/FrenchMajesty/emotion-classifier/pkg/cache"
	"github.com/FrenchMajesty/emotion-classifier/pkg/emoji"
	"github.com/FrenchMajesty/emotion-classifier/pkg/model"
	"github.com/FrenchMajesty/emotion-classifier/pkg/validate"
)

const (
	// DefaultLabel is returned when no model is loaded
	DefaultLabel = "neutral"

	// DefaultModelPath is the default location of the classifier artifact
	DefaultModelPath = "./models/emotion_classifier.json"

	// DefaultBatchConcurrency bounds ClassifyBatch fan-out
	DefaultBatchConcurrency = 4
)

// Config holds configuration for the Classifier
type Config struct {
	// Model is an already loaded handle. If nil, ModelPath is loaded.
	Model *model.Handle

	// ModelPath is the artifact location, a file path or s3://bucket/key. If empty, uses DefaultModelPath.
	ModelPath string

	// LoadOptions are passed to model.Load when ModelPath is used
	LoadOptions []model.LoadOption

	// DefaultLabel is the label reported in degraded mode. If empty, uses DefaultLabel.
	DefaultLabel string

	// Input is the minimum-content policy. The zero value is the reference policy.
	Input validate.InputPolicy

	// Distribution is the numeric check applied to model output
	Distribution validate.DistributionPolicy

	// Annotate maps a label onto its glyph. If nil, uses emoji.Annotate.
	Annotate func(label string) string

	// Cache stores raw model output. If nil, every request runs inference.
	Cache cache.Cache

	// BatchConcurrency bounds ClassifyBatch. If 0, uses DefaultBatchConcurrency.
	BatchConcurrency int

	// Logger receives structured logs. If nil, uses slog.Default().
	Logger *slog.Logger
}

// applyDefaults fills in default values for unset config fields
func (c *Config) applyDefaults() {
	if c.ModelPath == "" {
		c.ModelPath = DefaultModelPath
	}
	if c.DefaultLabel == "" {
		c.DefaultLabel = DefaultLabel
	}
	if c.Annotate == nil {
		c.Annotate = emoji.Annotate
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = DefaultBatchConcurrency
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

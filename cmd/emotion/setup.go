package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	classifier "github.com/FrenchMajesty/emotion-classifier"
	"github.com/FrenchMajesty/emotion-classifier/internal/config"
	"github.com/FrenchMajesty/emotion-classifier/internal/retry"
	"github.com/FrenchMajesty/emotion-classifier/pkg/cache"
	"github.com/FrenchMajesty/emotion-classifier/pkg/model"
	"github.com/FrenchMajesty/emotion-classifier/pkg/validate"
)

// newLogger builds the process logger.
func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadOptions registers the artifact sources the configuration allows.
func loadOptions(ctx context.Context, cfg *config.Cfg, logger *slog.Logger) ([]model.LoadOption, error) {
	client, err := model.NewS3Client(ctx, model.S3Config{
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 source: %w", err)
	}
	return []model.LoadOption{
		model.WithSource("s3", model.NewS3Source(client, retry.DefaultConfig(), logger)),
	}, nil
}

// newCache returns the prediction cache for cfg, or nil when disabled.
func newCache(ctx context.Context, cfg *config.Cfg, logger *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheMemory:
		logger.Info("prediction cache enabled", "backend", "memory", "ttl", cfg.CacheTTL)
		return cache.NewMemory(cfg.CacheTTL), nil
	case config.CacheRedis:
		opts := cache.DefaultRedisOptions()
		opts.Address = cfg.Redis.Addr
		opts.Password = cfg.Redis.Password
		opts.DB = cfg.Redis.DB
		opts.TTL = cfg.CacheTTL

		r := cache.NewRedis(opts)
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, err
		}
		logger.Info("prediction cache enabled", "backend", "redis", "addr", opts.Address, "ttl", cfg.CacheTTL)
		return r, nil
	default:
		return nil, nil
	}
}

// newClassifier wires configuration into a Classifier. A model that fails
// to load leaves the classifier degraded; a cache that cannot be reached is
// an error.
func newClassifier(ctx context.Context, cfg *config.Cfg, logger *slog.Logger) (*classifier.Classifier, error) {
	sources, err := loadOptions(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	c, err := newCache(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("prediction cache: %w", err)
	}

	clf, err := classifier.NewClassifier(ctx, classifier.Config{
		ModelPath:    cfg.ModelPath,
		LoadOptions:  sources,
		DefaultLabel: cfg.DefaultLabel,
		Input: validate.InputPolicy{
			MinLetters: cfg.MinLetters,
			Unicode:    cfg.UnicodeLetters,
		},
		Distribution:     validate.DistributionPolicy{Tolerance: cfg.SumTolerance},
		Cache:            c,
		BatchConcurrency: cfg.BatchConcurrency,
		Logger:           logger,
	})
	if err != nil {
		if closer, ok := c.(io.Closer); ok {
			closer.Close()
		}
		return nil, err
	}
	return clf, nil
}

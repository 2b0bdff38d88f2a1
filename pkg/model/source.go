package model

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Source fetches the raw bytes of an artifact.
type Source interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// FileSource reads artifacts from the local file system.
type FileSource struct{}

// Fetch reads location, which may carry a file:// prefix.
func (FileSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	filepath := strings.TrimPrefix(location, "file://")

	if _, err := os.Stat(filepath); err != nil {
		return nil, fmt.Errorf("model file %s: %w", filepath, err)
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model from file %s: %w", filepath, err)
	}
	return data, nil
}

// scheme returns the URL scheme of location, or "file" for plain paths.
func scheme(location string) string {
	if i := strings.Index(location, "://"); i > 0 {
		return strings.ToLower(location[:i])
	}
	return "file"
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is an on-disk encoding of a LinearModel.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// FormatFor picks a format from the extension of location.
func FormatFor(location string) (Format, bool) {
	switch strings.ToLower(path.Ext(location)) {
	case ".json":
		return FormatJSON, true
	case ".msgpack", ".mp":
		return FormatMsgpack, true
	default:
		return "", false
	}
}

// sniffFormat treats a leading '{' as JSON and anything else as msgpack.
func sniffFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatMsgpack
}

// Decode parses and prepares a LinearModel. An empty format is sniffed from data.
func Decode(data []byte, format Format) (*LinearModel, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: artifact is empty", ErrInvalidArtifact)
	}
	if format == "" {
		format = sniffFormat(data)
	}

	m := &LinearModel{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON artifact: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal msgpack artifact: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown artifact format %q", format)
	}

	if err := m.Prepare(); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode writes m in the given format.
func Encode(w io.Writer, m *LinearModel, format Format) error {
	if err := m.Prepare(); err != nil {
		return err
	}
	out := *m
	out.Version = LinearModelVersion

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(&out)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(&out)
	default:
		return fmt.Errorf("unknown artifact format %q", format)
	}
}

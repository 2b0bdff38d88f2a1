package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	classifier "github.com/FrenchMajesty/emotion-classifier"
	"github.com/FrenchMajesty/emotion-classifier/internal/config"
	"github.com/FrenchMajesty/emotion-classifier/pkg/cache"
	"github.com/FrenchMajesty/emotion-classifier/pkg/model"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestReadText(t *testing.T) {
	text, err := readText([]string{"I", "am", "happy"}, strings.NewReader("ignored"), true)
	require.NoError(t, err)
	assert.Equal(t, "I am happy", text)

	text, err = readText(nil, strings.NewReader("from stdin\n"), true)
	require.NoError(t, err)
	assert.Equal(t, "from stdin\n", text)

	_, err = readText(nil, strings.NewReader(""), false)
	assert.Error(t, err)
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("first\n\n   \nsecond\nthird"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, lines)
}

func TestUseColor(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.True(t, useColor("on", f))
	assert.False(t, useColor("off", f))
	assert.False(t, useColor("auto", f), "regular files are not terminals")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, slog.LevelWarn, "json").Info("hidden")
	newLogger(&buf, slog.LevelWarn, "json").Warn("shown", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "v", line["k"])

	buf.Reset()
	newLogger(&buf, slog.LevelInfo, "text").Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestNewCache(t *testing.T) {
	cfg := config.Default()

	c, err := newCache(context.Background(), cfg, quiet)
	require.NoError(t, err)
	assert.Nil(t, c)

	cfg.CacheBackend = config.CacheMemory
	c, err = newCache(context.Background(), cfg, quiet)
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, c)

	cfg.CacheBackend = config.CacheRedis
	cfg.Redis.Addr = "127.0.0.1:1"
	_, err = newCache(context.Background(), cfg, quiet)
	assert.Error(t, err)
}

func TestNewClassifier_Degraded(t *testing.T) {
	cfg := config.Default()
	cfg.ModelPath = t.TempDir() + "/missing.json"

	clf, err := newClassifier(context.Background(), cfg, quiet)
	require.NoError(t, err)
	defer clf.Close()
	assert.False(t, clf.Available())
}

func TestPrinter_Result(t *testing.T) {
	p := newPrinter(false)
	conf := 0.75

	var buf bytes.Buffer
	p.result(&buf, &classifier.Result{
		Outcome:    classifier.OutcomeOK,
		Label:      "happy",
		Glyph:      "🤗",
		Confidence: &conf,
		Distribution: classifier.Distribution{
			{Label: "happy", Probability: 0.75},
			{Label: "sad", Probability: 0.25},
		},
	})
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "happy 🤗  75.0%\n"))
	assert.Contains(t, out, "happy "+strings.Repeat("█", 18)+strings.Repeat("░", 6))
	assert.Contains(t, out, " 25.0%")

	buf.Reset()
	p.result(&buf, &classifier.Result{Outcome: classifier.OutcomeInvalidInput, Reason: "insufficient alphabetic content"})
	assert.Equal(t, "invalid input: insufficient alphabetic content\n", buf.String())

	buf.Reset()
	p.result(&buf, &classifier.Result{Outcome: classifier.OutcomeDistributionInvalid, Label: "sad", Glyph: "😔", Reason: "distribution is empty"})
	assert.Contains(t, buf.String(), "sad 😔\n")
	assert.Contains(t, buf.String(), "distribution is empty")
}

func TestDescribe(t *testing.T) {
	m := &model.LinearModel{
		Labels:     []string{"joy", "sad"},
		Features:   model.FeatureConfig{HashDim: 64, NGramMax: 2},
		Weights:    [][]float64{make([]float64, 64), make([]float64, 64)},
		Intercepts: []float64{0, 0},
	}
	require.NoError(t, m.Prepare())

	var buf bytes.Buffer
	describe(&buf, "model.json", "abc", 123, m)

	out := buf.String()
	assert.Contains(t, out, "classes:     2")
	assert.Contains(t, out, "   0 joy")
	assert.Contains(t, out, "hashed (64 columns)")
	assert.Contains(t, out, "ngram max:   2")
}

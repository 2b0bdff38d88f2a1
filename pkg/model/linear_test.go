package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vocabModel(t *testing.T) *LinearModel {
	t.Helper()
	m := &LinearModel{
		Labels: []string{"anger", "happy", "sad"},
		Features: FeatureConfig{
			Vocabulary: map[string]int{"happy": 0, "angry": 1, "sad": 2, "today": 3},
		},
		Weights: [][]float64{
			{0, 3, 0, 0},
			{3, 0, 0, 0},
			{0, 0, 3, 0},
		},
	}
	require.NoError(t, m.Prepare())
	return m
}

func TestLinearModel_Predict(t *testing.T) {
	m := vocabModel(t)

	assert.Equal(t, "happy", m.PredictLabel("I am so happy today!"))
	assert.Equal(t, "anger", m.PredictLabel("ANGRY!!"))
	assert.Equal(t, "sad", m.PredictLabel("sad, sad, sad"))

	dist := m.PredictDistribution("I am so happy today!")
	require.Len(t, dist, 3)
	want := math.Exp(3) / (math.Exp(3) + 2)
	assert.InDelta(t, want, dist[1], 1e-9)

	sum := 0.0
	for _, v := range dist {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestLinearModel_TieGoesToFirstClass(t *testing.T) {
	m := vocabModel(t)

	assert.Equal(t, "anger", m.PredictLabel("nothing known here"))
	for _, v := range m.PredictDistribution("nothing known here") {
		assert.InDelta(t, 1.0/3, v, 1e-12)
	}
}

func TestLinearModel_Intercepts(t *testing.T) {
	m := vocabModel(t)
	m.Intercepts = []float64{0, 0, 1}
	require.NoError(t, m.Prepare())

	assert.Equal(t, "sad", m.PredictLabel("unknown words"))
}

func TestLinearModel_Bigrams(t *testing.T) {
	m := &LinearModel{
		Labels: []string{"happy", "sad"},
		Features: FeatureConfig{
			Vocabulary: map[string]int{"happy": 0, "not happy": 1},
			NGramMax:   2,
		},
		Weights: [][]float64{
			{2, -3},
			{0, 3},
		},
	}
	require.NoError(t, m.Prepare())

	assert.Equal(t, "happy", m.PredictLabel("so happy"))
	assert.Equal(t, "sad", m.PredictLabel("not happy at all"))
}

func TestLinearModel_HashedFeatures(t *testing.T) {
	m := &LinearModel{
		Labels:   []string{"neutral", "joy"},
		Features: FeatureConfig{HashDim: 32, Normalize: true},
		Weights:  [][]float64{make([]float64, 32), make([]float64, 32)},
	}
	require.NoError(t, m.Prepare())

	col, ok := m.column("delighted")
	require.True(t, ok)
	require.GreaterOrEqual(t, col, 0)
	require.Less(t, col, 32)
	m.Weights[1][col] = 4

	assert.Equal(t, "joy", m.PredictLabel("Delighted"))
	assert.Equal(t, "neutral", m.PredictLabel("..."))
}

func TestLinearModel_Normalize(t *testing.T) {
	m := vocabModel(t)
	m.Features.Normalize = true
	require.NoError(t, m.Prepare())

	once := m.PredictDistribution("happy")
	many := m.PredictDistribution("happy happy happy happy")
	assert.InDeltaSlice(t, once, many, 1e-12)
}

func TestLinearModel_Deterministic(t *testing.T) {
	m := vocabModel(t)
	first := m.PredictDistribution("happy and sad today")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, m.PredictDistribution("happy and sad today"))
	}
}

func TestLinearModel_PrepareErrors(t *testing.T) {
	tests := []struct {
		name  string
		model LinearModel
	}{
		{
			name:  "no classes",
			model: LinearModel{Features: FeatureConfig{HashDim: 4}},
		},
		{
			name: "duplicate classes",
			model: LinearModel{
				Labels:   []string{"joy", "joy"},
				Features: FeatureConfig{HashDim: 1},
				Weights:  [][]float64{{0}, {0}},
			},
		},
		{
			name: "no features",
			model: LinearModel{
				Labels:  []string{"joy"},
				Weights: [][]float64{{}},
			},
		},
		{
			name: "vocabulary and hashing",
			model: LinearModel{
				Labels:   []string{"joy"},
				Features: FeatureConfig{Vocabulary: map[string]int{"a": 0}, HashDim: 1},
				Weights:  [][]float64{{0}},
			},
		},
		{
			name: "vocabulary column out of range",
			model: LinearModel{
				Labels:   []string{"joy"},
				Features: FeatureConfig{Vocabulary: map[string]int{"aa": 3}},
				Weights:  [][]float64{{0}},
			},
		},
		{
			name: "missing weight row",
			model: LinearModel{
				Labels:   []string{"joy", "sad"},
				Features: FeatureConfig{HashDim: 2},
				Weights:  [][]float64{{0, 0}},
			},
		},
		{
			name: "short weight row",
			model: LinearModel{
				Labels:   []string{"joy"},
				Features: FeatureConfig{HashDim: 2},
				Weights:  [][]float64{{0}},
			},
		},
		{
			name: "intercept count",
			model: LinearModel{
				Labels:     []string{"joy"},
				Features:   FeatureConfig{HashDim: 1},
				Weights:    [][]float64{{0}},
				Intercepts: []float64{0, 1},
			},
		},
		{
			name: "unsupported version",
			model: LinearModel{
				Version:  9,
				Labels:   []string{"joy"},
				Features: FeatureConfig{HashDim: 1},
				Weights:  [][]float64{{0}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.model.Prepare()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArtifact), "error %v should wrap ErrInvalidArtifact", err)
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"am", "so", "happy", "today"}, tokenize("I am so happy today!"))
	assert.Equal(t, []string{"don", "go", "42"}, tokenize("Don't go... 42"))
	assert.Equal(t, []string{"happy"}, tokenize("HAPPY"))
	assert.Equal(t, []string{"fine"}, tokenize("\ufb01ne"))
	assert.Empty(t, tokenize("..."))
}

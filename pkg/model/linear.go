package model

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"fortio.org/safecast"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// LinearModelVersion is the artifact schema version written by Encode.
const LinearModelVersion = 1

var ErrInvalidArtifact = errors.New("invalid artifact")

// FeatureConfig describes how text is turned into a sparse feature vector.
// Exactly one of Vocabulary and HashDim must be set.
type FeatureConfig struct {
	// Vocabulary maps a token or n-gram to its column.
	Vocabulary map[string]int `json:"vocabulary,omitempty" msgpack:"vocabulary,omitempty"`

	// HashDim is the number of hashed columns when no vocabulary is given.
	HashDim int `json:"hash_dim,omitempty" msgpack:"hash_dim,omitempty"`

	// NGramMax is the longest n-gram counted. If 0, only unigrams.
	NGramMax int `json:"ngram_max,omitempty" msgpack:"ngram_max,omitempty"`

	// Normalize scales each feature vector to unit L2 norm.
	Normalize bool `json:"normalize,omitempty" msgpack:"normalize,omitempty"`
}

// LinearModel is a multinomial logistic regression over bag-of-n-gram
// features. It is immutable once prepared, so inference is safe for
// concurrent use.
type LinearModel struct {
	Version    int           `json:"version" msgpack:"version"`
	Labels     []string      `json:"classes" msgpack:"classes"`
	Features   FeatureConfig `json:"features" msgpack:"features"`
	Weights    [][]float64   `json:"weights" msgpack:"weights"`
	Intercepts []float64     `json:"intercepts,omitempty" msgpack:"intercepts,omitempty"`

	dim     int
	hashDim uint32
}

// Prepare validates the model and computes derived fields. It must be called
// before the model is shared; Decode does it for you.
func (m *LinearModel) Prepare() error {
	if m.Version != 0 && m.Version != LinearModelVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidArtifact, m.Version)
	}
	if err := ClassList(m.Labels).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	hasVocab := len(m.Features.Vocabulary) > 0
	switch {
	case hasVocab && m.Features.HashDim > 0:
		return fmt.Errorf("%w: both vocabulary and hash_dim are set", ErrInvalidArtifact)
	case hasVocab:
		m.dim = len(m.Features.Vocabulary)
		for term, col := range m.Features.Vocabulary {
			if col < 0 || col >= m.dim {
				return fmt.Errorf("%w: vocabulary term %q maps to column %d of %d", ErrInvalidArtifact, term, col, m.dim)
			}
		}
	case m.Features.HashDim > 0:
		hashDim, err := safecast.Conv[uint32](m.Features.HashDim)
		if err != nil {
			return fmt.Errorf("%w: hash_dim: %w", ErrInvalidArtifact, err)
		}
		m.dim = m.Features.HashDim
		m.hashDim = hashDim
	default:
		return fmt.Errorf("%w: neither vocabulary nor hash_dim is set", ErrInvalidArtifact)
	}

	if m.Features.NGramMax < 0 {
		return fmt.Errorf("%w: ngram_max %d", ErrInvalidArtifact, m.Features.NGramMax)
	}
	if len(m.Weights) != len(m.Labels) {
		return fmt.Errorf("%w: %d weight rows for %d classes", ErrInvalidArtifact, len(m.Weights), len(m.Labels))
	}
	for i, row := range m.Weights {
		if len(row) != m.dim {
			return fmt.Errorf("%w: weight row %d has %d columns, want %d", ErrInvalidArtifact, i, len(row), m.dim)
		}
	}
	if len(m.Intercepts) != 0 && len(m.Intercepts) != len(m.Labels) {
		return fmt.Errorf("%w: %d intercepts for %d classes", ErrInvalidArtifact, len(m.Intercepts), len(m.Labels))
	}
	return nil
}

// Classes implements Artifact.
func (m *LinearModel) Classes() []string {
	out := make([]string, len(m.Labels))
	copy(out, m.Labels)
	return out
}

// ConcurrencySafe implements ConcurrencySafe.
func (m *LinearModel) ConcurrencySafe() bool { return true }

// PredictLabel implements Artifact. Ties go to the lowest class index.
func (m *LinearModel) PredictLabel(text string) string {
	scores := m.scores(text)
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return m.Labels[best]
}

// PredictDistribution implements Artifact.
func (m *LinearModel) PredictDistribution(text string) []float64 {
	return softmax(m.scores(text))
}

func (m *LinearModel) scores(text string) []float64 {
	features := m.featurize(text)
	scores := make([]float64, len(m.Labels))
	for k, row := range m.Weights {
		s := 0.0
		if len(m.Intercepts) > 0 {
			s = m.Intercepts[k]
		}
		for col, v := range features {
			s += row[col] * v
		}
		scores[k] = s
	}
	return scores
}

func (m *LinearModel) featurize(text string) map[int]float64 {
	tokens := tokenize(text)
	ngramMax := m.Features.NGramMax
	if ngramMax == 0 {
		ngramMax = 1
	}

	features := make(map[int]float64)
	for n := 1; n <= ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := strings.Join(tokens[i:i+n], " ")
			if col, ok := m.column(term); ok {
				features[col]++
			}
		}
	}

	if m.Features.Normalize && len(features) > 0 {
		sumSq := 0.0
		for _, v := range features {
			sumSq += v * v
		}
		norm := 1 / math.Sqrt(sumSq)
		for col, v := range features {
			features[col] = v * norm
		}
	}
	return features
}

func (m *LinearModel) column(term string) (int, bool) {
	if m.hashDim == 0 {
		col, ok := m.Features.Vocabulary[term]
		return col, ok
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(term))
	return int(h.Sum32() % m.hashDim), true
}

// tokenize folds case, applies NFKC and keeps runs of two or more word characters.
func tokenize(text string) []string {
	text = cases.Fold().String(norm.NFKC.String(text))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func softmax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	sum := 0.0
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

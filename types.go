package classifier

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/FrenchMajesty/emotion-classifier/pkg/model"
)

var (
	// ErrInvalidInput means the text did not pass the minimum-content check
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelUnavailable means no usable model is loaded
	ErrModelUnavailable = model.ErrModelUnavailable

	// ErrDistributionInvalid means the model returned a degenerate probability vector
	ErrDistributionInvalid = errors.New("distribution invalid")
)

// Outcome tags which terminal state a classification reached.
// The zero value is OutcomeUnknown, so an unset Result never reads as a success.
type Outcome int

const (
	// OutcomeUnknown marks a Result no classification produced
	OutcomeUnknown Outcome = iota

	// OutcomeOK is a fully populated result
	OutcomeOK

	// OutcomeInvalidInput is a rejection of the submitted text
	OutcomeInvalidInput

	// OutcomeModelUnavailable is the degraded answer given when the model cannot
	// produce a label. Either no model is loaded (Available reports false) or a
	// loaded model failed on this one input, in which case Available stays true
	// and Reason starts with "model inference failed".
	OutcomeModelUnavailable

	// OutcomeDistributionInvalid carries a label but no confidence or distribution
	OutcomeDistributionInvalid
)

var outcomeNames = map[Outcome]string{
	OutcomeUnknown:             "unknown",
	OutcomeOK:                  "ok",
	OutcomeInvalidInput:        "invalid_input",
	OutcomeModelUnavailable:    "model_unavailable",
	OutcomeDistributionInvalid: "distribution_invalid",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Outcome) UnmarshalText(text []byte) error {
	for k, v := range outcomeNames {
		if v == string(text) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Probability is one class of a distribution
type Probability struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Distribution is the per-class probability vector, in class list order
type Distribution []Probability

// Map returns the distribution as label -> probability
func (d Distribution) Map() map[string]float64 {
	out := make(map[string]float64, len(d))
	for _, p := range d {
		out[p.Label] = p.Probability
	}
	return out
}

// Max returns the most probable entry. The first one wins ties.
func (d Distribution) Max() (Probability, bool) {
	if len(d) == 0 {
		return Probability{}, false
	}
	best := d[0]
	for _, p := range d[1:] {
		if p.Probability > best.Probability {
			best = p
		}
	}
	return best, true
}

// Sorted returns a copy ordered by descending probability, for charting
func (d Distribution) Sorted() Distribution {
	out := make(Distribution, len(d))
	copy(out, d)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

// Result represents the classification result
type Result struct {
	// Outcome tags which of the terminal states produced this result
	Outcome Outcome `json:"outcome"`

	// Label is the emotion assigned to the text. Empty for invalid input.
	Label string `json:"label,omitempty"`

	// Glyph is the emoji for Label, or "" when the label has none
	Glyph string `json:"glyph,omitempty"`

	// Confidence is the maximum of Distribution. Nil when the distribution is absent.
	Confidence *float64 `json:"confidence,omitempty"`

	// Distribution is the per-class probability vector. Nil unless Outcome is OutcomeOK.
	Distribution Distribution `json:"distribution,omitempty"`

	// Reason explains a rejection or a degraded result
	Reason string `json:"reason,omitempty"`

	// CacheHit indicates whether the model output came from the prediction cache
	CacheHit bool `json:"cache_hit"`

	// Latency is the time spent producing the result
	Latency time.Duration `json:"latency_ns"`

	// RequestID correlates the result with the request that produced it. Set by transports.
	RequestID string `json:"request_id,omitempty"`
}

// DistributionInvalid reports whether the label is usable but the chart and
// confidence must be suppressed
func (r *Result) DistributionInvalid() bool {
	return r.Outcome == OutcomeDistributionInvalid
}

// Err maps the outcome onto the package sentinel errors. It is nil for OutcomeOK.
func (r *Result) Err() error {
	switch r.Outcome {
	case OutcomeOK:
		return nil
	case OutcomeInvalidInput:
		return fmt.Errorf("%w: %s", ErrInvalidInput, r.Reason)
	case OutcomeModelUnavailable:
		return fmt.Errorf("%w: %s", ErrModelUnavailable, r.Reason)
	case OutcomeDistributionInvalid:
		return fmt.Errorf("%w: %s", ErrDistributionInvalid, r.Reason)
	case OutcomeUnknown:
		return errors.New("result has no outcome")
	default:
		return fmt.Errorf("unknown outcome %d", int(r.Outcome))
	}
}

// Metrics provides statistics about the classifier's activity
type Metrics struct {
	// Total is the number of Classify calls
	Total int `json:"total"`

	// OK, InvalidInput, ModelUnavailable and DistributionInvalid count results by outcome
	OK                  int `json:"ok"`
	InvalidInput        int `json:"invalid_input"`
	ModelUnavailable    int `json:"model_unavailable"`
	DistributionInvalid int `json:"distribution_invalid"`

	// CacheHits is the number of predictions served from the cache
	CacheHits int `json:"cache_hits"`

	// CacheHitRate is the percentage of predictions served from the cache
	CacheHitRate float32 `json:"cache_hit_rate"`
}

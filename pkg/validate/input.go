// Package validate decides whether input text is worth classifying and
// whether a probability vector returned by a model can be trusted.
package validate

import (
	"strings"
	"unicode"
)

const (
	// DefaultMinLetters is the minimum number of letters an input must contain.
	DefaultMinLetters = 2

	// ReasonInsufficientAlpha is the rejection reason for text without enough letters.
	ReasonInsufficientAlpha = "insufficient alphabetic content"
)

// Outcome is the result of validating one piece of input text.
// An accepted outcome carries the trimmed text; a rejected one carries the reason.
type Outcome struct {
	Text   string
	Reason string
}

// Accepted reports whether the text may be sent to the model.
func (o Outcome) Accepted() bool {
	return o.Reason == ""
}

// Accept builds an accepted outcome.
func Accept(text string) Outcome {
	return Outcome{Text: text}
}

// Reject builds a rejected outcome.
func Reject(reason string) Outcome {
	return Outcome{Reason: reason}
}

// InputPolicy configures the minimum-content check.
// The zero value is the reference policy: at least two ASCII letters.
type InputPolicy struct {
	// MinLetters raises the letter threshold. Values below
	// DefaultMinLetters are ignored; the floor never drops.
	MinLetters int

	// Unicode counts any Unicode letter instead of only a-z and A-Z.
	Unicode bool
}

// Validate trims raw and rejects it when it holds fewer letters than the policy requires.
func (p InputPolicy) Validate(raw string) Outcome {
	minLetters := max(p.MinLetters, DefaultMinLetters)

	text := strings.TrimSpace(raw)
	if text == "" {
		return Reject(ReasonInsufficientAlpha)
	}

	letters := 0
	for _, r := range text {
		if p.isLetter(r) {
			letters++
			if letters >= minLetters {
				return Accept(text)
			}
		}
	}
	return Reject(ReasonInsufficientAlpha)
}

func (p InputPolicy) isLetter(r rune) bool {
	if p.Unicode {
		return unicode.IsLetter(r)
	}
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Input validates raw with the reference policy.
func Input(raw string) Outcome {
	return InputPolicy{}.Validate(raw)
}

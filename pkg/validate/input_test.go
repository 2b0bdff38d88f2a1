package validate_test

import (
	"testing"

	"github.com/FrenchMajesty/emotion-classifier/pkg/validate"
)

func TestInput(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		accepted bool
		text     string
	}{
		{name: "empty string", raw: "", accepted: false},
		{name: "whitespace only", raw: " \t\n ", accepted: false},
		{name: "dots", raw: "...", accepted: false},
		{name: "punctuation and digits", raw: "!!! 123 ???", accepted: false},
		{name: "single letter", raw: "a", accepted: false},
		{name: "single letter with symbols", raw: "  ?a!  ", accepted: false},
		{name: "two letters", raw: "ok", accepted: true, text: "ok"},
		{name: "two separated letters", raw: "a.b", accepted: true, text: "a.b"},
		{name: "sentence trimmed", raw: "  I am so happy today!\n", accepted: true, text: "I am so happy today!"},
		{name: "non-latin script ignored", raw: "привет", accepted: false},
		{name: "accented letters ignored", raw: "éé", accepted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validate.Input(tt.raw)
			if got.Accepted() != tt.accepted {
				t.Fatalf("Input(%q).Accepted() = %v, want %v", tt.raw, got.Accepted(), tt.accepted)
			}
			if tt.accepted {
				if got.Text != tt.text {
					t.Errorf("Input(%q).Text = %q, want %q", tt.raw, got.Text, tt.text)
				}
				return
			}
			if got.Reason != validate.ReasonInsufficientAlpha {
				t.Errorf("Input(%q).Reason = %q, want %q", tt.raw, got.Reason, validate.ReasonInsufficientAlpha)
			}
		})
	}
}

func TestInputPolicy_Unicode(t *testing.T) {
	policy := validate.InputPolicy{Unicode: true}

	if !policy.Validate("привет").Accepted() {
		t.Error("expected Cyrillic text to be accepted with Unicode letters")
	}
	if !policy.Validate("éé").Accepted() {
		t.Error("expected accented letters to be accepted with Unicode letters")
	}
	if policy.Validate("ж").Accepted() {
		t.Error("expected a single letter to be rejected")
	}
	if policy.Validate("१२३").Accepted() {
		t.Error("expected digits to be rejected")
	}
}

func TestInputPolicy_MinLetters(t *testing.T) {
	policy := validate.InputPolicy{MinLetters: 4}

	if policy.Validate("abc").Accepted() {
		t.Error("expected 3 letters to be rejected with MinLetters=4")
	}
	if !policy.Validate("a b c d").Accepted() {
		t.Error("expected 4 letters to be accepted with MinLetters=4")
	}
}

func TestInputPolicy_MinLettersCannotLowerFloor(t *testing.T) {
	for _, n := range []int{-3, 0, 1} {
		policy := validate.InputPolicy{MinLetters: n}
		if policy.Validate("a").Accepted() {
			t.Errorf("expected a single letter to be rejected with MinLetters=%d", n)
		}
		if policy.Validate("!!! ?").Accepted() {
			t.Errorf("expected punctuation to be rejected with MinLetters=%d", n)
		}
		if !policy.Validate("ab").Accepted() {
			t.Errorf("expected two letters to be accepted with MinLetters=%d", n)
		}
	}
}

// Every string with at least two ASCII letters is accepted, whatever surrounds them.
func TestInput_TwoLettersAlwaysAccepted(t *testing.T) {
	fillers := []string{"", " ", "...", "123", "\t", "🙂", "--"}
	for _, a := range fillers {
		for _, b := range fillers {
			for _, c := range fillers {
				raw := a + "x" + b + "Y" + c
				if !validate.Input(raw).Accepted() {
					t.Errorf("Input(%q) rejected, want accepted", raw)
				}
				single := a + "x" + b + c
				if validate.Input(single).Accepted() {
					t.Errorf("Input(%q) accepted, want rejected", single)
				}
			}
		}
	}
}

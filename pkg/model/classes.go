package model

import (
	"errors"
	"fmt"
)

// ClassList is the ordered set of labels a model can predict. Position i
// of every distribution belongs to ClassList[i].
type ClassList []string

var (
	ErrEmptyClassList = errors.New("class list is empty")
	ErrDuplicateClass = errors.New("duplicate class label")
)

// Validate checks that the list is non-empty and free of duplicates.
func (c ClassList) Validate() error {
	if len(c) == 0 {
		return ErrEmptyClassList
	}
	seen := make(map[string]struct{}, len(c))
	for _, label := range c {
		if _, ok := seen[label]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateClass, label)
		}
		seen[label] = struct{}{}
	}
	return nil
}

// Index returns the position of label, or -1.
func (c ClassList) Index(label string) int {
	for i, l := range c {
		if l == label {
			return i
		}
	}
	return -1
}

// Clone returns a copy that callers may modify.
func (c ClassList) Clone() ClassList {
	out := make(ClassList, len(c))
	copy(out, c)
	return out
}

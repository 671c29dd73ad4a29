package domain

import "fmt"

// Split identifies one of the canonical corpus partitions.
type Split string

// Canonical splits, in processing order.
const (
	// SplitTrain is the training partition.
	SplitTrain Split = "train"

	// SplitEval is the validation partition.
	SplitEval Split = "eval"

	// SplitTest is the held-out test partition.
	SplitTest Split = "test"
)

// AllSplits returns the canonical splits in the order they are processed.
func AllSplits() []Split {
	return []Split{SplitTrain, SplitEval, SplitTest}
}

// IsValid returns true if the split is one of the canonical splits.
func (s Split) IsValid() bool {
	switch s {
	case SplitTrain, SplitEval, SplitTest:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Split) String() string {
	return string(s)
}

// ParseSplit converts a string to a Split.
func ParseSplit(s string) (Split, error) {
	split := Split(s)
	if !split.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSplit, s)
	}
	return split, nil
}

package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when the dataset has zero length.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrNoEntries is returned when a dataset decodes cleanly but holds no entries.
	ErrNoEntries = errors.New("dataset has no entries")

	// ErrInvalidFingerprint is returned for empty keys or keys containing
	// anything other than '0' and '1'.
	ErrInvalidFingerprint = errors.New("invalid fingerprint")

	// ErrInvalidCharacter is returned when an entry's value is not exactly one rune.
	ErrInvalidCharacter = errors.New("invalid character")
)

// LoadError reports a reference dataset that could not be turned into a Store.
// It is fatal: without a Store no solver can be built.
type LoadError struct {
	// Source names where the dataset came from (file path or "embedded").
	Source string
	Err    error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.Source == "" {
		return fmt.Sprintf("load corpus: %v", e.Err)
	}
	return fmt.Sprintf("load corpus %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func loadError(source string, err error) error {
	return &LoadError{Source: source, Err: err}
}

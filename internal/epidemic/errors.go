package epidemic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProbability is returned when a probability-typed input falls outside [0,1].
	ErrInvalidProbability = errors.New("invalid probability")
	// ErrInvalidConfiguration is returned when population counts or run lengths are inconsistent.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// validateProbability rejects values outside [0,1]. NaN fails too.
func validateProbability(name string, p float64) error {
	if !(p >= 0 && p <= 1) {
		return fmt.Errorf("%s must be between 0 and 1, got %v: %w", name, p, ErrInvalidProbability)
	}
	return nil
}

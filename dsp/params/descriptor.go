package params

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ID names a parameter for hosts, automation and control surfaces.
type ID string

const (
	Threshold ID = "threshold"
	Attack    ID = "attack"
	Release   ID = "release"
	Ratio     ID = "ratio"
)

// ErrUnknownParameter is returned for IDs that the store does not hold.
var ErrUnknownParameter = errors.New("unknown parameter")

// Descriptor describes one parameter's range and presentation.
type Descriptor struct {
	ID      ID
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	// Step is the UI step size; 0 for choice parameters.
	Step float64
	// Choices lists the selectable labels of a choice parameter.
	Choices []string
}

// Descriptors returns the four compressor parameters in display order.
func Descriptors() []Descriptor {
	return []Descriptor{
		{ID: Threshold, Name: "Threshold", Unit: "dB", Min: MinThresholdDB, Max: MaxThresholdDB, Default: DefaultThresholdDB, Step: Step},
		{ID: Attack, Name: "Attack", Unit: "ms", Min: MinAttackMs, Max: MaxAttackMs, Default: DefaultAttackMs, Step: Step},
		{ID: Release, Name: "Release", Unit: "ms", Min: MinReleaseMs, Max: MaxReleaseMs, Default: DefaultReleaseMs, Step: Step},
		{ID: Ratio, Name: "Ratio", Unit: ":1", Min: MinRatio, Max: MaxRatio, Default: DefaultRatio, Choices: RatioLabels()},
	}
}

// RatioLabels formats RatioChoices with one decimal ("1.0", "1.5", ...).
func RatioLabels() []string {
	labels := make([]string, len(RatioChoices))
	for i, c := range RatioChoices {
		labels[i] = strconv.FormatFloat(c, 'f', 1, 64)
	}
	return labels
}

// ParseRatio converts a ratio label such as "1.5" or "4:1" back to its
// numeric value and snaps it to RatioChoices.
func ParseRatio(label string) (float64, error) {
	s := strings.TrimSpace(label)
	s = strings.TrimSuffix(s, ":1")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ratio label %q: %w", label, err)
	}

	return RatioChoices[NearestRatioIndex(v)], nil
}

// Get returns the current value of parameter id.
func (s *Store) Get(id ID) (float64, error) {
	switch id {
	case Threshold:
		return s.Threshold(), nil
	case Attack:
		return s.Attack(), nil
	case Release:
		return s.Release(), nil
	case Ratio:
		return s.Ratio(), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
}

// Set writes parameter id. Values outside the legal range are clamped.
func (s *Store) Set(id ID, value float64) error {
	switch id {
	case Threshold:
		s.SetThreshold(value)
	case Attack:
		s.SetAttack(value)
	case Release:
		s.SetRelease(value)
	case Ratio:
		s.SetRatio(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	return nil
}

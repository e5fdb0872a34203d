// Package bmi computes body mass index and maps it onto the four ordered
// weight categories used across the dashboard, profile and onboarding views.
package bmi

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidMeasurement is returned for zero, negative or non-finite input.
// Callers should show a neutral placeholder instead of any category.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// Category thresholds. Each bound is inclusive to the category above it.
const (
	NormalFrom     = 18.5
	OverweightFrom = 25.0
	ObeseFrom      = 30.0
)

// Category is a BMI weight class, ordered by ascending BMI.
type Category int

const (
	Underweight Category = iota
	Normal
	Overweight
	Obese
)

// NumCategories is the number of real categories. Unavailable is not one of them.
const NumCategories = int(Obese) + 1

// Unavailable is returned alongside ErrInvalidMeasurement. It never
// describes a real measurement.
const Unavailable Category = -1

var categoryNames = [NumCategories]string{
	Underweight: "underweight",
	Normal:      "normal",
	Overweight:  "overweight",
	Obese:       "obese",
}

// Categories returns all real categories in ascending order.
func Categories() []Category {
	return []Category{Underweight, Normal, Overweight, Obese}
}

// Valid reports whether c is one of the four real categories.
func (c Category) Valid() bool {
	return c >= Underweight && c <= Obese
}

func (c Category) String() string {
	if !c.Valid() {
		return "unavailable"
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	if s == "unavailable" {
		return Unavailable, nil
	}
	return Unavailable, fmt.Errorf("unknown bmi category %q", s)
}

// Compute returns weightKg / (heightCm/100)^2.
func Compute(heightCm, weightKg float64) (float64, error) {
	if !positive(heightCm) {
		return 0, fmt.Errorf("height %v cm: %w", heightCm, ErrInvalidMeasurement)
	}
	if !positive(weightKg) {
		return 0, fmt.Errorf("weight %v kg: %w", weightKg, ErrInvalidMeasurement)
	}
	heightM := heightCm / 100
	v := weightKg / (heightM * heightM)
	if !positive(v) {
		return 0, fmt.Errorf("bmi %v: %w", v, ErrInvalidMeasurement)
	}
	return v, nil
}

// Classify maps a BMI value onto its category using half-open intervals.
// Non-finite or non-positive input yields Unavailable and ErrInvalidMeasurement.
func Classify(bmi float64) (Category, error) {
	if !positive(bmi) {
		return Unavailable, fmt.Errorf("bmi %v: %w", bmi, ErrInvalidMeasurement)
	}
	switch {
	case bmi < NormalFrom:
		return Underweight, nil
	case bmi < OverweightFrom:
		return Normal, nil
	case bmi < ObeseFrom:
		return Overweight, nil
	default:
		return Obese, nil
	}
}

// Round rounds to two decimals, matching what the backend reports.
// Use it for display only; classify the unrounded value.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

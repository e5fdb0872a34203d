// Package health derives energy and body-composition estimates from a user's
// measurements. The backend computes the same figures; the client uses these
// when rendering offline or cross-checking a dashboard.
package health

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kalambet/dietfit/internal/bmi"
)

var (
	// ErrHipRequired is returned for a female body-fat estimate without a hip measurement.
	ErrHipRequired = errors.New("hip measurement is required for female body fat calculation")

	// ErrUnknownActivity is returned for an activity level outside the known set.
	ErrUnknownActivity = errors.New("unknown activity level")
)

// ActivityLevel scales BMR into TDEE.
type ActivityLevel string

const (
	Sedentary ActivityLevel = "sedentary"
	Light     ActivityLevel = "light"
	Moderate  ActivityLevel = "moderate"
	Very      ActivityLevel = "very"
	Athlete   ActivityLevel = "athlete"
)

var activityMultipliers = map[ActivityLevel]float64{
	Sedentary: 1.2,
	Light:     1.375,
	Moderate:  1.55,
	Very:      1.725,
	Athlete:   1.9,
}

// ActivityLevels returns the known levels from least to most active.
func ActivityLevels() []ActivityLevel {
	return []ActivityLevel{Sedentary, Light, Moderate, Very, Athlete}
}

// Multiplier returns the TDEE multiplier for a.
func (a ActivityLevel) Multiplier() (float64, error) {
	m, ok := activityMultipliers[ActivityLevel(strings.ToLower(string(a)))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivity, string(a))
	}
	return m, nil
}

// Profile carries the measurements the estimates depend on.
type Profile struct {
	HeightCm      float64
	WeightKg      float64
	Age           int
	Female        bool
	ActivityLevel ActivityLevel
	WaistCm       float64
	NeckCm        float64
	HipCm         *float64
}

// Metrics mirrors the backend's health payload.
type Metrics struct {
	BMI            float64 `json:"bmi"`
	BodyFatPercent float64 `json:"body_fat_percent"`
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
}

// BMR uses the Mifflin-St Jeor equation, rounded to two decimals.
func BMR(p Profile) (float64, error) {
	if p.HeightCm <= 0 || p.WeightKg <= 0 || p.Age <= 0 {
		return 0, fmt.Errorf("bmr: %w", bmi.ErrInvalidMeasurement)
	}
	s := 5.0
	if p.Female {
		s = -161
	}
	return bmi.Round(10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age) + s), nil
}

// TDEE multiplies the rounded BMR by the activity multiplier.
func TDEE(p Profile) (float64, error) {
	bmr, err := BMR(p)
	if err != nil {
		return 0, err
	}
	m, err := p.ActivityLevel.Multiplier()
	if err != nil {
		return 0, err
	}
	return bmi.Round(bmr * m), nil
}

// BodyFat estimates body-fat percentage with the US Navy method.
func BodyFat(p Profile) (float64, error) {
	if p.HeightCm <= 0 {
		return 0, fmt.Errorf("body fat: %w", bmi.ErrInvalidMeasurement)
	}
	var v float64
	if !p.Female {
		girth := p.WaistCm - p.NeckCm
		if girth <= 0 {
			return 0, fmt.Errorf("body fat: waist must exceed neck: %w", bmi.ErrInvalidMeasurement)
		}
		v = 495/(1.0324-0.19077*math.Log10(girth)+0.15456*math.Log10(p.HeightCm)) - 450
	} else {
		if p.HipCm == nil {
			return 0, ErrHipRequired
		}
		girth := p.WaistCm + *p.HipCm - p.NeckCm
		if girth <= 0 {
			return 0, fmt.Errorf("body fat: %w", bmi.ErrInvalidMeasurement)
		}
		v = 495/(1.29579-0.35004*math.Log10(girth)+0.22100*math.Log10(p.HeightCm)) - 450
	}
	return bmi.Round(v), nil
}

// Compute returns all four metrics for p.
func Compute(p Profile) (Metrics, error) {
	b, err := bmi.Compute(p.HeightCm, p.WeightKg)
	if err != nil {
		return Metrics{}, err
	}
	fat, err := BodyFat(p)
	if err != nil {
		return Metrics{}, err
	}
	bmr, err := BMR(p)
	if err != nil {
		return Metrics{}, err
	}
	tdee, err := TDEE(p)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{BMI: bmi.Round(b), BodyFatPercent: fat, BMR: bmr, TDEE: tdee}, nil
}

// Estimate is Compute for records the body-fat formula cannot use, such as
// a female profile without hip. BMI, BMR and TDEE are still required;
// bodyFat reports whether BodyFatPercent was filled in.
func Estimate(p Profile) (m Metrics, bodyFat bool, err error) {
	b, err := bmi.Compute(p.HeightCm, p.WeightKg)
	if err != nil {
		return Metrics{}, false, err
	}
	bmr, err := BMR(p)
	if err != nil {
		return Metrics{}, false, err
	}
	tdee, err := TDEE(p)
	if err != nil {
		return Metrics{}, false, err
	}
	m = Metrics{BMI: bmi.Round(b), BMR: bmr, TDEE: tdee}
	if fat, err := BodyFat(p); err == nil {
		m.BodyFatPercent = fat
		bodyFat = true
	}
	return m, bodyFat, nil
}

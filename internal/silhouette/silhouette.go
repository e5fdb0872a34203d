// Package silhouette selects the body-shape variant and vertical stretch used
// to draw a BMI silhouette, and renders it as SVG.
package silhouette

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/bmi"
)

// Height scaling bounds. The reference is a population-average height.
const (
	ReferenceHeightCm = 175.0
	MinScale          = 0.92
	MaxScale          = 1.08
)

type Gender int

const (
	Male Gender = iota
	Female
)

// NumGenders is the number of genders with silhouette variants.
const NumGenders = int(Female) + 1

var genderNames = [NumGenders]string{
	Male:   "male",
	Female: "female",
}

func (g Gender) String() string {
	if g < Male || g > Female {
		return fmt.Sprintf("gender(%d)", int(g))
	}
	return genderNames[g]
}

func (g Gender) MarshalText() ([]byte, error) {
	if g < Male || g > Female {
		return nil, fmt.Errorf("invalid gender %d", int(g))
	}
	return []byte(genderNames[g]), nil
}

func (g *Gender) UnmarshalText(text []byte) error {
	parsed, err := ParseGender(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGender accepts "male" or "female", case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return Male, nil
	case "female":
		return Female, nil
	}
	return 0, fmt.Errorf("unknown gender %q (want male or female)", s)
}

// Variant keys a body shape by gender and category.
type Variant struct {
	Gender   Gender       `json:"gender"`
	Category bmi.Category `json:"category"`
}

// Key is a stable identifier such as "female-overweight".
func (v Variant) Key() string {
	return v.Gender.String() + "-" + v.Category.String()
}

// Variants lists every (gender, category) pair.
func Variants() []Variant {
	out := make([]Variant, 0, NumGenders*bmi.NumCategories)
	for g := 0; g < NumGenders; g++ {
		for _, c := range bmi.Categories() {
			out = append(out, Variant{Gender: Gender(g), Category: c})
		}
	}
	return out
}

// Input is what a live form provides on every keystroke.
type Input struct {
	Gender   Gender
	BMI      float64
	HeightCm float64
}

// BodyMetrics are raw measurements; BMI is derived from them.
type BodyMetrics struct {
	HeightCm float64 `json:"height_cm"`
	WeightKg float64 `json:"weight_kg"`
	Gender   Gender  `json:"gender"`
}

// Descriptor holds everything a renderer needs: no further domain logic
// is required to draw it.
type Descriptor struct {
	Variant       Variant `json:"variant"`
	Key           string  `json:"variant_key"`
	Shape         Shape   `json:"shape"`
	VerticalScale float64 `json:"vertical_scale"`
	Color         string  `json:"color"`
	Label         string  `json:"label"`
	BMI           float64 `json:"bmi"`
}

// Select classifies in.BMI, looks up the variant shape and computes the
// vertical scale. Invalid BMI or height returns bmi.ErrInvalidMeasurement.
func Select(in Input, tag language.Tag) (Descriptor, error) {
	if in.Gender < Male || in.Gender > Female {
		return Descriptor{}, fmt.Errorf("selecting silhouette: invalid gender %d", int(in.Gender))
	}
	cat, err := bmi.Classify(in.BMI)
	if err != nil {
		return Descriptor{}, fmt.Errorf("selecting silhouette: %w", err)
	}
	scale, err := Scale(in.HeightCm)
	if err != nil {
		return Descriptor{}, fmt.Errorf("selecting silhouette: %w", err)
	}

	v := Variant{Gender: in.Gender, Category: cat}
	pres := bmi.PresentationOf(cat, tag)
	return Descriptor{
		Variant:       v,
		Key:           v.Key(),
		Shape:         ShapeOf(v),
		VerticalScale: scale,
		Color:         pres.Color,
		Label:         pres.Label,
		BMI:           in.BMI,
	}, nil
}

// FromMetrics computes BMI from m and selects its silhouette.
func FromMetrics(m BodyMetrics, tag language.Tag) (Descriptor, error) {
	v, err := bmi.Compute(m.HeightCm, m.WeightKg)
	if err != nil {
		return Descriptor{}, err
	}
	return Select(Input{Gender: m.Gender, BMI: v, HeightCm: m.HeightCm}, tag)
}

// Scale returns heightCm/ReferenceHeightCm clamped to [MinScale, MaxScale].
func Scale(heightCm float64) (float64, error) {
	if heightCm <= 0 || math.IsNaN(heightCm) || math.IsInf(heightCm, 0) {
		return 0, fmt.Errorf("height %v cm: %w", heightCm, bmi.ErrInvalidMeasurement)
	}
	return clamp(heightCm/ReferenceHeightCm, MinScale, MaxScale), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

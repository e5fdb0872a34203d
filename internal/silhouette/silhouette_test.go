package silhouette

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/bmi"
)

func TestAllVariantsDefined(t *testing.T) {
	variants := Variants()
	require.Len(t, variants, 8)
	require.NoError(t, checkShapes())

	seen := map[string]bool{}
	for _, v := range variants {
		assert.True(t, ShapeOf(v).defined(), "variant %s", v.Key())
		seen[v.Key()] = true
	}
	assert.Len(t, seen, 8)
}

func TestSelect_EveryPair(t *testing.T) {
	bmiFor := map[bmi.Category]float64{
		bmi.Underweight: 17,
		bmi.Normal:      22,
		bmi.Overweight:  27,
		bmi.Obese:       33,
	}
	for _, v := range Variants() {
		d, err := Select(Input{Gender: v.Gender, BMI: bmiFor[v.Category], HeightCm: 175}, language.English)
		require.NoError(t, err)
		assert.Equal(t, v, d.Variant)
		assert.Equal(t, v.Key(), d.Key)
		assert.True(t, d.Shape.defined())
	}
}

func TestScale_Clamped(t *testing.T) {
	tests := []struct {
		height float64
		want   float64
	}{
		{175, 1.0},
		{300, MaxScale},
		{140, MinScale},
		{50, MinScale},
		{182, 182.0 / 175},
		{165, 165.0 / 175},
	}
	for _, tt := range tests {
		got, err := Scale(tt.height)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "height=%v", tt.height)
	}

	for h := 1.0; h < 400; h += 0.5 {
		got, err := Scale(h)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, MinScale)
		assert.LessOrEqual(t, got, MaxScale)
	}
}

func TestScale_Invalid(t *testing.T) {
	for _, h := range []float64{0, -175, math.NaN(), math.Inf(1)} {
		_, err := Scale(h)
		assert.ErrorIs(t, err, bmi.ErrInvalidMeasurement, "height=%v", h)
	}
}

func TestFromMetrics_Scenarios(t *testing.T) {
	d, err := FromMetrics(BodyMetrics{HeightCm: 175, WeightKg: 80, Gender: Male}, language.English)
	require.NoError(t, err)
	assert.InDelta(t, 26.12, d.BMI, 0.01)
	assert.Equal(t, bmi.Overweight, d.Variant.Category)
	assert.Equal(t, "#eab308", d.Color)
	assert.Equal(t, 1.0, d.VerticalScale)

	d, err = FromMetrics(BodyMetrics{HeightCm: 160, WeightKg: 45, Gender: Female}, language.English)
	require.NoError(t, err)
	assert.InDelta(t, 17.58, d.BMI, 0.01)
	assert.Equal(t, bmi.Underweight, d.Variant.Category)
	assert.Equal(t, "#3b82f6", d.Color)
	assert.Equal(t, "female-underweight", d.Key)

	d, err = FromMetrics(BodyMetrics{HeightCm: 140, WeightKg: 90, Gender: Male}, language.English)
	require.NoError(t, err)
	assert.InDelta(t, 45.9, d.BMI, 0.05)
	assert.Equal(t, bmi.Obese, d.Variant.Category)
	assert.Equal(t, 0.92, d.VerticalScale)
}

func TestFromMetrics_Invalid(t *testing.T) {
	_, err := FromMetrics(BodyMetrics{HeightCm: 0, WeightKg: 80, Gender: Male}, language.English)
	assert.ErrorIs(t, err, bmi.ErrInvalidMeasurement)

	_, err = FromMetrics(BodyMetrics{HeightCm: 170, WeightKg: -3, Gender: Female}, language.English)
	assert.ErrorIs(t, err, bmi.ErrInvalidMeasurement)
}

func TestSelect_InvalidGender(t *testing.T) {
	_, err := Select(Input{Gender: Gender(7), BMI: 22, HeightCm: 170}, language.English)
	assert.Error(t, err)
}

func TestSelect_LocalizedLabel(t *testing.T) {
	d, err := Select(Input{Gender: Female, BMI: 31, HeightCm: 170}, language.German)
	require.NoError(t, err)
	assert.Equal(t, "Adipositas", d.Label)
}

func TestParseGender(t *testing.T) {
	g, err := ParseGender(" Female ")
	require.NoError(t, err)
	assert.Equal(t, Female, g)

	_, err = ParseGender("other")
	assert.Error(t, err)
}

func TestDescriptorJSON(t *testing.T) {
	d, err := FromMetrics(BodyMetrics{HeightCm: 175, WeightKg: 80, Gender: Male}, language.English)
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	variant := got["variant"].(map[string]any)
	assert.Equal(t, "male", variant["gender"])
	assert.Equal(t, "overweight", variant["category"])
	assert.Equal(t, "male-overweight", got["variant_key"])
	assert.Equal(t, 1.0, got["vertical_scale"])
}

func TestRender(t *testing.T) {
	d, err := FromMetrics(BodyMetrics{HeightCm: 300, WeightKg: 60, Gender: Female}, language.English)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, d))
	svg := buf.String()

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, `data-variant="female-underweight"`)
	assert.Contains(t, svg, `fill="#3b82f6"`)
	assert.Contains(t, svg, "scale(1 1.0800)")
	assert.Contains(t, svg, "<title>Underweight</title>")
}

func TestRender_EmptyDescriptor(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, Descriptor{}))
	assert.Zero(t, buf.Len())
}

package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/dietfit/internal/bmi"
)

func ptr(v float64) *float64 { return &v }

func maleProfile() Profile {
	return Profile{
		HeightCm:      175,
		WeightKg:      80,
		Age:           30,
		ActivityLevel: Moderate,
		WaistCm:       85,
		NeckCm:        38,
	}
}

func femaleProfile() Profile {
	return Profile{
		HeightCm:      165,
		WeightKg:      60,
		Age:           28,
		Female:        true,
		ActivityLevel: Sedentary,
		WaistCm:       70,
		NeckCm:        32,
		HipCm:         ptr(95),
	}
}

func TestBMR(t *testing.T) {
	got, err := BMR(maleProfile())
	require.NoError(t, err)
	assert.Equal(t, 1748.75, got)

	got, err = BMR(femaleProfile())
	require.NoError(t, err)
	assert.Equal(t, 1330.25, got)
}

func TestTDEE(t *testing.T) {
	got, err := TDEE(maleProfile())
	require.NoError(t, err)
	assert.Equal(t, 2710.56, got)

	got, err = TDEE(femaleProfile())
	require.NoError(t, err)
	assert.Equal(t, 1596.3, got)
}

func TestTDEE_UnknownActivity(t *testing.T) {
	p := maleProfile()
	p.ActivityLevel = "couch"
	_, err := TDEE(p)
	assert.ErrorIs(t, err, ErrUnknownActivity)
}

func TestActivityMultipliers(t *testing.T) {
	want := []float64{1.2, 1.375, 1.55, 1.725, 1.9}
	for i, a := range ActivityLevels() {
		m, err := a.Multiplier()
		require.NoError(t, err)
		assert.Equal(t, want[i], m, "level %s", a)
	}
	m, err := ActivityLevel("MODERATE").Multiplier()
	require.NoError(t, err)
	assert.Equal(t, 1.55, m)
}

func TestBodyFat_Male(t *testing.T) {
	got, err := BodyFat(maleProfile())
	require.NoError(t, err)
	assert.InDelta(t, 16.94, got, 0.1)
}

func TestBodyFat_FemaleNeedsHip(t *testing.T) {
	p := femaleProfile()
	p.HipCm = nil
	_, err := BodyFat(p)
	assert.ErrorIs(t, err, ErrHipRequired)
}

func TestBodyFat_InvalidGirth(t *testing.T) {
	p := maleProfile()
	p.WaistCm = 30
	_, err := BodyFat(p)
	assert.ErrorIs(t, err, bmi.ErrInvalidMeasurement)
}

func TestCompute(t *testing.T) {
	m, err := Compute(maleProfile())
	require.NoError(t, err)
	assert.Equal(t, 26.12, m.BMI)
	assert.Equal(t, 1748.75, m.BMR)
	assert.Equal(t, 2710.56, m.TDEE)
	assert.Greater(t, m.BodyFatPercent, 0.0)

	p := maleProfile()
	p.HeightCm = 0
	_, err = Compute(p)
	assert.ErrorIs(t, err, bmi.ErrInvalidMeasurement)
}

func TestEstimate_FemaleWithoutHip(t *testing.T) {
	p := femaleProfile()
	p.HipCm = nil
	_, err := Compute(p)
	require.ErrorIs(t, err, ErrHipRequired)

	m, fat, err := Estimate(p)
	require.NoError(t, err)
	assert.False(t, fat)
	assert.Equal(t, Metrics{BMI: 22.04, BMR: 1330.25, TDEE: 1596.3}, m)
}

func TestEstimate_CompleteMatchesCompute(t *testing.T) {
	want, err := Compute(maleProfile())
	require.NoError(t, err)

	got, fat, err := Estimate(maleProfile())
	require.NoError(t, err)
	assert.True(t, fat)
	assert.Equal(t, want, got)
}

func TestEstimate_NeedsAge(t *testing.T) {
	p := maleProfile()
	p.Age = 0
	_, _, err := Estimate(p)
	assert.ErrorIs(t, err, bmi.ErrInvalidMeasurement)
}

func TestTargetCalories(t *testing.T) {
	assert.Equal(t, 2210.56, TargetCalories(2710.56, DefaultDeficit, false))
	assert.Equal(t, MinCaloriesFemale, TargetCalories(1596.3, DefaultDeficit, true))
	assert.Equal(t, MinCaloriesMale, TargetCalories(1800, -500, false))
	assert.Equal(t, 2100.0, TargetCalories(1800, 300, false))
}

func TestMealTargets(t *testing.T) {
	got := MealTargets(2000)
	require.Len(t, got, 4)
	assert.Equal(t, MealTarget{Breakfast, 500}, got[0])
	assert.Equal(t, MealTarget{Lunch, 700}, got[1])
	assert.Equal(t, MealTarget{Dinner, 600}, got[2])
	assert.Equal(t, MealTarget{Snack, 200}, got[3])

	var sum float64
	for _, m := range got {
		sum += m.Kcal
	}
	assert.InDelta(t, 2000, sum, 0.01)
}

package health

import "math"

// DefaultDeficit targets roughly 0.5 kg of loss per week.
const DefaultDeficit = -500

// Minimum safe daily intake.
const (
	MinCaloriesFemale = 1200.0
	MinCaloriesMale   = 1500.0
)

// MealType is a slot in a daily plan.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealShare is a meal's fraction of the daily target.
type MealShare struct {
	Meal  MealType
	Share float64
}

// mealSplit is ordered the way a day is eaten.
var mealSplit = []MealShare{
	{Breakfast, 0.25},
	{Lunch, 0.35},
	{Dinner, 0.30},
	{Snack, 0.10},
}

// MealTarget is the calorie goal for one meal.
type MealTarget struct {
	Meal MealType `json:"meal_type"`
	Kcal float64  `json:"target_kcal"`
}

// TargetCalories applies deficit to tdee without going below the safe floor.
func TargetCalories(tdee float64, deficit int, female bool) float64 {
	floor := MinCaloriesMale
	if female {
		floor = MinCaloriesFemale
	}
	return math.Max(tdee+float64(deficit), floor)
}

// MealTargets splits a daily total across breakfast, lunch, dinner and snack.
func MealTargets(total float64) []MealTarget {
	out := make([]MealTarget, 0, len(mealSplit))
	for _, s := range mealSplit {
		out = append(out, MealTarget{Meal: s.Meal, Kcal: math.Round(total*s.Share*100) / 100})
	}
	return out
}

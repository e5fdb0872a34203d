package apiclient

import (
	"github.com/kalambet/dietfit/internal/health"
	"github.com/kalambet/dietfit/internal/silhouette"
)

// User is the backend's user record.
type User struct {
	ID             int                  `json:"id"`
	Name           *string              `json:"name"`
	Email          string               `json:"email"`
	HeightCm       float64              `json:"height_cm"`
	WeightKg       float64              `json:"weight_kg"`
	Gender         string               `json:"gender"`
	Age            int                  `json:"age"`
	ActivityLevel  health.ActivityLevel `json:"activity_level"`
	WaistCm        float64              `json:"waist_cm"`
	NeckCm         float64              `json:"neck_cm"`
	HipCm          *float64             `json:"hip_cm"`
	TargetWeightKg *float64             `json:"target_weight_kg"`
	IsActive       bool                 `json:"is_active"`
	IsSuperuser    bool                 `json:"is_superuser"`
}

// DisplayName returns the name, or the email when no name is set.
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// HealthProfile converts the record into health.Profile.
func (u User) HealthProfile() health.Profile {
	return health.Profile{
		HeightCm:      u.HeightCm,
		WeightKg:      u.WeightKg,
		Age:           u.Age,
		Female:        u.Gender == "female",
		ActivityLevel: u.ActivityLevel,
		WaistCm:       u.WaistCm,
		NeckCm:        u.NeckCm,
		HipCm:         u.HipCm,
	}
}

// BodyMetrics extracts the fields the silhouette needs.
func (u User) BodyMetrics() (silhouette.BodyMetrics, error) {
	g, err := silhouette.ParseGender(u.Gender)
	if err != nil {
		return silhouette.BodyMetrics{}, err
	}
	return silhouette.BodyMetrics{HeightCm: u.HeightCm, WeightKg: u.WeightKg, Gender: g}, nil
}

// SignupRequest registers a new account.
type SignupRequest struct {
	Name          *string              `json:"name,omitempty"`
	Email         string               `json:"email"`
	Password      string               `json:"password"`
	HeightCm      float64              `json:"height_cm"`
	WeightKg      float64              `json:"weight_kg"`
	Gender        string               `json:"gender"`
	Age           int                  `json:"age"`
	ActivityLevel health.ActivityLevel `json:"activity_level"`
	WaistCm       float64              `json:"waist_cm"`
	NeckCm        float64              `json:"neck_cm"`
	HipCm         *float64             `json:"hip_cm,omitempty"`
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Name           *string               `json:"name,omitempty"`
	Email          *string               `json:"email,omitempty"`
	HeightCm       *float64              `json:"height_cm,omitempty"`
	WeightKg       *float64              `json:"weight_kg,omitempty"`
	Gender         *string               `json:"gender,omitempty"`
	Age            *int                  `json:"age,omitempty"`
	ActivityLevel  *health.ActivityLevel `json:"activity_level,omitempty"`
	WaistCm        *float64              `json:"waist_cm,omitempty"`
	NeckCm         *float64              `json:"neck_cm,omitempty"`
	HipCm          *float64              `json:"hip_cm,omitempty"`
	TargetWeightKg *float64              `json:"target_weight_kg,omitempty"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HealthMetrics is the backend's computed metrics for a user.
type HealthMetrics struct {
	UserID int `json:"user_id"`
	health.Metrics
}

type AdminStatistics struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	InactiveUsers int `json:"inactive_users"`
	AdminUsers    int `json:"admin_users"`
}

type AdminUser struct {
	ID          int     `json:"id"`
	Name        *string `json:"name"`
	Email       string  `json:"email"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
	Gender      string  `json:"gender"`
	Age         int     `json:"age"`
}

type AdminUserList struct {
	Statistics AdminStatistics `json:"statistics"`
	Users      []AdminUser     `json:"users"`
}

// ToggleResult is returned by the admin toggle endpoints. Only the field
// for the toggled flag is set.
type ToggleResult struct {
	Message     string `json:"message"`
	IsSuperuser *bool  `json:"is_superuser,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type Ingredient struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	KcalPerUnit float64 `json:"kcal_per_unit"`
}

type RecipeIngredient struct {
	IngredientID   int     `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
}

type Recipe struct {
	ID           int                `json:"id"`
	Name         string             `json:"name"`
	MealType     health.MealType    `json:"meal_type"`
	Kcal         float64            `json:"kcal"`
	ProteinG     float64            `json:"protein_g"`
	CarbsG       float64            `json:"carbs_g"`
	FatG         float64            `json:"fat_g"`
	Description  *string            `json:"description"`
	Instructions *string            `json:"instructions"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
}

type PantryItem struct {
	ID             int     `json:"id"`
	UserID         int     `json:"user_id"`
	IngredientID   int     `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
}

// RecipeSuggestion is a recipe scored against the user's pantry.
type RecipeSuggestion struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	MealType    health.MealType `json:"meal_type"`
	Kcal        float64         `json:"kcal"`
	ProteinG    float64         `json:"protein_g"`
	CarbsG      float64         `json:"carbs_g"`
	FatG        float64         `json:"fat_g"`
	PantryScore *float64        `json:"pantry_score"`
}

type MealSlot struct {
	MealType           health.MealType    `json:"meal_type"`
	TargetKcal         float64            `json:"target_kcal"`
	RecommendedRecipes []RecipeSuggestion `json:"recommended_recipes"`
}

type MealPlan struct {
	UserID          int            `json:"user_id"`
	TDEE            float64        `json:"tdee"`
	TargetDailyKcal float64        `json:"target_daily_kcal"`
	Deficit         int            `json:"deficit"`
	Meals           []MealSlot     `json:"meals"`
	TotalMacros     map[string]any `json:"total_macros"`
}

type ChatRequest struct {
	UserID  *int   `json:"user_id,omitempty"`
	Message string `json:"message"`
}

type ChatResponse struct {
	Response        string `json:"response"`
	UserContextUsed bool   `json:"user_context_used"`
}

type ServiceHealth struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

package fitgate

import (
	"time"

	"github.com/fittrack/fitgate/health"
	"github.com/fittrack/fitgate/session"
)

// UserProfile is the authenticated account's profile. Physical attributes
// are optional and zero when unset.
type UserProfile = session.User

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the account-creation request body.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by [Client.Login] and [Client.Register].
type AuthResult struct {
	User         *UserProfile `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// ProfileUpdate carries the mutable profile fields for [Client.UpdateProfile].
// Zero fields are omitted from the request.
type ProfileUpdate struct {
	Bio      string  `json:"bio,omitempty"`
	HeightCm float64 `json:"height,omitempty"`
	WeightKg float64 `json:"weight,omitempty"`
	Age      int     `json:"age,omitempty"`
	Gender   string  `json:"gender,omitempty"`
}

// Workout is a logged training session.
type Workout struct {
	ID             int64     `json:"id,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	DurationMin    int       `json:"duration"`
	CaloriesBurned int       `json:"calories_burned"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
	UpdatedAt      time.Time `json:"updated_at,omitzero"`
}

// MealType is the closed set of meal categories.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// NutritionEntry is a logged meal with its macro breakdown.
type NutritionEntry struct {
	ID            int64     `json:"id,omitempty"`
	MealType      MealType  `json:"meal_type"`
	Calories      int       `json:"calories"`
	Protein       float64   `json:"protein"`
	Carbohydrates float64   `json:"carbohydrates"`
	Fats          float64   `json:"fats"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

// Goal is a fitness target tracked against the profile.
type Goal struct {
	ID           int64     `json:"id,omitempty"`
	GoalType     string    `json:"goal_type"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	TargetWeight float64   `json:"target_weight"`
	TargetDate   time.Time `json:"target_date"`
	Progress     float64   `json:"progress"`
	Achieved     bool      `json:"achieved"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// BodyMetrics bundles the derived health metrics computable from a profile.
// Waist-to-height ratio is not included because the profile carries no waist
// measurement; use [health.WaistToHeightRatio] directly.
type BodyMetrics struct {
	BMI health.Value
	BMR health.Value
}

// ComputeBodyMetrics derives BMI and BMR from a profile. Missing attributes
// yield the N/A sentinel for the affected metric.
func ComputeBodyMetrics(u *UserProfile) BodyMetrics {
	if u == nil {
		return BodyMetrics{BMI: health.NA(), BMR: health.NA()}
	}
	return BodyMetrics{
		BMI: health.BMI(u.WeightKg, u.HeightCm),
		BMR: health.BMR(u.WeightKg, u.HeightCm, u.Age, health.ParseGender(u.Gender)),
	}
}

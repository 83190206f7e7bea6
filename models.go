package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// userProfile maps to user_profiles. One row per user with body stats, goal,
// and the computed (or explicitly overridden) daily targets. Nullable fields
// use pointers so pgx can scan NULLs and JSON omits them naturally.
type userProfile struct {
	UserID        int     `json:"user_id"        db:"user_id"`
	WeightKG      float64 `json:"weight_kg"      db:"weight_kg"`
	HeightCM      float64 `json:"height_cm"      db:"height_cm"`
	Age           int     `json:"age"            db:"age"`
	Gender        string  `json:"gender"         db:"gender"`
	ActivityLevel string  `json:"activity_level" db:"activity_level"`
	Goal          string  `json:"goal"           db:"goal"`

	TargetWeightKG       *float64 `json:"target_weight_kg,omitempty"        db:"target_weight_kg"`
	TargetCalories       *int     `json:"target_calories,omitempty"         db:"target_calories"`
	TargetProteinG       *int     `json:"target_protein_g,omitempty"        db:"target_protein_g"`
	TargetCarbsG         *int     `json:"target_carbs_g,omitempty"          db:"target_carbs_g"`
	TargetFatG           *int     `json:"target_fat_g,omitempty"            db:"target_fat_g"`
	EstimatedWeeksToGoal *int     `json:"estimated_weeks_to_goal,omitempty" db:"estimated_weeks_to_goal"`

	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// meal maps to meals. One row per logged food item, bucketed by (user_id, date).
type meal struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Date      DateOnly   `json:"date" db:"date"`
	Name      string     `json:"name" db:"name"`
	Category  string     `json:"category" db:"category"`
	Calories  int        `json:"calories" db:"calories"`
	ProteinG  float64    `json:"protein_g" db:"protein_g"`
	CarbsG    float64    `json:"carbs_g" db:"carbs_g"`
	FatG      float64    `json:"fat_g" db:"fat_g"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// exerciseSet is one set within an exercise. Incomplete sets are kept in the
// log but excluded from all volume math.
type exerciseSet struct {
	Reps      int     `json:"reps"`
	WeightKG  float64 `json:"weight_kg"`
	Completed bool    `json:"completed"`
}

// exercise is a named ordered sequence of sets. Stored as JSONB inside
// workouts and workout_logs rows.
type exercise struct {
	Name string        `json:"name"`
	Sets []exerciseSet `json:"sets"`
}

// workout maps to workouts — a reusable routine template.
type workout struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Name      string     `json:"name" db:"name"`
	Exercises []exercise `json:"exercises" db:"exercises"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// workoutLog maps to workout_logs — one performed session. TotalVolume is
// derived from completed sets at write time (see workoutVolume).
type workoutLog struct {
	ID          int        `json:"id" db:"id"`
	UserID      int        `json:"user_id" db:"user_id"`
	WorkoutID   *int       `json:"workout_id,omitempty" db:"workout_id"`
	WorkoutName string     `json:"workout_name" db:"workout_name"`
	Date        DateOnly   `json:"date" db:"date"`
	Exercises   []exercise `json:"exercises" db:"exercises"`
	TotalVolume float64    `json:"total_volume" db:"total_volume"`
	DurationMin *int       `json:"duration_min,omitempty" db:"duration_min"`
	Notes       *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   *time.Time `json:"created_at" db:"created_at"`
}

// cardioLog maps to cardio_logs. Method is "steps" or "time"; the
// method-specific inputs are nullable, distance and calories are derived.
type cardioLog struct {
	ID              int        `json:"id" db:"id"`
	UserID          int        `json:"user_id" db:"user_id"`
	Date            DateOnly   `json:"date" db:"date"`
	Method          string     `json:"method" db:"method"`
	Steps           *int       `json:"steps,omitempty" db:"steps"`
	DurationMinutes *float64   `json:"duration_minutes,omitempty" db:"duration_minutes"`
	AvgPaceMinPerKM *float64   `json:"avg_pace_min_per_km,omitempty" db:"avg_pace_min_per_km"`
	DistanceKM      *float64   `json:"distance_km,omitempty" db:"distance_km"`
	CaloriesBurned  int        `json:"calories_burned" db:"calories_burned"`
	CreatedAt       *time.Time `json:"created_at" db:"created_at"`
}

// weightEntry maps to weight_log. UNIQUE(user_id, date) — at most one sample
// per day; posting the same date overwrites.
type weightEntry struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Date      DateOnly   `json:"date" db:"date"`
	WeightKG  float64    `json:"weight_kg" db:"weight_kg"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// achievement maps to achievements. UNIQUE(user_id, key); unlocking is
// monotonic — rows are upserted, never deleted by re-evaluation.
type achievement struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	Key         string    `json:"key" db:"key"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Level       int       `json:"level" db:"level"`
	UnlockedAt  time.Time `json:"unlocked_at" db:"unlocked_at"`
}

/* ─── Response shapes ────────────────────────────────────────────────── */

// dailyIntake is the response for GET /api/intake/daily: the day's meals plus
// totals. Totals are always re-derived from the meal rows by intakeTotals —
// they are never stored, so they cannot drift from the meals.
type dailyIntake struct {
	Date          string  `json:"date"`
	Meals         []meal  `json:"meals"`
	TotalCalories int     `json:"total_calories"`
	TotalProteinG float64 `json:"total_protein_g"`
	TotalCarbsG   float64 `json:"total_carbs_g"`
	TotalFatG     float64 `json:"total_fat_g"`
}

// rangeStats is the response for GET /api/stats/range: dense per-day maps
// keyed "YYYY-MM-DD", one entry per calendar day in the range.
type rangeStats struct {
	Start               string             `json:"start"`
	End                 string             `json:"end"`
	CaloriesByDay       map[string]float64 `json:"calories_by_day"`
	ProteinByDay        map[string]float64 `json:"protein_by_day"`
	CarbsByDay          map[string]float64 `json:"carbs_by_day"`
	FatByDay            map[string]float64 `json:"fat_by_day"`
	CardioCaloriesByDay map[string]float64 `json:"cardio_calories_by_day"`
	CardioDistanceByDay map[string]float64 `json:"cardio_distance_by_day"`
	CardioDurationByDay map[string]float64 `json:"cardio_duration_by_day"`
	WeightByDay         map[string]float64 `json:"weight_by_day"`
}

/* ─── Request shapes ─────────────────────────────────────────────────── */

// putProfileRequest is the request body for PUT /api/profile. Explicit target
// fields override the computed ones when provided.
type putProfileRequest struct {
	WeightKG       float64  `json:"weight_kg"`
	HeightCM       float64  `json:"height_cm"`
	Age            int      `json:"age"`
	Gender         string   `json:"gender"`
	ActivityLevel  string   `json:"activity_level"`
	Goal           string   `json:"goal"`
	TargetWeightKG *float64 `json:"target_weight_kg"`
	TargetCalories *int     `json:"target_calories"`
	TargetProteinG *int     `json:"target_protein_g"`
	TargetCarbsG   *int     `json:"target_carbs_g"`
	TargetFatG     *int     `json:"target_fat_g"`
}

// createMealRequest is the request body for POST /api/intake/meals.
type createMealRequest struct {
	Date     string  `json:"date"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// createWorkoutLogRequest is the request body for POST /api/workout-logs.
// total_volume is never accepted from the client — it is derived server-side.
type createWorkoutLogRequest struct {
	WorkoutID   *int       `json:"workout_id"`
	WorkoutName string     `json:"workout_name"`
	Date        string     `json:"date"`
	Exercises   []exercise `json:"exercises"`
	DurationMin *int       `json:"duration_min"`
	Notes       *string    `json:"notes"`
}

// createCardioLogRequest is the request body for POST /api/cardio-logs.
// Distance and calories are derived server-side from the method inputs.
type createCardioLogRequest struct {
	Date            string   `json:"date"`
	Method          string   `json:"method"`
	Steps           *int     `json:"steps"`
	DurationMinutes *float64 `json:"duration_minutes"`
	AvgPaceMinPerKM *float64 `json:"avg_pace_min_per_km"`
}

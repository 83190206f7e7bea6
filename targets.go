package main

import (
	"fmt"
	"math"
	"time"
)

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used for
// input validation in putProfile.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// goalAdjustments maps goal strings to the daily calorie delta applied on top
// of TDEE: a 500 kcal deficit loses roughly 1 lb/week, a 500 kcal surplus
// gains it. Also the source of truth for valid goals.
var goalAdjustments = map[string]int{
	"lose":     -500,
	"maintain": 0,
	"gain":     500,
}

// nutritionTargets is the output of the target engine: daily calorie budget
// and macro targets in grams, all integers.
type nutritionTargets struct {
	TargetCalories int `json:"target_calories"`
	TargetProteinG int `json:"target_protein_g"`
	TargetCarbsG   int `json:"target_carbs_g"`
	TargetFatG     int `json:"target_fat_g"`
}

// computeBMR computes basal metabolic rate via Mifflin-St Jeor.
// "other" uses the average of the male and female offsets.
func computeBMR(weightKG, heightCM float64, age int, gender string) (float64, error) {
	if weightKG <= 0 || math.IsNaN(weightKG) {
		return 0, fmt.Errorf("weight must be positive, got %v", weightKG)
	}
	if heightCM <= 0 || math.IsNaN(heightCM) {
		return 0, fmt.Errorf("height must be positive, got %v", heightCM)
	}
	if age <= 0 {
		return 0, fmt.Errorf("age must be positive, got %d", age)
	}

	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	switch gender {
	case "male":
		bmr += 5
	case "female":
		bmr -= 161
	case "other":
		bmr -= 78
	default:
		return 0, fmt.Errorf("unknown gender %q", gender)
	}
	return bmr, nil
}

// macroSplit derives macro gram targets from a calorie budget. Protein is
// weight-based (g per kg scaled by goal); the remaining calories are split
// between carbs (4 kcal/g) and fat (9 kcal/g) by goal-specific ratios.
func macroSplit(targetCalories int, goal string, weightKG float64) (proteinG, carbsG, fatG int) {
	proteinPerKG := 2.0
	carbRatio, fatRatio := 0.45, 0.55
	switch goal {
	case "lose":
		proteinPerKG = 2.2
		carbRatio, fatRatio = 0.35, 0.65
	case "gain":
		proteinPerKG = 1.8
		carbRatio, fatRatio = 0.55, 0.45
	}

	proteinG = int(math.Round(weightKG * proteinPerKG))
	remaining := float64(targetCalories - proteinG*4)
	carbsG = int(math.Round(remaining * carbRatio / 4))
	fatG = int(math.Round(remaining * fatRatio / 9))
	return proteinG, carbsG, fatG
}

// computeTargetsFor computes the full target tuple for an arbitrary body
// weight. Shared by the current-weight and target-weight engines — the only
// difference between them is which weight drives BMR and protein.
func computeTargetsFor(weightKG, heightCM float64, age int, gender, activityLevel, goal string) (nutritionTargets, error) {
	bmr, err := computeBMR(weightKG, heightCM, age, gender)
	if err != nil {
		return nutritionTargets{}, err
	}
	mult, ok := activityMultipliers[activityLevel]
	if !ok {
		return nutritionTargets{}, fmt.Errorf("unknown activity level %q", activityLevel)
	}
	adj, ok := goalAdjustments[goal]
	if !ok {
		return nutritionTargets{}, fmt.Errorf("unknown goal %q", goal)
	}

	tdee := bmr * mult
	targetCalories := int(math.Round(tdee)) + adj
	proteinG, carbsG, fatG := macroSplit(targetCalories, goal, weightKG)

	return nutritionTargets{
		TargetCalories: targetCalories,
		TargetProteinG: proteinG,
		TargetCarbsG:   carbsG,
		TargetFatG:     fatG,
	}, nil
}

// computeNutritionTargets computes daily calorie and macro targets from the
// user's current body stats.
func computeNutritionTargets(p *userProfile) (nutritionTargets, error) {
	return computeTargetsFor(p.WeightKG, p.HeightCM, p.Age, p.Gender, p.ActivityLevel, p.Goal)
}

// computeProjectedTargets computes targets for the body at goal weight (BMR
// and protein driven by target weight, not current weight) and estimates the
// weeks needed to get there. Weekly rate is 0.5 kg for losing, 0.25 kg
// otherwise — maintain with a target weight uses the slower rate.
func computeProjectedTargets(p *userProfile) (nutritionTargets, int, error) {
	if p.TargetWeightKG == nil {
		return nutritionTargets{}, 0, fmt.Errorf("profile has no target weight")
	}
	targetWeight := *p.TargetWeightKG
	if targetWeight <= 0 || math.IsNaN(targetWeight) {
		return nutritionTargets{}, 0, fmt.Errorf("target weight must be positive, got %v", targetWeight)
	}

	targets, err := computeTargetsFor(targetWeight, p.HeightCM, p.Age, p.Gender, p.ActivityLevel, p.Goal)
	if err != nil {
		return nutritionTargets{}, 0, err
	}

	weeklyRate := 0.25
	if p.Goal == "lose" {
		weeklyRate = 0.5
	}
	weeks := int(math.Round(math.Abs(targetWeight-p.WeightKG) / weeklyRate))
	return targets, weeks, nil
}

// round1 rounds to one decimal place. Used for average set weight.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// currentMonday returns the Monday of the current week at midnight UTC.
// Uses AddDate to safely handle month/year boundaries — direct day subtraction
// can produce day=0 or negative, which time.Date normalizes but is confusing.
func currentMonday() time.Time {
	now := time.Now().UTC()
	weekday := int(now.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	daysBack := weekday - 1
	return now.AddDate(0, 0, -daysBack).Truncate(24 * time.Hour)
}

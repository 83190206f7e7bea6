package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// validGenders mirrors the gender enum accepted by the target engine.
var validGenders = map[string]bool{
	"male":   true,
	"female": true,
	"other":  true,
}

// getProfile returns the profile for the authenticated user, including the
// stored targets.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	c.JSON(http.StatusOK, p)
}

// putProfile replaces the user's body profile and recomputes stored targets.
// When a target weight is set the projection engine drives the targets (BMR
// at goal weight) and the estimated weeks to goal; otherwise the current
// weight does. Explicit target fields in the request override the computed
// values.
// PUT /api/profile.
func (h *Handler) putProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body putProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate enums up front — unknown values would silently break every
	// later target computation.
	if !validGenders[body.Gender] {
		apiError(c, http.StatusBadRequest, "gender must be one of: male, female, other")
		return
	}
	if _, ok := activityMultipliers[body.ActivityLevel]; !ok {
		apiError(c, http.StatusBadRequest, "activity_level must be one of: sedentary, light, moderate, active, very_active")
		return
	}
	if _, ok := goalAdjustments[body.Goal]; !ok {
		apiError(c, http.StatusBadRequest, "goal must be one of: lose, maintain, gain")
		return
	}

	candidate := userProfile{
		UserID:         userID,
		WeightKG:       body.WeightKG,
		HeightCM:       body.HeightCM,
		Age:            body.Age,
		Gender:         body.Gender,
		ActivityLevel:  body.ActivityLevel,
		Goal:           body.Goal,
		TargetWeightKG: body.TargetWeightKG,
	}

	// Compute targets; the projection engine takes over when a target weight
	// is present. Invalid numeric input surfaces as 400 here.
	var targets nutritionTargets
	var weeksToGoal *int
	var err error
	if body.TargetWeightKG != nil {
		var weeks int
		targets, weeks, err = computeProjectedTargets(&candidate)
		weeksToGoal = &weeks
	} else {
		targets, err = computeNutritionTargets(&candidate)
	}
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	// Explicit targets override the computed ones.
	if body.TargetCalories != nil {
		targets.TargetCalories = *body.TargetCalories
	}
	if body.TargetProteinG != nil {
		targets.TargetProteinG = *body.TargetProteinG
	}
	if body.TargetCarbsG != nil {
		targets.TargetCarbsG = *body.TargetCarbsG
	}
	if body.TargetFatG != nil {
		targets.TargetFatG = *body.TargetFatG
	}

	p, err := queryOne[userProfile](h.db, c,
		`INSERT INTO user_profiles
			(user_id, weight_kg, height_cm, age, gender, activity_level, goal,
			 target_weight_kg, target_calories, target_protein_g, target_carbs_g,
			 target_fat_g, estimated_weeks_to_goal, updated_at)
		 VALUES
			(@userID, @weightKG, @heightCM, @age, @gender, @activityLevel, @goal,
			 @targetWeightKG, @targetCalories, @targetProteinG, @targetCarbsG,
			 @targetFatG, @weeksToGoal, now())
		 ON CONFLICT (user_id) DO UPDATE SET
			weight_kg               = EXCLUDED.weight_kg,
			height_cm               = EXCLUDED.height_cm,
			age                     = EXCLUDED.age,
			gender                  = EXCLUDED.gender,
			activity_level          = EXCLUDED.activity_level,
			goal                    = EXCLUDED.goal,
			target_weight_kg        = EXCLUDED.target_weight_kg,
			target_calories         = EXCLUDED.target_calories,
			target_protein_g        = EXCLUDED.target_protein_g,
			target_carbs_g          = EXCLUDED.target_carbs_g,
			target_fat_g            = EXCLUDED.target_fat_g,
			estimated_weeks_to_goal = EXCLUDED.estimated_weeks_to_goal,
			updated_at              = now()
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "weightKG": body.WeightKG, "heightCM": body.HeightCM,
			"age": body.Age, "gender": body.Gender,
			"activityLevel": body.ActivityLevel, "goal": body.Goal,
			"targetWeightKG": body.TargetWeightKG,
			"targetCalories": targets.TargetCalories,
			"targetProteinG": targets.TargetProteinG,
			"targetCarbsG":   targets.TargetCarbsG,
			"targetFatG":     targets.TargetFatG,
			"weeksToGoal":    weeksToGoal,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

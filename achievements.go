package main

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// achievementDef defines one streak threshold. The key is the stable per-user
// identifier used for upserts.
type achievementDef struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Metric        string `json:"metric"`
	ThresholdDays int    `json:"threshold_days"`
}

// achievementDefs is the fixed threshold table: {protein, carbs} × {7, 14, 21, 30}.
var achievementDefs = []achievementDef{
	{Key: "protein_7", Title: "Protein: 1 Week", Description: "Hit protein target 7 days in a row", Metric: "protein", ThresholdDays: 7},
	{Key: "protein_14", Title: "Protein: 2 Weeks", Description: "Hit protein target 14 days in a row", Metric: "protein", ThresholdDays: 14},
	{Key: "protein_21", Title: "Protein: 3 Weeks", Description: "Hit protein target 21 days in a row", Metric: "protein", ThresholdDays: 21},
	{Key: "protein_30", Title: "Protein: 1 Month", Description: "Hit protein target 30 days in a row", Metric: "protein", ThresholdDays: 30},
	{Key: "carbs_7", Title: "Carbs: 1 Week", Description: "Hit carbs target 7 days in a row", Metric: "carbs", ThresholdDays: 7},
	{Key: "carbs_14", Title: "Carbs: 2 Weeks", Description: "Hit carbs target 14 days in a row", Metric: "carbs", ThresholdDays: 14},
	{Key: "carbs_21", Title: "Carbs: 3 Weeks", Description: "Hit carbs target 21 days in a row", Metric: "carbs", ThresholdDays: 21},
	{Key: "carbs_30", Title: "Carbs: 1 Month", Description: "Hit carbs target 30 days in a row", Metric: "carbs", ThresholdDays: 30},
}

// streakWindowDays is how far back the evaluator looks. 60 days covers the
// 30-day thresholds with margin.
const streakWindowDays = 60

// currentStreak counts consecutive qualifying days ending today. values is
// ordered most recent first (index 0 = today). The walk stops at the first
// day below target — a single miss, including today, resets the streak from
// that point backward.
func currentStreak(values []float64, target float64) int {
	if target <= 0 {
		return 0
	}
	streak := 0
	for _, v := range values {
		if v < target {
			break
		}
		streak++
	}
	return streak
}

// unlockedDefs returns the threshold entries satisfied by the given streaks.
func unlockedDefs(proteinStreak, carbsStreak int) []achievementDef {
	var unlocked []achievementDef
	for _, def := range achievementDefs {
		streak := proteinStreak
		if def.Metric == "carbs" {
			streak = carbsStreak
		}
		if streak >= def.ThresholdDays {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}

// recentValues flattens a dense by-day map into a most-recent-first slice of
// windowDays values ending today. Days absent from the map count as 0.
func recentValues(byDay map[string]float64, today time.Time, windowDays int) []float64 {
	values := make([]float64, windowDays)
	for i := 0; i < windowDays; i++ {
		d := today.AddDate(0, 0, -i).Format("2006-01-02")
		values[i] = byDay[d]
	}
	return values
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getAchievements returns all achievements unlocked by the user.
// GET /api/achievements.
func (h *Handler) getAchievements(c *gin.Context) {
	userID := c.GetInt("user_id")

	rows, err := queryMany[achievement](h.db, c,
		"SELECT * FROM achievements WHERE user_id = @userID ORDER BY unlocked_at ASC",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch achievements")
		return
	}
	if rows == nil {
		rows = []achievement{}
	}

	c.JSON(http.StatusOK, rows)
}

// evaluateAchievements recomputes the protein and carbs streaks over the last
// 60 days and upserts an achievement row for every satisfied threshold.
// Upserts refresh unlocked_at but never delete — unlocking is monotonic, so a
// streak that later collapses leaves earlier achievements in place.
// POST /api/achievements/evaluate.
func (h *Handler) evaluateAchievements(c *gin.Context) {
	userID := c.GetInt("user_id")

	profile, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	if profile.TargetProteinG == nil || profile.TargetCarbsG == nil {
		apiError(c, http.StatusBadRequest, "profile has no macro targets")
		return
	}

	today := time.Now()
	start := today.AddDate(0, 0, -(streakWindowDays - 1)).Format("2006-01-02")
	end := today.Format("2006-01-02")

	intakes, err := queryMany[intakeDayRow](h.db, c,
		`SELECT
			date,
			COALESCE(SUM(calories), 0)  AS calories,
			COALESCE(SUM(protein_g), 0) AS protein_g,
			COALESCE(SUM(carbs_g), 0)   AS carbs_g,
			COALESCE(SUM(fat_g), 0)     AS fat_g
		 FROM meals
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 GROUP BY date`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch intake data")
		return
	}

	proteinByDay := make(map[string]float64, len(intakes))
	carbsByDay := make(map[string]float64, len(intakes))
	for _, row := range intakes {
		d := row.Date.Time.Format("2006-01-02")
		proteinByDay[d] = row.ProteinG
		carbsByDay[d] = row.CarbsG
	}

	proteinStreak := currentStreak(recentValues(proteinByDay, today, streakWindowDays), float64(*profile.TargetProteinG))
	carbsStreak := currentStreak(recentValues(carbsByDay, today, streakWindowDays), float64(*profile.TargetCarbsG))

	// Each satisfied threshold writes a distinct key, so the upserts are
	// independent and can run concurrently.
	unlocked := unlockedDefs(proteinStreak, carbsStreak)
	var wg sync.WaitGroup
	for _, def := range unlocked {
		wg.Add(1)
		go func(def achievementDef) {
			defer wg.Done()
			_, err := h.db.Exec(c.Request.Context(),
				`INSERT INTO achievements (user_id, key, title, description, level, unlocked_at)
				 VALUES (@userID, @key, @title, @description, 1, now())
				 ON CONFLICT (user_id, key) DO UPDATE SET unlocked_at = EXCLUDED.unlocked_at`,
				pgx.NamedArgs{
					"userID": userID, "key": def.Key,
					"title": def.Title, "description": def.Description,
				})
			if err != nil {
				log.Printf("[achievements] upsert %s failed for user %d: %v", def.Key, userID, err)
			}
		}(def)
	}
	wg.Wait()

	rows, err := queryMany[achievement](h.db, c,
		"SELECT * FROM achievements WHERE user_id = @userID ORDER BY unlocked_at ASC",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch achievements")
		return
	}
	if rows == nil {
		rows = []achievement{}
	}

	c.JSON(http.StatusOK, gin.H{
		"streaks": gin.H{
			"protein": proteinStreak,
			"carbs":   carbsStreak,
		},
		"achievements": rows,
	})
}

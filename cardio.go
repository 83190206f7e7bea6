package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// cardioInput carries the raw inputs for one cardio session. Method is
// "steps" or "time"; unset fields are nil.
type cardioInput struct {
	Method          string   `json:"method"`
	Steps           *int     `json:"steps,omitempty"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty"`
	AvgPaceMinPerKM *float64 `json:"avg_pace_min_per_km,omitempty"`
	DistanceKM      *float64 `json:"distance_km,omitempty"`
}

// estimationProfile is the minimal body profile for calorie estimation.
// Only weight is required; the rest improve the AI estimate when present.
type estimationProfile struct {
	WeightKG float64
	HeightCM float64
	Age      int
	Gender   string
}

// averageStrideMeters is the assumed stride length when converting steps to
// distance.
const averageStrideMeters = 0.78

// metForPace picks a running MET value from average pace in min/km. Faster
// pace means higher intensity. 8 is the default for an unknown pace.
func metForPace(paceMinPerKM *float64) float64 {
	if paceMinPerKM == nil {
		return 8
	}
	pace := *paceMinPerKM
	switch {
	case pace <= 4.5:
		return 13
	case pace <= 5.5:
		return 11
	case pace <= 6.5:
		return 10
	case pace <= 7.5:
		return 9
	case pace <= 8.5:
		return 8
	default:
		return 7
	}
}

// estimateCardioHeuristic is the deterministic MET-based fallback:
// calories = MET × weight(kg) × hours. Duration is taken from the explicit
// minutes when present, otherwise derived from distance and pace, otherwise
// from steps via the average stride length with an assumed pace of 6 min/km.
// Returns 0 when the inputs are insufficient to derive any duration.
func estimateCardioHeuristic(weightKG float64, cardio cardioInput) int {
	met := metForPace(cardio.AvgPaceMinPerKM)

	var hours float64
	switch {
	case cardio.DurationMinutes != nil && *cardio.DurationMinutes > 0:
		hours = *cardio.DurationMinutes / 60
	case cardio.Steps != nil && cardio.DistanceKM != nil && cardio.AvgPaceMinPerKM != nil:
		hours = *cardio.DistanceKM * *cardio.AvgPaceMinPerKM / 60
	case cardio.Steps != nil:
		km := float64(*cardio.Steps) * averageStrideMeters / 1000
		pace := 6.0
		if cardio.AvgPaceMinPerKM != nil {
			pace = *cardio.AvgPaceMinPerKM
		}
		hours = km * pace / 60
	}

	calories := met * weightKG * hours
	if math.IsNaN(calories) || calories <= 0 {
		return 0
	}
	return int(math.Round(calories))
}

// firstNumberPattern matches the first numeric token in the AI reply,
// tolerating surrounding prose.
var firstNumberPattern = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)`)

// cardioEstimatePromptTemplate asks for a bare number so parsing stays trivial.
const cardioEstimatePromptTemplate = `You are a fitness calorie-burn estimator. Estimate calories burned for a running session.
User: age=%s, height=%s cm, weight=%.1f kg, gender=%s.
Activity details: %s

Return only a single number indicating estimated calories burned (rounded).`

// orUnknown renders an optional prompt field, since the AI handles "unknown"
// better than a zero.
func orUnknown(v float64) string {
	if v <= 0 {
		return "unknown"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// estimateCardioCalories estimates the calorie burn for one session. The AI
// estimator is tried first; any failure (no key, network error, non-numeric
// reply) falls back to the deterministic MET heuristic rather than erroring.
func estimateCardioCalories(ctx context.Context, baseURL string, profile estimationProfile, cardio cardioInput) int {
	detail, err := json.Marshal(cardio)
	if err == nil {
		age := "unknown"
		if profile.Age > 0 {
			age = strconv.Itoa(profile.Age)
		}
		gender := profile.Gender
		if gender == "" {
			gender = "unknown"
		}
		prompt := fmt.Sprintf(cardioEstimatePromptTemplate,
			age, orUnknown(profile.HeightCM), profile.WeightKG, gender, string(detail))

		content, aiErr := callOpenAI(ctx, []openAIMessage{
			{Role: "user", Content: prompt},
		}, baseURL)
		if aiErr == nil {
			if match := firstNumberPattern.FindString(content); match != "" {
				if v, parseErr := strconv.ParseFloat(match, 64); parseErr == nil {
					return int(math.Round(v))
				}
			}
			log.Printf("[cardio] no numeric token in AI reply, using heuristic")
		} else {
			log.Printf("[cardio] AI estimation failed, using heuristic: %v", aiErr)
		}
	}

	return estimateCardioHeuristic(profile.WeightKG, cardio)
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// createCardioLog logs a cardio session. Distance is derived from the method
// inputs and calories estimated via AI with a deterministic fallback.
// POST /api/cardio-logs.
func (h *Handler) createCardioLog(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createCardioLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	input := cardioInput{
		Method:          body.Method,
		Steps:           body.Steps,
		DurationMinutes: body.DurationMinutes,
		AvgPaceMinPerKM: body.AvgPaceMinPerKM,
	}
	switch body.Method {
	case "time":
		if body.DurationMinutes == nil || body.AvgPaceMinPerKM == nil {
			apiError(c, http.StatusBadRequest, "duration_minutes and avg_pace_min_per_km are required for method=time")
			return
		}
		if *body.DurationMinutes <= 0 || *body.AvgPaceMinPerKM <= 0 {
			apiError(c, http.StatusBadRequest, "duration_minutes and avg_pace_min_per_km must be positive")
			return
		}
		km := *body.DurationMinutes / *body.AvgPaceMinPerKM
		input.DistanceKM = &km
	case "steps":
		if body.Steps == nil || *body.Steps <= 0 {
			apiError(c, http.StatusBadRequest, "steps is required for method=steps")
			return
		}
		km := float64(*body.Steps) * averageStrideMeters / 1000
		input.DistanceKM = &km
	default:
		apiError(c, http.StatusBadRequest, "method must be one of: steps, time")
		return
	}

	// Profile weight seeds the estimate; fall back to a 70 kg adult when the
	// user has no profile yet.
	est := estimationProfile{WeightKG: 70}
	if profile, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID}); err == nil {
		est = estimationProfile{
			WeightKG: profile.WeightKG,
			HeightCM: profile.HeightCM,
			Age:      profile.Age,
			Gender:   profile.Gender,
		}
	}

	calories := estimateCardioCalories(c.Request.Context(), h.openAIBaseURL, est, input)

	entry, err := queryOne[cardioLog](h.db, c,
		`INSERT INTO cardio_logs (user_id, date, method, steps, duration_minutes, avg_pace_min_per_km, distance_km, calories_burned)
		 VALUES (@userID, @date, @method, @steps, @durationMinutes, @avgPace, @distanceKM, @caloriesBurned)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "method": body.Method,
			"steps": input.Steps, "durationMinutes": input.DurationMinutes,
			"avgPace": input.AvgPaceMinPerKM, "distanceKM": input.DistanceKM,
			"caloriesBurned": calories,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create cardio log")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// getCardioLogs returns cardio sessions within [start, end].
// GET /api/cardio-logs?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getCardioLogs(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := parseRangeParams(c)
	if !ok {
		return
	}

	entries, err := queryMany[cardioLog](h.db, c,
		`SELECT * FROM cardio_logs
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC, created_at ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch cardio logs")
		return
	}
	if entries == nil {
		entries = []cardioLog{}
	}

	c.JSON(http.StatusOK, entries)
}

// updateCardioLog partially updates a cardio session. Calories are not
// re-estimated here — the client sends the corrected value explicitly.
// PUT /api/cardio-logs/:id. Uses COALESCE so omitted fields keep their values.
func (h *Handler) updateCardioLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Date            *string  `json:"date"`
		Steps           *int     `json:"steps"`
		DurationMinutes *float64 `json:"duration_minutes"`
		AvgPaceMinPerKM *float64 `json:"avg_pace_min_per_km"`
		DistanceKM      *float64 `json:"distance_km"`
		CaloriesBurned  *int     `json:"calories_burned"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse("2006-01-02", *body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	entry, err := queryOne[cardioLog](h.db, c,
		`UPDATE cardio_logs SET
			date                = COALESCE(@date, date),
			steps               = COALESCE(@steps, steps),
			duration_minutes    = COALESCE(@durationMinutes, duration_minutes),
			avg_pace_min_per_km = COALESCE(@avgPace, avg_pace_min_per_km),
			distance_km         = COALESCE(@distanceKM, distance_km),
			calories_burned     = COALESCE(@caloriesBurned, calories_burned)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID, "date": body.Date,
			"steps": body.Steps, "durationMinutes": body.DurationMinutes,
			"avgPace": body.AvgPaceMinPerKM, "distanceKM": body.DistanceKM,
			"caloriesBurned": body.CaloriesBurned,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "cardio log not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update cardio log")
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// deleteCardioLog removes a cardio session. Returns 204 on success.
// DELETE /api/cardio-logs/:id.
func (h *Handler) deleteCardioLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM cardio_logs WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete cardio log")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "cardio log not found")
		return
	}

	c.Status(http.StatusNoContent)
}

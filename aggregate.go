package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// intakeDayRow is the shape of each row from the per-day intake GROUP BY
// query. Totals are derived from meal rows here, never stored — the
// "totals equal sum of meals" invariant holds by construction.
type intakeDayRow struct {
	Date     DateOnly `db:"date"`
	Calories float64  `db:"calories"`
	ProteinG float64  `db:"protein_g"`
	CarbsG   float64  `db:"carbs_g"`
	FatG     float64  `db:"fat_g"`
}

// intakeTotals sums a day's meal rows into the dailyIntake totals.
// This is the single place intake totals are computed.
func intakeTotals(meals []meal) (calories int, proteinG, carbsG, fatG float64) {
	for _, m := range meals {
		calories += m.Calories
		proteinG += m.ProteinG
		carbsG += m.CarbsG
		fatG += m.FatG
	}
	return calories, proteinG, carbsG, fatG
}

// rangeDays expands an inclusive [start, end] date range into its list of
// "YYYY-MM-DD" keys. Dates stay in the calendar domain throughout — no UTC
// conversion that could shift a day at the boundary.
func rangeDays(start, end time.Time) []string {
	days := []string{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format("2006-01-02"))
	}
	return days
}

// aggregateRange rolls up intake, cardio, and weight records into dense
// per-day maps over [start, end]. Every calendar day in the range gets an
// entry: days with no records are zero, and weight is forward-filled from the
// most recent prior sample, seeded by the profile weight before the first.
func aggregateRange(start, end time.Time, intakes []intakeDayRow, cardio []cardioLog, weights []weightEntry, profileWeightKG float64) rangeStats {
	days := rangeDays(start, end)

	stats := rangeStats{
		Start:               start.Format("2006-01-02"),
		End:                 end.Format("2006-01-02"),
		CaloriesByDay:       make(map[string]float64, len(days)),
		ProteinByDay:        make(map[string]float64, len(days)),
		CarbsByDay:          make(map[string]float64, len(days)),
		FatByDay:            make(map[string]float64, len(days)),
		CardioCaloriesByDay: make(map[string]float64, len(days)),
		CardioDistanceByDay: make(map[string]float64, len(days)),
		CardioDurationByDay: make(map[string]float64, len(days)),
		WeightByDay:         make(map[string]float64, len(days)),
	}
	for _, d := range days {
		stats.CaloriesByDay[d] = 0
		stats.ProteinByDay[d] = 0
		stats.CarbsByDay[d] = 0
		stats.FatByDay[d] = 0
		stats.CardioCaloriesByDay[d] = 0
		stats.CardioDistanceByDay[d] = 0
		stats.CardioDurationByDay[d] = 0
	}

	// One intake row per day (grouped upstream); records outside the range
	// are ignored rather than erroring.
	for _, row := range intakes {
		d := row.Date.Time.Format("2006-01-02")
		if _, ok := stats.CaloriesByDay[d]; !ok {
			continue
		}
		stats.CaloriesByDay[d] = row.Calories
		stats.ProteinByDay[d] = row.ProteinG
		stats.CarbsByDay[d] = row.CarbsG
		stats.FatByDay[d] = row.FatG
	}

	// A day may hold several cardio sessions — sum them.
	for _, cl := range cardio {
		d := cl.Date.Time.Format("2006-01-02")
		if _, ok := stats.CardioCaloriesByDay[d]; !ok {
			continue
		}
		stats.CardioCaloriesByDay[d] += float64(cl.CaloriesBurned)
		if cl.DistanceKM != nil {
			stats.CardioDistanceByDay[d] += *cl.DistanceKM
		}
		if cl.DurationMinutes != nil {
			stats.CardioDurationByDay[d] += *cl.DurationMinutes
		}
	}

	// Weight: exact sample wins, otherwise carry the last resolved value
	// forward, starting from the profile's stored weight.
	sampleByDay := make(map[string]float64, len(weights))
	for _, w := range weights {
		sampleByDay[w.Date.Time.Format("2006-01-02")] = w.WeightKG
	}
	last := profileWeightKG
	for _, d := range days {
		if v, ok := sampleByDay[d]; ok {
			last = v
		}
		stats.WeightByDay[d] = last
	}

	return stats
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// getRangeStats returns the dense per-day aggregation for [start, end]:
// intake totals, cardio totals, and forward-filled body weight.
// GET /api/stats/range?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getRangeStats(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := parseRangeParams(c)
	if !ok {
		return
	}
	startT, _ := time.Parse("2006-01-02", start)
	endT, _ := time.Parse("2006-01-02", end)

	args := pgx.NamedArgs{"userID": userID, "start": start, "end": end}

	intakes, err := queryMany[intakeDayRow](h.db, c,
		`SELECT
			date,
			COALESCE(SUM(calories), 0)  AS calories,
			COALESCE(SUM(protein_g), 0) AS protein_g,
			COALESCE(SUM(carbs_g), 0)   AS carbs_g,
			COALESCE(SUM(fat_g), 0)     AS fat_g
		 FROM meals
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 GROUP BY date`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch intake data")
		return
	}

	cardio, err := queryMany[cardioLog](h.db, c,
		`SELECT * FROM cardio_logs
		 WHERE user_id = @userID AND date >= @start AND date <= @end`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch cardio data")
		return
	}

	weights, err := queryMany[weightEntry](h.db, c,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight data")
		return
	}

	// A missing profile is not fatal — the weight series just starts at 0
	// until the first sample appears in the range.
	var profileWeight float64
	if profile, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID}); err == nil {
		profileWeight = profile.WeightKG
	}

	c.JSON(http.StatusOK, aggregateRange(startT, endT, intakes, cardio, weights, profileWeight))
}

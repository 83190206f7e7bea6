package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// validMealCategories is the set of allowed values for the meal_category enum.
// Reject unknown values with 400 rather than letting the DB return a cryptic 500.
var validMealCategories = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// getDailyIntake returns the day's meals with totals re-derived from the rows.
// GET /api/intake/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailyIntake(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	// Validate date format before querying — an invalid value silently returns no rows.
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	meals, err := queryMany[meal](h.db, c,
		`SELECT * FROM meals
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meals")
		return
	}
	// Ensure meals is an empty array (not null) in JSON
	if meals == nil {
		meals = []meal{}
	}

	calories, proteinG, carbsG, fatG := intakeTotals(meals)

	c.JSON(http.StatusOK, dailyIntake{
		Date:          date,
		Meals:         meals,
		TotalCalories: calories,
		TotalProteinG: proteinG,
		TotalCarbsG:   carbsG,
		TotalFatG:     fatG,
	})
}

// getIntakeRange returns one dailyIntake per day with logged meals in
// [start, end]. Days without meals are omitted here; the dense gap-filled
// view lives at /api/stats/range.
// GET /api/intake/range?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getIntakeRange(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := parseRangeParams(c)
	if !ok {
		return
	}

	meals, err := queryMany[meal](h.db, c,
		`SELECT * FROM meals
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC, created_at ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meals")
		return
	}

	// Bucket by date, preserving date order from the query.
	byDate := make(map[string][]meal)
	order := []string{}
	for _, m := range meals {
		d := m.Date.Time.Format("2006-01-02")
		if _, ok := byDate[d]; !ok {
			order = append(order, d)
		}
		byDate[d] = append(byDate[d], m)
	}

	result := make([]dailyIntake, 0, len(order))
	for _, d := range order {
		dayMeals := byDate[d]
		calories, proteinG, carbsG, fatG := intakeTotals(dayMeals)
		result = append(result, dailyIntake{
			Date:          d,
			Meals:         dayMeals,
			TotalCalories: calories,
			TotalProteinG: proteinG,
			TotalCarbsG:   carbsG,
			TotalFatG:     fatG,
		})
	}

	c.JSON(http.StatusOK, result)
}

// createMeal inserts a new meal into the day's intake. The response carries
// the whole day so the client sees totals consistent with the new row.
// POST /api/intake/meals. Defaults date to today if omitted.
func (h *Handler) createMeal(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createMealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	// Validate category against the enum; prevents a cryptic 500 from the DB constraint.
	if !validMealCategories[body.Category] {
		apiError(c, http.StatusBadRequest, "category must be one of: breakfast, lunch, dinner, snack")
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	_, err := queryOne[meal](h.db, c,
		`INSERT INTO meals (user_id, date, name, category, calories, protein_g, carbs_g, fat_g)
		 VALUES (@userID, @date, @name, @category, @calories, @proteinG, @carbsG, @fatG)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "name": body.Name,
			"category": body.Category, "calories": body.Calories,
			"proteinG": body.ProteinG, "carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create meal")
		return
	}

	h.respondWithDay(c, http.StatusCreated, userID, body.Date)
}

// updateMeal updates an existing meal entry.
// PUT /api/intake/meals/:id. Uses COALESCE so omitted fields keep their current value.
func (h *Handler) updateMeal(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Date     *string  `json:"date"`
		Name     *string  `json:"name"`
		Category *string  `json:"category"`
		Calories *int     `json:"calories"`
		ProteinG *float64 `json:"protein_g"`
		CarbsG   *float64 `json:"carbs_g"`
		FatG     *float64 `json:"fat_g"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Category != nil && !validMealCategories[*body.Category] {
		apiError(c, http.StatusBadRequest, "category must be one of: breakfast, lunch, dinner, snack")
		return
	}

	updated, err := queryOne[meal](h.db, c,
		`UPDATE meals SET
			date      = COALESCE(@date, date),
			name      = COALESCE(@name, name),
			category  = COALESCE(@category, category),
			calories  = COALESCE(@calories, calories),
			protein_g = COALESCE(@proteinG, protein_g),
			carbs_g   = COALESCE(@carbsG, carbs_g),
			fat_g     = COALESCE(@fatG, fat_g)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"date": body.Date, "name": body.Name, "category": body.Category,
			"calories": body.Calories, "proteinG": body.ProteinG,
			"carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "meal not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update meal")
		}
		return
	}

	h.respondWithDay(c, http.StatusOK, userID, updated.Date.Time.Format("2006-01-02"))
}

// deleteMeal removes a meal entry and returns the remaining day so the client
// gets totals consistent with the deletion.
// DELETE /api/intake/meals/:id.
func (h *Handler) deleteMeal(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	// RETURNING date so the refreshed day can be sent back after the delete.
	var date DateOnly
	err := h.db.QueryRow(c,
		"DELETE FROM meals WHERE id = @id AND user_id = @userID RETURNING date",
		pgx.NamedArgs{"id": id, "userID": userID}).Scan(&date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "meal not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to delete meal")
		}
		return
	}

	h.respondWithDay(c, http.StatusOK, userID, date.Time.Format("2006-01-02"))
}

// respondWithDay re-reads a day's meals and responds with the full dailyIntake.
// Every meal mutation goes through here so totals are always freshly derived.
func (h *Handler) respondWithDay(c *gin.Context, status, userID int, date string) {
	meals, err := queryMany[meal](h.db, c,
		`SELECT * FROM meals
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meals")
		return
	}
	if meals == nil {
		meals = []meal{}
	}

	calories, proteinG, carbsG, fatG := intakeTotals(meals)
	c.JSON(status, dailyIntake{
		Date:          date,
		Meals:         meals,
		TotalCalories: calories,
		TotalProteinG: proteinG,
		TotalCarbsG:   carbsG,
		TotalFatG:     fatG,
	})
}

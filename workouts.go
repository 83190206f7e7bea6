package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// exercisesParam serializes an exercise list into the JSON text form the JSONB
// columns take. The pool runs in simple query protocol mode, which cannot
// encode Go struct slices directly — arguments must be types pgx knows how to
// render as text. A nil list becomes a NULL parameter so the COALESCE partial
// updates leave the stored value untouched.
func exercisesParam(exercises []exercise) (*string, error) {
	if exercises == nil {
		return nil, nil
	}
	b, err := json.Marshal(exercises)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

/* ─── Workout templates ──────────────────────────────────────────────── */

// getWorkouts returns all workout templates for the user.
// GET /api/workouts.
func (h *Handler) getWorkouts(c *gin.Context) {
	userID := c.GetInt("user_id")

	workouts, err := queryMany[workout](h.db, c,
		"SELECT * FROM workouts WHERE user_id = @userID ORDER BY created_at",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch workouts")
		return
	}
	if workouts == nil {
		workouts = []workout{}
	}

	c.JSON(http.StatusOK, workouts)
}

// createWorkout creates a workout template. Exercises are stored as JSONB.
// POST /api/workouts.
func (h *Handler) createWorkout(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Name      string     `json:"name"`
		Exercises []exercise `json:"exercises"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if body.Exercises == nil {
		body.Exercises = []exercise{}
	}
	exercisesJSON, err := exercisesParam(body.Exercises)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid exercises")
		return
	}

	w, err := queryOne[workout](h.db, c,
		`INSERT INTO workouts (user_id, name, exercises)
		 VALUES (@userID, @name, @exercises)
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "name": body.Name, "exercises": exercisesJSON})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create workout")
		return
	}

	c.JSON(http.StatusCreated, w)
}

// updateWorkout updates a workout template's name and/or exercises.
// PUT /api/workouts/:id. Uses COALESCE so omitted fields keep their current value.
func (h *Handler) updateWorkout(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Name      *string    `json:"name"`
		Exercises []exercise `json:"exercises"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	exercisesJSON, err := exercisesParam(body.Exercises)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid exercises")
		return
	}

	w, err := queryOne[workout](h.db, c,
		`UPDATE workouts SET
			name       = COALESCE(@name, name),
			exercises  = COALESCE(@exercises, exercises),
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID, "name": body.Name, "exercises": exercisesJSON})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "workout not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update workout")
		}
		return
	}

	c.JSON(http.StatusOK, w)
}

// deleteWorkout removes a workout template. Logs that reference it survive —
// they carry their own copy of the exercises.
// DELETE /api/workouts/:id.
func (h *Handler) deleteWorkout(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM workouts WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete workout")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "workout not found")
		return
	}

	c.Status(http.StatusNoContent)
}

/* ─── Workout logs ───────────────────────────────────────────────────── */

// createWorkoutLog records a performed session. Total volume is derived from
// the completed sets here — clients cannot submit it.
// POST /api/workout-logs. Defaults date to today if omitted.
func (h *Handler) createWorkoutLog(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createWorkoutLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.WorkoutName == "" {
		apiError(c, http.StatusBadRequest, "workout_name is required")
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.Exercises == nil {
		body.Exercises = []exercise{}
	}
	exercisesJSON, err := exercisesParam(body.Exercises)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid exercises")
		return
	}

	volume := workoutVolume(workoutLog{Exercises: body.Exercises})

	entry, err := queryOne[workoutLog](h.db, c,
		`INSERT INTO workout_logs (user_id, workout_id, workout_name, date, exercises, total_volume, duration_min, notes)
		 VALUES (@userID, @workoutID, @workoutName, @date, @exercises, @totalVolume, @durationMin, @notes)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "workoutID": body.WorkoutID,
			"workoutName": body.WorkoutName, "date": body.Date,
			"exercises": exercisesJSON, "totalVolume": volume,
			"durationMin": body.DurationMin, "notes": body.Notes,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create workout log")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// getWorkoutLogs returns sessions within [start, end].
// GET /api/workout-logs?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getWorkoutLogs(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := parseRangeParams(c)
	if !ok {
		return
	}

	logs, err := queryMany[workoutLog](h.db, c,
		`SELECT * FROM workout_logs
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC, created_at ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch workout logs")
		return
	}
	if logs == nil {
		logs = []workoutLog{}
	}

	c.JSON(http.StatusOK, logs)
}

// updateWorkoutLog updates a session's exercises or metadata. When exercises
// change, total volume is re-derived from the new sets.
// PUT /api/workout-logs/:id.
func (h *Handler) updateWorkoutLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		WorkoutName *string    `json:"workout_name"`
		Date        *string    `json:"date"`
		Exercises   []exercise `json:"exercises"`
		DurationMin *int       `json:"duration_min"`
		Notes       *string    `json:"notes"`
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

	exercisesJSON, err := exercisesParam(body.Exercises)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid exercises")
		return
	}

	var volume *float64
	if body.Exercises != nil {
		v := workoutVolume(workoutLog{Exercises: body.Exercises})
		volume = &v
	}

	entry, err := queryOne[workoutLog](h.db, c,
		`UPDATE workout_logs SET
			workout_name = COALESCE(@workoutName, workout_name),
			date         = COALESCE(@date, date),
			exercises    = COALESCE(@exercises, exercises),
			total_volume = COALESCE(@totalVolume, total_volume),
			duration_min = COALESCE(@durationMin, duration_min),
			notes        = COALESCE(@notes, notes)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"workoutName": body.WorkoutName, "date": body.Date,
			"exercises": exercisesJSON, "totalVolume": volume,
			"durationMin": body.DurationMin, "notes": body.Notes,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "workout log not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update workout log")
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// deleteWorkoutLog removes a session. Returns 204 on success.
// DELETE /api/workout-logs/:id.
func (h *Handler) deleteWorkoutLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM workout_logs WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete workout log")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "workout log not found")
		return
	}

	c.Status(http.StatusNoContent)
}

/* ─── Analytics ──────────────────────────────────────────────────────── */

// getWorkoutStats returns training analytics over [start, end]: the exercise
// leaderboard, ISO-week buckets, top exercises by volume, and the range total.
// GET /api/workout-stats?start=YYYY-MM-DD&end=YYYY-MM-DD. When both params are
// omitted the window defaults to the current week (Monday through today).
func (h *Handler) getWorkoutStats(c *gin.Context) {
	userID := c.GetInt("user_id")

	var start, end string
	if c.Query("start") == "" && c.Query("end") == "" {
		start = currentMonday().Format("2006-01-02")
		end = time.Now().UTC().Format("2006-01-02")
	} else {
		var ok bool
		start, end, ok = parseRangeParams(c)
		if !ok {
			return
		}
	}

	logs, err := queryMany[workoutLog](h.db, c,
		`SELECT * FROM workout_logs
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch workout logs")
		return
	}

	exerciseLeaderboard := computeExerciseStats(logs)
	if exerciseLeaderboard == nil {
		exerciseLeaderboard = []exerciseStats{}
	}
	weekly := computeWeeklyStats(logs)
	if weekly == nil {
		weekly = []weeklyStats{}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_volume":  totalVolume(logs),
		"workout_count": len(logs),
		"exercises":     exerciseLeaderboard,
		"weekly":        weekly,
		"top_exercises": topExercises(logs, 5),
	})
}

package main

import (
	"fmt"
	"sort"
)

// exerciseStats is the per-exercise aggregate across a set of workout logs.
// Only completed sets count toward volume, sets, reps, and max weight.
type exerciseStats struct {
	ExerciseName  string  `json:"exercise_name"`
	TotalVolume   float64 `json:"total_volume"`
	TotalSets     int     `json:"total_sets"`
	TotalReps     int     `json:"total_reps"`
	AverageWeight float64 `json:"average_weight"`
	MaxWeight     float64 `json:"max_weight"`
	WorkoutCount  int     `json:"workout_count"`
}

// weeklyStats is one ISO-week bucket of workout logs, keyed "YYYY-Www".
type weeklyStats struct {
	Week         string          `json:"week"`
	TotalVolume  float64         `json:"total_volume"`
	WorkoutCount int             `json:"workout_count"`
	Exercises    []exerciseStats `json:"exercises"`
}

// workoutVolume computes the training volume of one session: reps × weight
// summed over completed sets only. Incomplete sets contribute nothing no
// matter their reps or weight.
func workoutVolume(log workoutLog) float64 {
	var total float64
	for _, ex := range log.Exercises {
		for _, s := range ex.Sets {
			if s.Completed {
				total += float64(s.Reps) * s.WeightKG
			}
		}
	}
	return total
}

// storedOrComputedVolume prefers the log's stored total volume and recomputes
// from the sets when it was never derived (older rows).
func storedOrComputedVolume(log workoutLog) float64 {
	if log.TotalVolume > 0 {
		return log.TotalVolume
	}
	return workoutVolume(log)
}

// totalVolume sums volume across a collection of logs.
func totalVolume(logs []workoutLog) float64 {
	var total float64
	for _, log := range logs {
		total += storedOrComputedVolume(log)
	}
	return total
}

// computeExerciseStats aggregates per-exercise stats across logs, grouped by
// exact exercise name (case-sensitive, no fuzzy matching). A log counts once
// toward WorkoutCount even when it holds several entries of the same exercise.
// Results are sorted descending by total volume — the exercise leaderboard.
func computeExerciseStats(logs []workoutLog) []exerciseStats {
	byName := make(map[string]*exerciseStats)
	order := []string{}

	for _, log := range logs {
		seenInLog := make(map[string]bool)
		for _, ex := range log.Exercises {
			stats, ok := byName[ex.Name]
			if !ok {
				stats = &exerciseStats{ExerciseName: ex.Name}
				byName[ex.Name] = stats
				order = append(order, ex.Name)
			}
			if !seenInLog[ex.Name] {
				stats.WorkoutCount++
				seenInLog[ex.Name] = true
			}
			for _, s := range ex.Sets {
				if !s.Completed {
					continue
				}
				stats.TotalSets++
				stats.TotalReps += s.Reps
				stats.TotalVolume += float64(s.Reps) * s.WeightKG
				if s.WeightKG > stats.MaxWeight {
					stats.MaxWeight = s.WeightKG
				}
			}
		}
	}

	result := make([]exerciseStats, 0, len(order))
	for _, name := range order {
		stats := byName[name]
		// Guard the average against logs with zero completed reps.
		if stats.TotalReps > 0 {
			stats.AverageWeight = round1(stats.TotalVolume / float64(stats.TotalReps))
		}
		result = append(result, *stats)
	}

	// Stable sort keeps first-seen order among equal volumes.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalVolume > result[j].TotalVolume
	})
	return result
}

// topExercises returns the leaderboard truncated to limit entries.
func topExercises(logs []workoutLog, limit int) []exerciseStats {
	stats := computeExerciseStats(logs)
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

// isoWeekKey formats a log date as its ISO-8601 week bucket, e.g. "2026-W01".
// ISOWeek returns the week-numbering year, which differs from the calendar
// year for dates around January 1st — late-December days can land in week 1
// of the next year and early-January days in week 52/53 of the previous one.
func isoWeekKey(d DateOnly) string {
	year, week := d.Time.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// computeWeeklyStats groups logs into ISO-week buckets and computes per-bucket
// volume, session count, and per-exercise stats. Buckets are sorted most
// recent first (descending week key — lexicographic order matches
// chronological order for the zero-padded "YYYY-Www" format).
func computeWeeklyStats(logs []workoutLog) []weeklyStats {
	byWeek := make(map[string][]workoutLog)
	for _, log := range logs {
		key := isoWeekKey(log.Date)
		byWeek[key] = append(byWeek[key], log)
	}

	result := make([]weeklyStats, 0, len(byWeek))
	for week, weekLogs := range byWeek {
		result = append(result, weeklyStats{
			Week:         week,
			TotalVolume:  totalVolume(weekLogs),
			WorkoutCount: len(weekLogs),
			Exercises:    computeExerciseStats(weekLogs),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Week > result[j].Week
	})
	return result
}

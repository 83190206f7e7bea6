package main

import (
	"testing"
	"time"
)

// makeLog builds a workoutLog on the given date with the given exercises.
// TotalVolume is left at 0 so the recompute fallback path is exercised unless
// a test sets it explicitly.
func makeLog(date string, exercises ...exercise) workoutLog {
	t, _ := time.Parse("2006-01-02", date)
	return workoutLog{Date: DateOnly{t}, Exercises: exercises}
}

func sets(s ...exerciseSet) []exerciseSet { return s }

/* ─── Volume tests ───────────────────────────────────────────────────── */

// TestWorkoutVolume_CompletedOnly verifies that only completed sets count:
// a log where every set is incomplete has volume 0 regardless of reps/weight.
func TestWorkoutVolume_CompletedOnly(t *testing.T) {
	log := makeLog("2026-08-10",
		exercise{Name: "Squat", Sets: sets(
			exerciseSet{Reps: 5, WeightKG: 100, Completed: false},
			exerciseSet{Reps: 5, WeightKG: 120, Completed: false},
		)},
	)
	if v := workoutVolume(log); v != 0 {
		t.Errorf("volume = %v, want 0 for all-incomplete log", v)
	}

	log.Exercises[0].Sets[1].Completed = true
	if v := workoutVolume(log); v != 600 {
		t.Errorf("volume = %v, want 600 (5×120)", v)
	}
}

// TestWorkoutVolume_SumsAcrossExercises verifies summation over multiple
// exercises and sets.
func TestWorkoutVolume_SumsAcrossExercises(t *testing.T) {
	log := makeLog("2026-08-10",
		exercise{Name: "Bench Press", Sets: sets(
			exerciseSet{Reps: 8, WeightKG: 60, Completed: true},
			exerciseSet{Reps: 8, WeightKG: 60, Completed: true},
		)},
		exercise{Name: "Deadlift", Sets: sets(
			exerciseSet{Reps: 5, WeightKG: 140, Completed: true},
		)},
	)
	// 2×(8×60) + 5×140 = 960 + 700
	if v := workoutVolume(log); v != 1660 {
		t.Errorf("volume = %v, want 1660", v)
	}
}

// TestTotalVolume_PrefersStored verifies that the stored total is trusted
// when present and recomputed when zero.
func TestTotalVolume_PrefersStored(t *testing.T) {
	stored := makeLog("2026-08-10",
		exercise{Name: "Squat", Sets: sets(exerciseSet{Reps: 5, WeightKG: 100, Completed: true})})
	stored.TotalVolume = 9999

	fresh := makeLog("2026-08-11",
		exercise{Name: "Squat", Sets: sets(exerciseSet{Reps: 5, WeightKG: 100, Completed: true})})

	if v := totalVolume([]workoutLog{stored, fresh}); v != 9999+500 {
		t.Errorf("total = %v, want %v", v, 9999+500)
	}
}

/* ─── Exercise stats tests ───────────────────────────────────────────── */

// TestComputeExerciseStats_Aggregation verifies grouping, per-field math, and
// that a log counts once toward WorkoutCount even with repeated exercise entries.
func TestComputeExerciseStats_Aggregation(t *testing.T) {
	logs := []workoutLog{
		makeLog("2026-08-10",
			exercise{Name: "Squat", Sets: sets(
				exerciseSet{Reps: 5, WeightKG: 100, Completed: true},
				exerciseSet{Reps: 3, WeightKG: 110, Completed: true},
				exerciseSet{Reps: 5, WeightKG: 120, Completed: false},
			)},
			// Same exercise twice in one session — still one workout for the count.
			exercise{Name: "Squat", Sets: sets(
				exerciseSet{Reps: 2, WeightKG: 90, Completed: true},
			)},
		),
		makeLog("2026-08-12",
			exercise{Name: "Squat", Sets: sets(
				exerciseSet{Reps: 5, WeightKG: 105, Completed: true},
			)},
		),
	}

	stats := computeExerciseStats(logs)
	if len(stats) != 1 {
		t.Fatalf("got %d exercises, want 1", len(stats))
	}
	s := stats[0]
	if s.ExerciseName != "Squat" {
		t.Errorf("name = %q, want Squat", s.ExerciseName)
	}
	// 5×100 + 3×110 + 2×90 + 5×105 = 500+330+180+525
	if s.TotalVolume != 1535 {
		t.Errorf("totalVolume = %v, want 1535", s.TotalVolume)
	}
	if s.TotalSets != 4 {
		t.Errorf("totalSets = %d, want 4 (incomplete set excluded)", s.TotalSets)
	}
	if s.TotalReps != 15 {
		t.Errorf("totalReps = %d, want 15", s.TotalReps)
	}
	if s.MaxWeight != 110 {
		t.Errorf("maxWeight = %v, want 110 (the 120 set was incomplete)", s.MaxWeight)
	}
	if s.WorkoutCount != 2 {
		t.Errorf("workoutCount = %d, want 2", s.WorkoutCount)
	}
	// 1535 / 15 = 102.333..., rounded to 1 decimal
	if s.AverageWeight != 102.3 {
		t.Errorf("averageWeight = %v, want 102.3", s.AverageWeight)
	}
}

// TestComputeExerciseStats_ZeroReps verifies the divide-by-zero guard: an
// exercise with no completed reps reports average weight 0.
func TestComputeExerciseStats_ZeroReps(t *testing.T) {
	logs := []workoutLog{
		makeLog("2026-08-10",
			exercise{Name: "Plank", Sets: sets(
				exerciseSet{Reps: 0, WeightKG: 0, Completed: false},
			)},
		),
	}
	stats := computeExerciseStats(logs)
	if len(stats) != 1 {
		t.Fatalf("got %d exercises, want 1", len(stats))
	}
	if stats[0].AverageWeight != 0 {
		t.Errorf("averageWeight = %v, want 0 when no reps completed", stats[0].AverageWeight)
	}
}

// TestComputeExerciseStats_Leaderboard verifies descending volume ordering
// and exact-name (case-sensitive) grouping.
func TestComputeExerciseStats_Leaderboard(t *testing.T) {
	logs := []workoutLog{
		makeLog("2026-08-10",
			exercise{Name: "squat", Sets: sets(exerciseSet{Reps: 5, WeightKG: 50, Completed: true})},
			exercise{Name: "Squat", Sets: sets(exerciseSet{Reps: 5, WeightKG: 100, Completed: true})},
			exercise{Name: "Row", Sets: sets(exerciseSet{Reps: 10, WeightKG: 80, Completed: true})},
		),
	}
	stats := computeExerciseStats(logs)
	if len(stats) != 3 {
		t.Fatalf("got %d exercises, want 3 ('squat' and 'Squat' are distinct)", len(stats))
	}
	if stats[0].ExerciseName != "Row" || stats[1].ExerciseName != "Squat" || stats[2].ExerciseName != "squat" {
		t.Errorf("order = [%s %s %s], want [Row Squat squat]",
			stats[0].ExerciseName, stats[1].ExerciseName, stats[2].ExerciseName)
	}
}

// TestTopExercises_Limit verifies leaderboard truncation.
func TestTopExercises_Limit(t *testing.T) {
	logs := []workoutLog{
		makeLog("2026-08-10",
			exercise{Name: "A", Sets: sets(exerciseSet{Reps: 1, WeightKG: 3, Completed: true})},
			exercise{Name: "B", Sets: sets(exerciseSet{Reps: 1, WeightKG: 2, Completed: true})},
			exercise{Name: "C", Sets: sets(exerciseSet{Reps: 1, WeightKG: 1, Completed: true})},
		),
	}
	top := topExercises(logs, 2)
	if len(top) != 2 {
		t.Fatalf("got %d exercises, want 2", len(top))
	}
	if top[0].ExerciseName != "A" || top[1].ExerciseName != "B" {
		t.Errorf("top = [%s %s], want [A B]", top[0].ExerciseName, top[1].ExerciseName)
	}
}

/* ─── Weekly bucketing tests ─────────────────────────────────────────── */

// TestISOWeekKey_YearBoundary verifies ISO week-numbering-year behavior at
// year boundaries: 2024-12-30 (a Monday) is week 1 of 2025, and 2027-01-01
// (a Friday) is week 53 of 2026.
func TestISOWeekKey_YearBoundary(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2024-12-30", "2025-W01"},
		{"2025-01-02", "2025-W01"},
		{"2027-01-01", "2026-W53"},
		{"2026-08-10", "2026-W33"},
	}
	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			d, _ := time.Parse("2006-01-02", tc.date)
			if got := isoWeekKey(DateOnly{d}); got != tc.want {
				t.Errorf("isoWeekKey(%s) = %s, want %s", tc.date, got, tc.want)
			}
		})
	}
}

// TestComputeWeeklyStats_Buckets verifies grouping into ISO weeks, per-bucket
// totals, and most-recent-first ordering.
func TestComputeWeeklyStats_Buckets(t *testing.T) {
	logs := []workoutLog{
		// Week 2026-W32: Mon 2026-08-03 .. Sun 2026-08-09
		makeLog("2026-08-03",
			exercise{Name: "Squat", Sets: sets(exerciseSet{Reps: 5, WeightKG: 100, Completed: true})}),
		makeLog("2026-08-09",
			exercise{Name: "Bench Press", Sets: sets(exerciseSet{Reps: 10, WeightKG: 50, Completed: true})}),
		// Week 2026-W33
		makeLog("2026-08-10",
			exercise{Name: "Squat", Sets: sets(exerciseSet{Reps: 5, WeightKG: 110, Completed: true})}),
	}

	weekly := computeWeeklyStats(logs)
	if len(weekly) != 2 {
		t.Fatalf("got %d weeks, want 2", len(weekly))
	}
	if weekly[0].Week != "2026-W33" || weekly[1].Week != "2026-W32" {
		t.Errorf("order = [%s %s], want [2026-W33 2026-W32]", weekly[0].Week, weekly[1].Week)
	}
	if weekly[0].TotalVolume != 550 {
		t.Errorf("W33 volume = %v, want 550", weekly[0].TotalVolume)
	}
	if weekly[1].TotalVolume != 1000 {
		t.Errorf("W32 volume = %v, want 1000", weekly[1].TotalVolume)
	}
	if weekly[1].WorkoutCount != 2 {
		t.Errorf("W32 workoutCount = %d, want 2", weekly[1].WorkoutCount)
	}
	if len(weekly[1].Exercises) != 2 {
		t.Errorf("W32 has %d exercises, want 2", len(weekly[1].Exercises))
	}
}

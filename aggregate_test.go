package main

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func intakeRow(date string, calories, protein, carbs, fat float64) intakeDayRow {
	return intakeDayRow{Date: DateOnly{day(date)}, Calories: calories, ProteinG: protein, CarbsG: carbs, FatG: fat}
}

func cardioEntry(date string, calories int, distanceKM, durationMin float64) cardioLog {
	return cardioLog{
		Date:            DateOnly{day(date)},
		CaloriesBurned:  calories,
		DistanceKM:      &distanceKM,
		DurationMinutes: &durationMin,
	}
}

func weightSample(date string, kg float64) weightEntry {
	return weightEntry{Date: DateOnly{day(date)}, WeightKG: kg}
}

/* ─── Density tests ──────────────────────────────────────────────────── */

// TestAggregateRange_Density verifies that every output map holds exactly one
// key per calendar day in the range, even with zero underlying records.
func TestAggregateRange_Density(t *testing.T) {
	stats := aggregateRange(day("2026-08-01"), day("2026-08-14"), nil, nil, nil, 0)

	maps := map[string]map[string]float64{
		"calories":        stats.CaloriesByDay,
		"protein":         stats.ProteinByDay,
		"carbs":           stats.CarbsByDay,
		"fat":             stats.FatByDay,
		"cardio calories": stats.CardioCaloriesByDay,
		"cardio distance": stats.CardioDistanceByDay,
		"cardio duration": stats.CardioDurationByDay,
		"weight":          stats.WeightByDay,
	}
	for name, m := range maps {
		if len(m) != 14 {
			t.Errorf("%s map has %d keys, want 14", name, len(m))
		}
	}
	for d := day("2026-08-01"); !d.After(day("2026-08-14")); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		if _, ok := stats.CaloriesByDay[key]; !ok {
			t.Errorf("missing day %s in calories map", key)
		}
	}
}

// TestAggregateRange_SingleDay verifies the degenerate start == end range.
func TestAggregateRange_SingleDay(t *testing.T) {
	stats := aggregateRange(day("2026-08-05"), day("2026-08-05"), nil, nil, nil, 80)
	if len(stats.CaloriesByDay) != 1 {
		t.Errorf("got %d days, want 1", len(stats.CaloriesByDay))
	}
	if stats.WeightByDay["2026-08-05"] != 80 {
		t.Errorf("weight = %v, want profile seed 80", stats.WeightByDay["2026-08-05"])
	}
}

/* ─── Intake and cardio rollup tests ─────────────────────────────────── */

// TestAggregateRange_IntakeTotals verifies the per-day intake placement and
// zero-filling of days without records.
func TestAggregateRange_IntakeTotals(t *testing.T) {
	intakes := []intakeDayRow{
		intakeRow("2026-08-02", 2100, 150, 220, 70),
		// Outside the range — must be ignored, not crash or leak.
		intakeRow("2026-09-01", 9999, 999, 999, 999),
	}
	stats := aggregateRange(day("2026-08-01"), day("2026-08-03"), intakes, nil, nil, 0)

	if stats.CaloriesByDay["2026-08-01"] != 0 {
		t.Errorf("day 1 calories = %v, want 0", stats.CaloriesByDay["2026-08-01"])
	}
	if stats.CaloriesByDay["2026-08-02"] != 2100 {
		t.Errorf("day 2 calories = %v, want 2100", stats.CaloriesByDay["2026-08-02"])
	}
	if stats.ProteinByDay["2026-08-02"] != 150 {
		t.Errorf("day 2 protein = %v, want 150", stats.ProteinByDay["2026-08-02"])
	}
	if _, ok := stats.CaloriesByDay["2026-09-01"]; ok {
		t.Error("out-of-range day leaked into the output")
	}
}

// TestAggregateRange_MultipleCardioSessions verifies that several sessions on
// one day sum rather than overwrite.
func TestAggregateRange_MultipleCardioSessions(t *testing.T) {
	cardio := []cardioLog{
		cardioEntry("2026-08-02", 300, 5, 30),
		cardioEntry("2026-08-02", 200, 3, 20),
	}
	stats := aggregateRange(day("2026-08-01"), day("2026-08-03"), nil, cardio, nil, 0)

	if stats.CardioCaloriesByDay["2026-08-02"] != 500 {
		t.Errorf("cardio calories = %v, want 500", stats.CardioCaloriesByDay["2026-08-02"])
	}
	if stats.CardioDistanceByDay["2026-08-02"] != 8 {
		t.Errorf("cardio distance = %v, want 8", stats.CardioDistanceByDay["2026-08-02"])
	}
	if stats.CardioDurationByDay["2026-08-02"] != 50 {
		t.Errorf("cardio duration = %v, want 50", stats.CardioDurationByDay["2026-08-02"])
	}
}

/* ─── Weight forward-fill tests ──────────────────────────────────────── */

// TestAggregateRange_WeightForwardFill verifies: exact samples win, gaps carry
// the last resolved value forward, and the profile weight seeds days before
// the first sample.
func TestAggregateRange_WeightForwardFill(t *testing.T) {
	weights := []weightEntry{
		weightSample("2026-08-03", 82.5),
		weightSample("2026-08-06", 81.9),
	}
	stats := aggregateRange(day("2026-08-01"), day("2026-08-07"), nil, nil, weights, 83.0)

	want := map[string]float64{
		"2026-08-01": 83.0, // profile seed
		"2026-08-02": 83.0,
		"2026-08-03": 82.5, // sample
		"2026-08-04": 82.5, // carried forward
		"2026-08-05": 82.5,
		"2026-08-06": 81.9, // sample
		"2026-08-07": 81.9,
	}
	for d, w := range want {
		if got := stats.WeightByDay[d]; got != w {
			t.Errorf("weight[%s] = %v, want %v", d, got, w)
		}
	}
}

/* ─── Intake totals invariant ────────────────────────────────────────── */

// TestIntakeTotals verifies the single totals derivation used by every intake
// surface: totals always equal the sum over the day's meals.
func TestIntakeTotals(t *testing.T) {
	meals := []meal{
		{Name: "Oatmeal", Category: "breakfast", Calories: 350, ProteinG: 12, CarbsG: 60, FatG: 7},
		{Name: "Chicken salad", Category: "lunch", Calories: 520, ProteinG: 45, CarbsG: 20, FatG: 28},
		{Name: "Apple", Category: "snack", Calories: 95, ProteinG: 0.5, CarbsG: 25, FatG: 0.3},
	}
	calories, protein, carbs, fat := intakeTotals(meals)
	if calories != 965 {
		t.Errorf("calories = %d, want 965", calories)
	}
	if protein != 57.5 {
		t.Errorf("protein = %v, want 57.5", protein)
	}
	if carbs != 105 {
		t.Errorf("carbs = %v, want 105", carbs)
	}
	if fat != 35.3 {
		t.Errorf("fat = %v, want 35.3", fat)
	}

	// Empty day: all zeros, no error.
	calories, protein, carbs, fat = intakeTotals(nil)
	if calories != 0 || protein != 0 || carbs != 0 || fat != 0 {
		t.Errorf("empty totals = %d/%v/%v/%v, want all 0", calories, protein, carbs, fat)
	}
}

// TestRangeDays verifies the inclusive day expansion.
func TestRangeDays(t *testing.T) {
	days := rangeDays(day("2026-02-27"), day("2026-03-02"))
	want := []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d", len(days), len(want))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("days[%d] = %s, want %s", i, days[i], want[i])
		}
	}
}

// Package progress derives completion percentage and time estimates
// from a course's lesson counts and duration.
package progress

import (
	"fmt"
	"math"
)

// Duration a span of minutes, both raw and broken down for display
type Duration struct {
	TotalMinutes float64 `json:"totalMinutes"`
	Hours        int     `json:"hours"`
	Minutes      int     `json:"minutes"`
	Formatted    string  `json:"formatted"`
}

// TimeEstimate time figures of a course
type TimeEstimate struct {
	TotalDuration    Duration `json:"totalDuration"`
	PerLesson        Duration `json:"perLesson"`
	Remaining        Duration `json:"remaining"`
	RemainingLessons int      `json:"remainingLessons"`
}

// ComputeProgress returns the completed share of a course in percent,
// rounded to one decimal place.
//
// completedCount is clamped into [0, totalLessons], so the result never
// leaves [0, 100]. A course without lessons has no progress.
func ComputeProgress(totalLessons, completedCount int) float64 {
	if totalLessons <= 0 {
		return 0
	}
	completed := clamp(completedCount, 0, totalLessons)
	return math.Round(float64(completed)/float64(totalLessons)*1000) / 10
}

// ComputeTimeEstimate spreads the course duration evenly over its lessons
// and derives how much of it is left. It never fails: negative inputs
// count as zero and any unexpected failure yields the zero estimate.
func ComputeTimeEstimate(totalLessons, completedCount, durationHours, durationMinutes int) (estimate TimeEstimate) {
	defer func() {
		if r := recover(); r != nil {
			estimate = ZeroEstimate()
		}
	}()

	totalLessons = max(totalLessons, 0)
	completedCount = max(completedCount, 0)
	totalMinutes := float64(max(durationHours, 0)*60 + max(durationMinutes, 0))

	var perLesson float64
	if totalLessons > 0 && totalMinutes > 0 {
		perLesson = totalMinutes / float64(totalLessons)
	}
	remainingLessons := max(totalLessons-completedCount, 0)

	return TimeEstimate{
		TotalDuration:    NewDuration(totalMinutes),
		PerLesson:        NewDuration(perLesson),
		Remaining:        NewDuration(float64(remainingLessons) * perLesson),
		RemainingLessons: remainingLessons,
	}
}

// ZeroEstimate an estimate where every figure is zero
func ZeroEstimate() TimeEstimate {
	zero := NewDuration(0)
	return TimeEstimate{
		TotalDuration: zero,
		PerLesson:     zero,
		Remaining:     zero,
	}
}

// floorEpsilon absorbs float error such as 59.99999999999999 for 60
const floorEpsilon = 1e-9

// NewDuration breaks minutes down into whole hours and minutes, dropping
// any fraction of a minute
func NewDuration(minutes float64) Duration {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 {
		minutes = 0
	}
	whole := int(math.Floor(minutes + floorEpsilon))
	h, m := whole/60, whole%60
	return Duration{
		TotalMinutes: minutes,
		Hours:        h,
		Minutes:      m,
		Formatted:    FormatDuration(h, m),
	}
}

// FormatDuration renders "1h 30min", "2h", "45min" or "0min"
func FormatDuration(hours, minutes int) string {
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dmin", minutes)
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

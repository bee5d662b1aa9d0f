package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	cases := []struct {
		name      string
		total     int
		completed int
		want      float64
	}{
		{"no lessons", 0, 0, 0},
		{"no lessons but completed count", 0, 5, 0},
		{"negative total", -3, 1, 0},
		{"nothing done", 10, 0, 0},
		{"one third", 3, 1, 33.3},
		{"two thirds", 3, 2, 66.7},
		{"one eighth", 8, 1, 12.5},
		{"five sevenths", 7, 5, 71.4},
		{"half percent", 200, 1, 0.5},
		{"all done", 12, 12, 100},
		{"overflow is clamped", 10, 15, 100},
		{"negative completed is clamped", 10, -1, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ComputeProgress(c.total, c.completed))
		})
	}
}

func TestComputeProgress_Range(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for completed := 0; completed <= total; completed++ {
			got := ComputeProgress(total, completed)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		}
	}
}

func TestComputeTimeEstimate(t *testing.T) {
	t.Run("twenty lessons over two hours with five done", func(t *testing.T) {
		e := ComputeTimeEstimate(20, 5, 2, 0)

		assert.Equal(t, 120.0, e.TotalDuration.TotalMinutes)
		assert.Equal(t, "2h", e.TotalDuration.Formatted)
		assert.Equal(t, 6.0, e.PerLesson.TotalMinutes)
		assert.Equal(t, "6min", e.PerLesson.Formatted)
		assert.Equal(t, 15, e.RemainingLessons)
		assert.Equal(t, 90.0, e.Remaining.TotalMinutes)
		assert.Equal(t, 1, e.Remaining.Hours)
		assert.Equal(t, 30, e.Remaining.Minutes)
		assert.Equal(t, "1h 30min", e.Remaining.Formatted)
	})

	t.Run("no lessons", func(t *testing.T) {
		e := ComputeTimeEstimate(0, 0, 2, 0)

		assert.Equal(t, "2h", e.TotalDuration.Formatted)
		assert.Equal(t, 0.0, e.PerLesson.TotalMinutes)
		assert.Equal(t, "0min", e.PerLesson.Formatted)
		assert.Equal(t, "0min", e.Remaining.Formatted)
		assert.Equal(t, 0, e.RemainingLessons)
	})

	t.Run("no duration", func(t *testing.T) {
		e := ComputeTimeEstimate(10, 2, 0, 0)

		assert.Equal(t, "0min", e.TotalDuration.Formatted)
		assert.Equal(t, 0.0, e.PerLesson.TotalMinutes)
		assert.Equal(t, 8, e.RemainingLessons)
		assert.Equal(t, 0.0, e.Remaining.TotalMinutes)
	})

	t.Run("fractional per lesson duration", func(t *testing.T) {
		e := ComputeTimeEstimate(7, 0, 1, 0)

		assert.InDelta(t, 60.0/7, e.PerLesson.TotalMinutes, 1e-9)
		assert.Equal(t, "8min", e.PerLesson.Formatted)
		assert.Equal(t, "1h", e.Remaining.Formatted)
	})

	t.Run("half minutes are dropped", func(t *testing.T) {
		e := ComputeTimeEstimate(2, 0, 0, 59)
		assert.Equal(t, 29.5, e.PerLesson.TotalMinutes)
		assert.Equal(t, "29min", e.PerLesson.Formatted)

		e = ComputeTimeEstimate(2, 0, 1, 59)
		assert.Equal(t, 59.5, e.PerLesson.TotalMinutes)
		assert.Equal(t, "59min", e.PerLesson.Formatted)
		assert.Equal(t, "1h 59min", e.Remaining.Formatted)
	})

	t.Run("completed beyond total", func(t *testing.T) {
		e := ComputeTimeEstimate(4, 9, 1, 20)

		assert.Equal(t, "1h 20min", e.TotalDuration.Formatted)
		assert.Equal(t, 0, e.RemainingLessons)
		assert.Equal(t, "0min", e.Remaining.Formatted)
	})

	t.Run("negative inputs count as zero", func(t *testing.T) {
		e := ComputeTimeEstimate(-5, -1, -2, -30)

		assert.Equal(t, ZeroEstimate(), e)
	})
}

func TestNewDuration(t *testing.T) {
	cases := []struct {
		minutes   float64
		hours     int
		rest      int
		formatted string
	}{
		{0, 0, 0, "0min"},
		{45, 0, 45, "45min"},
		{60, 1, 0, "1h"},
		{89.6, 1, 29, "1h 29min"},
		{29.5, 0, 29, "29min"},
		{59.5, 0, 59, "59min"},
		{125, 2, 5, "2h 5min"},
		{-3, 0, 0, "0min"},
	}
	for _, c := range cases {
		d := NewDuration(c.minutes)
		assert.Equal(t, c.hours, d.Hours, "minutes=%v", c.minutes)
		assert.Equal(t, c.rest, d.Minutes, "minutes=%v", c.minutes)
		assert.Equal(t, c.formatted, d.Formatted, "minutes=%v", c.minutes)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "3h 15min", FormatDuration(3, 15))
	assert.Equal(t, "3h", FormatDuration(3, 0))
	assert.Equal(t, "15min", FormatDuration(0, 15))
	assert.Equal(t, "0min", FormatDuration(0, 0))
}

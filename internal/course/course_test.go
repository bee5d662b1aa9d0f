package course

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pot-code/course-tracker/internal/infrastructure/driver"
	"github.com/pot-code/course-tracker/internal/infrastructure/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

// newTestConn opens a migrated sqlite database living in the test's temp dir
func newTestConn(t *testing.T) driver.ITransactionalDB {
	t.Helper()

	conn, err := driver.GetDBConnection(&driver.DBConfig{
		Driver:      driver.DriverSQLite,
		Schema:      filepath.Join(t.TempDir(), "courses.sqlite"),
		MaxConn:     4,
		BusyTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(context.Background()) })

	require.NoError(t, Migrate(context.Background(), conn))
	return conn
}

func newTestUseCases(t *testing.T) (*CourseUseCaseImpl, *LessonUseCaseImpl, *CourseSQL) {
	t.Helper()

	repo := NewCourseRepository(newTestConn(t))
	v := validate.NewValidator()
	return NewCourseUseCase(repo, v), NewLessonUseCase(repo, v), repo
}

func createCourse(t *testing.T, cu CourseUseCase, title string, total, hours, minutes int) *CourseDetail {
	t.Helper()

	c, err := cu.CreateCourse(context.Background(), &CreateCourseRequest{
		Title:        title,
		TotalLessons: intPtr(total),
		Hours:        hours,
		Minutes:      minutes,
	})
	require.NoError(t, err)
	return c
}

func assertValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()

	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected a validation error, got %v", err)
	return ve
}

func TestMigrate_Idempotent(t *testing.T) {
	conn := newTestConn(t)
	assert.NoError(t, Migrate(context.Background(), conn))
}

func TestCourseUseCase_CreateCourse(t *testing.T) {
	cu, _, _ := newTestUseCases(t)
	ctx := context.Background()

	c, err := cu.CreateCourse(ctx, &CreateCourseRequest{
		Title:        "  Go in Practice  ",
		Link:         " https://example.com/go ",
		TotalLessons: intPtr(20),
		Notes:        "chapter 3 is hard",
		Hours:        2,
	})
	require.NoError(t, err)

	assert.NotZero(t, c.ID)
	assert.Equal(t, "Go in Practice", c.Title)
	assert.Equal(t, "https://example.com/go", c.Link)
	assert.Equal(t, 0, c.CompletedLessons)
	assert.Equal(t, 0.0, c.Progress)
	assert.Equal(t, []int{}, c.CompletedLessonList)
	assert.Equal(t, "2h", c.TimeEstimate.TotalDuration.Formatted)
	assert.Equal(t, "6min", c.TimeEstimate.PerLesson.Formatted)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := cu.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	assert.Equal(t, "chapter 3 is hard", got.Notes)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
}

func TestCourseUseCase_CreateCourse_Validation(t *testing.T) {
	cu, _, _ := newTestUseCases(t)

	cases := []struct {
		name  string
		req   *CreateCourseRequest
		field string
	}{
		{"nil request", nil, ""},
		{"empty title", &CreateCourseRequest{TotalLessons: intPtr(1)}, "title"},
		{"blank title", &CreateCourseRequest{Title: "   ", TotalLessons: intPtr(1)}, "title"},
		{"missing total", &CreateCourseRequest{Title: "a"}, "totalLessons"},
		{"negative total", &CreateCourseRequest{Title: "a", TotalLessons: intPtr(-1)}, "totalLessons"},
		{"negative hours", &CreateCourseRequest{Title: "a", TotalLessons: intPtr(1), Hours: -1}, "hours"},
		{"minutes overflow", &CreateCourseRequest{Title: "a", TotalLessons: intPtr(1), Minutes: 60}, "minutes"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := cu.CreateCourse(context.Background(), c.req)
			ve := assertValidationError(t, err)
			assert.NotEmpty(t, ve.Message)
			if c.field != "" {
				require.Len(t, ve.Fields, 1)
				assert.Equal(t, c.field, ve.Fields[0].Domain)
			}
		})
	}

	courses, err := cu.ListCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestCourseUseCase_CreateCourse_LongText(t *testing.T) {
	cu, _, _ := newTestUseCases(t)
	ctx := context.Background()
	title := strings.Repeat("t", 300)
	link := "https://example.com/" + strings.Repeat("p", 3000)

	c, err := cu.CreateCourse(ctx, &CreateCourseRequest{Title: title, Link: link, TotalLessons: intPtr(1)})
	require.NoError(t, err)

	got, err := cu.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, link, got.Link)

	updated, err := cu.UpdateCourse(ctx, c.ID, &CoursePatch{Title: strPtr(title + "!")})
	require.NoError(t, err)
	assert.Equal(t, title+"!", updated.Title)
}

func TestCourseUseCase_ListCourses(t *testing.T) {
	cu, lu, _ := newTestUseCases(t)
	ctx := context.Background()

	first := createCourse(t, cu, "first", 4, 0, 0)
	second := createCourse(t, cu, "second", 10, 1, 0)
	_, err := lu.ToggleLesson(ctx, second.ID, &ToggleLessonRequest{LessonNumber: intPtr(1), Completed: boolPtr(true)})
	require.NoError(t, err)

	courses, err := cu.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)

	assert.Equal(t, second.ID, courses[0].ID)
	assert.Equal(t, 1, courses[0].CompletedLessons)
	assert.Equal(t, 10.0, courses[0].Progress)
	assert.Equal(t, 9, courses[0].TimeEstimate.RemainingLessons)
	assert.Equal(t, "54min", courses[0].TimeEstimate.Remaining.Formatted)

	assert.Equal(t, first.ID, courses[1].ID)
	assert.Equal(t, 0, courses[1].CompletedLessons)
}

func TestCourseUseCase_GetCourse_NotFound(t *testing.T) {
	cu, _, _ := newTestUseCases(t)

	_, err := cu.GetCourse(context.Background(), 404)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseUseCase_UpdateCourse(t *testing.T) {
	cu, _, _ := newTestUseCases(t)
	ctx := context.Background()

	t.Run("notes only", func(t *testing.T) {
		c, err := cu.CreateCourse(ctx, &CreateCourseRequest{
			Title:        "Distributed Systems",
			Link:         "https://example.com/ds",
			TotalLessons: intPtr(12),
		})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		updated, err := cu.UpdateCourse(ctx, c.ID, &CoursePatch{Notes: strPtr("x")})
		require.NoError(t, err)

		assert.Equal(t, "x", updated.Notes)
		assert.Equal(t, "Distributed Systems", updated.Title)
		assert.Equal(t, "https://example.com/ds", updated.Link)
		assert.Equal(t, 12, updated.TotalLessons)
		assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))
		assert.True(t, updated.CreatedAt.Equal(c.CreatedAt))
	})

	t.Run("every field", func(t *testing.T) {
		c := createCourse(t, cu, "old", 5, 0, 0)

		updated, err := cu.UpdateCourse(ctx, c.ID, &CoursePatch{
			Title:        strPtr(" new "),
			Link:         strPtr(""),
			TotalLessons: intPtr(0),
			Notes:        strPtr(""),
			Hours:        intPtr(0),
			Minutes:      intPtr(45),
		})
		require.NoError(t, err)

		assert.Equal(t, "new", updated.Title)
		assert.Equal(t, 0, updated.TotalLessons)
		assert.Equal(t, 45, updated.DurationMinutes)
		assert.Equal(t, 0.0, updated.Progress)
		assert.Equal(t, "45min", updated.TimeEstimate.TotalDuration.Formatted)
	})

	t.Run("no field", func(t *testing.T) {
		c := createCourse(t, cu, "untouched", 5, 0, 0)

		_, err := cu.UpdateCourse(ctx, c.ID, &CoursePatch{})
		ve := assertValidationError(t, err)
		assert.Equal(t, "no valid field to update", ve.Message)
	})

	t.Run("invalid field", func(t *testing.T) {
		c := createCourse(t, cu, "untouched", 5, 0, 0)

		_, err := cu.UpdateCourse(ctx, c.ID, &CoursePatch{TotalLessons: intPtr(-2)})
		assertValidationError(t, err)
		_, err = cu.UpdateCourse(ctx, c.ID, &CoursePatch{Minutes: intPtr(61)})
		assertValidationError(t, err)
		_, err = cu.UpdateCourse(ctx, c.ID, &CoursePatch{Title: strPtr("  ")})
		assertValidationError(t, err)

		got, err := cu.GetCourse(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "untouched", got.Title)
		assert.Equal(t, 5, got.TotalLessons)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := cu.UpdateCourse(ctx, 9999, &CoursePatch{Notes: strPtr("x")})
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestCourseUseCase_DeleteCourse(t *testing.T) {
	cu, lu, repo := newTestUseCases(t)
	ctx := context.Background()

	c := createCourse(t, cu, "to be removed", 5, 0, 0)
	_, err := lu.BatchToggleLessons(ctx, c.ID, &BatchToggleRequest{Operations: []*LessonOperation{
		{LessonNumber: intPtr(1), Completed: boolPtr(true)},
		{LessonNumber: intPtr(2), Completed: boolPtr(true)},
		{LessonNumber: intPtr(3), Completed: boolPtr(true)},
	}})
	require.NoError(t, err)

	deleted, err := cu.DeleteCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "to be removed", deleted.Title)
	assert.Equal(t, 3, deleted.CompletedLessons)

	_, err = cu.GetCourse(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	lessons, err := repo.ListCompletedLessons(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, lessons)

	_, err = cu.DeleteCourse(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseUseCase_GetStats(t *testing.T) {
	cu, lu, _ := newTestUseCases(t)
	ctx := context.Background()

	stats, err := cu.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &StatsModel{}, stats)

	a := createCourse(t, cu, "a", 6, 0, 0)
	createCourse(t, cu, "b", 4, 0, 0)
	createCourse(t, cu, "empty", 0, 0, 0)
	_, err = lu.BatchToggleLessons(ctx, a.ID, &BatchToggleRequest{Operations: []*LessonOperation{
		{LessonNumber: intPtr(1), Completed: boolPtr(true)},
		{LessonNumber: intPtr(6), Completed: boolPtr(true)},
	}})
	require.NoError(t, err)

	stats, err = cu.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCourses)
	assert.Equal(t, 2, stats.TotalCompletedLessons)
	assert.Equal(t, 10, stats.TotalAvailableLessons)
	assert.Equal(t, 20.0, stats.OverallProgress)
}

func TestCourseUseCase_StorageError(t *testing.T) {
	conn := newTestConn(t)
	cu := NewCourseUseCase(NewCourseRepository(conn), validate.NewValidator())
	require.NoError(t, conn.Close(context.Background()))

	_, err := cu.ListCourses(context.Background())
	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "list courses", se.Op)
	assert.Error(t, se.Unwrap())

	_, err = cu.GetCourse(context.Background(), 1)
	assert.True(t, errors.As(err, &se))
}

package course

import (
	"context"
	"errors"
	"testing"

	"github.com/pot-code/course-tracker/internal/infrastructure/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toggle(lessonNumber int, completed bool) *ToggleLessonRequest {
	return &ToggleLessonRequest{LessonNumber: intPtr(lessonNumber), Completed: boolPtr(completed)}
}

func op(lessonNumber int, completed bool) *LessonOperation {
	return &LessonOperation{LessonNumber: intPtr(lessonNumber), Completed: boolPtr(completed)}
}

var errDiskFull = errors.New("disk full")

// flakyRepository fails the failAt-th MarkCompleted call, counted across transactions
type flakyRepository struct {
	CourseRepository
	failAt int
	calls  *int
}

func (fr *flakyRepository) MarkCompleted(ctx context.Context, courseID int64, lessonNumber int) error {
	*fr.calls++
	if *fr.calls == fr.failAt {
		return errDiskFull
	}
	return fr.CourseRepository.MarkCompleted(ctx, courseID, lessonNumber)
}

func (fr *flakyRepository) InTx(ctx context.Context, fn func(repo CourseRepository) error) error {
	return fr.CourseRepository.InTx(ctx, func(repo CourseRepository) error {
		return fn(&flakyRepository{CourseRepository: repo, failAt: fr.failAt, calls: fr.calls})
	})
}

func TestLessonUseCase_ToggleLesson(t *testing.T) {
	cu, lu, _ := newTestUseCases(t)
	ctx := context.Background()
	c := createCourse(t, cu, "Networking", 8, 0, 0)

	t.Run("mark completed twice", func(t *testing.T) {
		res, err := lu.ToggleLesson(ctx, c.ID, toggle(3, true))
		require.NoError(t, err)
		assert.Equal(t, []int{3}, res.CompletedLessonList)
		assert.Equal(t, 1, res.TotalCompleted)
		assert.Equal(t, 12.5, res.Progress)
		assert.Equal(t, "lesson 3 marked as completed", res.Message)

		res, err = lu.ToggleLesson(ctx, c.ID, toggle(3, true))
		require.NoError(t, err)
		assert.Equal(t, []int{3}, res.CompletedLessonList)
		assert.Equal(t, 1, res.TotalCompleted)
	})

	t.Run("unmark twice", func(t *testing.T) {
		res, err := lu.ToggleLesson(ctx, c.ID, toggle(3, false))
		require.NoError(t, err)
		assert.Equal(t, []int{}, res.CompletedLessonList)
		assert.Equal(t, "lesson 3 marked as not completed", res.Message)

		res, err = lu.ToggleLesson(ctx, c.ID, toggle(3, false))
		require.NoError(t, err)
		assert.Equal(t, []int{}, res.CompletedLessonList)
		assert.Equal(t, 0.0, res.Progress)
	})

	t.Run("round trip restores the completed set", func(t *testing.T) {
		_, err := lu.ToggleLesson(ctx, c.ID, toggle(1, true))
		require.NoError(t, err)
		_, err = lu.ToggleLesson(ctx, c.ID, toggle(8, true))
		require.NoError(t, err)
		before, err := cu.GetCourse(ctx, c.ID)
		require.NoError(t, err)

		_, err = lu.ToggleLesson(ctx, c.ID, toggle(5, true))
		require.NoError(t, err)
		res, err := lu.ToggleLesson(ctx, c.ID, toggle(5, false))
		require.NoError(t, err)

		assert.Equal(t, before.CompletedLessonList, res.CompletedLessonList)
		assert.Equal(t, []int{1, 8}, res.CompletedLessonList)
	})

	t.Run("lesson beyond total", func(t *testing.T) {
		_, err := lu.ToggleLesson(ctx, c.ID, toggle(9, true))
		ve := assertValidationError(t, err)
		assert.Contains(t, ve.Message, "(9)")
		assert.Contains(t, ve.Message, "(8)")
	})

	t.Run("invalid payload", func(t *testing.T) {
		_, err := lu.ToggleLesson(ctx, c.ID, toggle(0, true))
		assertValidationError(t, err)
		_, err = lu.ToggleLesson(ctx, c.ID, toggle(-1, true))
		assertValidationError(t, err)
		_, err = lu.ToggleLesson(ctx, c.ID, &ToggleLessonRequest{LessonNumber: intPtr(1)})
		assertValidationError(t, err)
		_, err = lu.ToggleLesson(ctx, c.ID, &ToggleLessonRequest{Completed: boolPtr(true)})
		assertValidationError(t, err)
		_, err = lu.ToggleLesson(ctx, c.ID, nil)
		assertValidationError(t, err)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := lu.ToggleLesson(ctx, 9999, toggle(1, true))
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestLessonUseCase_ToggleLesson_EmptyCourse(t *testing.T) {
	cu, lu, _ := newTestUseCases(t)
	ctx := context.Background()
	c := createCourse(t, cu, "placeholder", 0, 0, 0)
	assert.Equal(t, 0.0, c.Progress)

	for _, n := range []int{0, 1, 2} {
		_, err := lu.ToggleLesson(ctx, c.ID, toggle(n, true))
		assertValidationError(t, err)
	}
	_, err := lu.BatchToggleLessons(ctx, c.ID, &BatchToggleRequest{Operations: []*LessonOperation{op(1, true)}})
	assertValidationError(t, err)

	got, err := cu.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CompletedLessonList)
}

func TestLessonUseCase_BatchToggleLessons(t *testing.T) {
	cu, lu, _ := newTestUseCases(t)
	ctx := context.Background()

	t.Run("applies every operation", func(t *testing.T) {
		c := createCourse(t, cu, "Databases", 10, 0, 0)

		res, err := lu.BatchToggleLessons(ctx, c.ID, &BatchToggleRequest{Operations: []*LessonOperation{
			op(4, true), op(2, true), op(7, true), op(2, false), op(4, true),
		}})
		require.NoError(t, err)

		assert.Equal(t, c.ID, res.CourseID)
		assert.Equal(t, []int{4, 7}, res.CompletedLessonList)
		assert.Equal(t, 2, res.TotalCompleted)
		assert.Equal(t, 20.0, res.Progress)
		require.Len(t, res.Results, 5)
		assert.Equal(t, &LessonOperationResult{
			LessonNumber: 2,
			Completed:    false,
			Message:      "lesson 2 marked as not completed",
		}, res.Results[3])
	})

	t.Run("one invalid entry changes nothing", func(t *testing.T) {
		c := createCourse(t, cu, "Compilers", 5, 0, 0)
		_, err := lu.ToggleLesson(ctx, c.ID, toggle(1, true))
		require.NoError(t, err)

		_, err = lu.BatchToggleLessons(ctx, c.ID, &BatchToggleRequest{Operations: []*LessonOperation{
			op(2, true), op(1, false), op(6, true), op(3, true),
		}})
		ve := assertValidationError(t, err)
		require.Len(t, ve.Fields, 1)
		assert.Equal(t, "operations[2].lessonNumber", ve.Fields[0].Domain)
		assert.Contains(t, ve.Message, "(6)")

		got, err := cu.GetCourse(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, got.CompletedLessonList)
	})

	t.Run("malformed entry changes nothing", func(t *testing.T) {
		c := createCourse(t, cu, "Kernels", 5, 0, 0)

		_, err := lu.BatchToggleLessons(ctx, c.ID, &BatchToggleRequest{Operations: []*LessonOperation{
			op(2, true), {LessonNumber: intPtr(3)}, nil,
		}})
		ve := assertValidationError(t, err)
		assert.Len(t, ve.Fields, 2)

		got, err := cu.GetCourse(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, got.CompletedLessonList)
	})

	t.Run("empty operation list", func(t *testing.T) {
		c := createCourse(t, cu, "Graphics", 5, 0, 0)

		_, err := lu.BatchToggleLessons(ctx, c.ID, &BatchToggleRequest{Operations: []*LessonOperation{}})
		assertValidationError(t, err)
		_, err = lu.BatchToggleLessons(ctx, c.ID, &BatchToggleRequest{})
		assertValidationError(t, err)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := lu.BatchToggleLessons(ctx, 9999, &BatchToggleRequest{Operations: []*LessonOperation{op(1, true)}})
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestLessonUseCase_BatchToggleLessons_WriteFailure(t *testing.T) {
	cu, lu, repo := newTestUseCases(t)
	ctx := context.Background()
	c := createCourse(t, cu, "Operating Systems", 5, 0, 0)
	_, err := lu.ToggleLesson(ctx, c.ID, toggle(1, true))
	require.NoError(t, err)

	calls := 0
	flaky := NewLessonUseCase(&flakyRepository{CourseRepository: repo, failAt: 2, calls: &calls}, validate.NewValidator())

	// lesson 2 is written and lesson 1 removed before lesson 3 fails
	_, err = flaky.BatchToggleLessons(ctx, c.ID, &BatchToggleRequest{Operations: []*LessonOperation{
		op(2, true), op(1, false), op(3, true), op(4, true),
	}})
	var se *StorageError
	require.True(t, errors.As(err, &se), "expected a storage error, got %v", err)
	assert.Equal(t, "batch toggle lessons", se.Op)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 2, calls)

	lessons, err := repo.ListCompletedLessons(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, lessons)

	// the connection is usable again after the rollback
	res, err := lu.BatchToggleLessons(ctx, c.ID, &BatchToggleRequest{Operations: []*LessonOperation{op(2, true)}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.CompletedLessonList)
}

func TestLessonUseCase_ToggleLesson_WriteFailure(t *testing.T) {
	cu, _, repo := newTestUseCases(t)
	ctx := context.Background()
	c := createCourse(t, cu, "Security", 3, 0, 0)

	calls := 0
	flaky := NewLessonUseCase(&flakyRepository{CourseRepository: repo, failAt: 1, calls: &calls}, validate.NewValidator())

	_, err := flaky.ToggleLesson(ctx, c.ID, toggle(2, true))
	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "toggle lesson", se.Op)

	lessons, err := repo.ListCompletedLessons(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, lessons)
}

func TestLessonUseCase_TimeEstimate(t *testing.T) {
	cu, lu, _ := newTestUseCases(t)
	ctx := context.Background()
	c := createCourse(t, cu, "Two hour course", 20, 2, 0)
	assert.Equal(t, "6min", c.TimeEstimate.PerLesson.Formatted)

	_, err := lu.BatchToggleLessons(ctx, c.ID, &BatchToggleRequest{Operations: []*LessonOperation{
		op(1, true), op(2, true), op(3, true), op(4, true), op(5, true),
	}})
	require.NoError(t, err)

	got, err := cu.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.TimeEstimate.RemainingLessons)
	assert.Equal(t, 90.0, got.TimeEstimate.Remaining.TotalMinutes)
	assert.Equal(t, "1h 30min", got.TimeEstimate.Remaining.Formatted)
	assert.Equal(t, 25.0, got.Progress)
}

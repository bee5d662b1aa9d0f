package course

import (
	"context"
	"fmt"

	"github.com/pot-code/course-tracker/internal/infrastructure/validate"
	"github.com/pot-code/course-tracker/internal/progress"
	"go.elastic.co/apm"
)

// LessonUseCaseImpl ...
type LessonUseCaseImpl struct {
	CourseRepository CourseRepository
	Validator        validate.Validator
}

var _ LessonUseCase = &LessonUseCaseImpl{}

// NewLessonUseCase ...
func NewLessonUseCase(
	CourseRepository CourseRepository,
	Validator validate.Validator,
) *LessonUseCaseImpl {
	return &LessonUseCaseImpl{
		CourseRepository: CourseRepository,
		Validator:        Validator,
	}
}

// ToggleLesson marks a lesson as completed or not, toggling to the current state is a no-op
func (lu *LessonUseCaseImpl) ToggleLesson(ctx context.Context, courseID int64, req *ToggleLessonRequest) (*ToggleResult, error) {
	apmSpan, _ := apm.StartSpan(ctx, "LessonUseCaseImpl.ToggleLesson", "service")
	defer apmSpan.End()

	if req == nil {
		return nil, errNoData
	}
	if errs := lu.Validator.Struct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	lessonNumber, completed := *req.LessonNumber, *req.Completed
	result := &ToggleResult{
		CourseID:     courseID,
		LessonNumber: lessonNumber,
		Completed:    completed,
		Message:      toggleMessage(lessonNumber, completed),
	}
	err := lu.CourseRepository.InTx(ctx, func(repo CourseRepository) error {
		course, err := repo.FindCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return ErrCourseNotFound
		}
		if fe := checkLessonRange("lessonNumber", lessonNumber, course.TotalLessons); fe != nil {
			return NewValidationError([]*validate.FieldError{fe})
		}

		if err := applyToggle(ctx, repo, courseID, lessonNumber, completed); err != nil {
			return err
		}
		lessons, err := repo.ListCompletedLessons(ctx, courseID)
		if err != nil {
			return err
		}
		result.TotalCompleted = len(lessons)
		result.CompletedLessonList = lessons
		result.Progress = progress.ComputeProgress(course.TotalLessons, len(lessons))
		return nil
	})
	if err != nil {
		return nil, storageError("toggle lesson", err)
	}
	return result, nil
}

// BatchToggleLessons applies every operation in order within one transaction.
// Nothing is applied unless all operations are valid.
func (lu *LessonUseCaseImpl) BatchToggleLessons(ctx context.Context, courseID int64, req *BatchToggleRequest) (*BatchToggleResult, error) {
	apmSpan, _ := apm.StartSpan(ctx, "LessonUseCaseImpl.BatchToggleLessons", "service")
	defer apmSpan.End()

	if req == nil {
		return nil, errNoData
	}
	if errs := lu.Validator.Struct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	result := &BatchToggleResult{
		CourseID: courseID,
		Results:  make([]*LessonOperationResult, 0, len(req.Operations)),
	}
	err := lu.CourseRepository.InTx(ctx, func(repo CourseRepository) error {
		course, err := repo.FindCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return ErrCourseNotFound
		}

		var errs []*validate.FieldError
		for i, op := range req.Operations {
			domain := fmt.Sprintf("operations[%d].lessonNumber", i)
			if fe := checkLessonRange(domain, *op.LessonNumber, course.TotalLessons); fe != nil {
				fe.Reason = fmt.Sprintf("operation %d: %s", i, fe.Reason)
				errs = append(errs, fe)
			}
		}
		if len(errs) > 0 {
			return NewValidationError(errs)
		}

		for _, op := range req.Operations {
			lessonNumber, completed := *op.LessonNumber, *op.Completed
			if err := applyToggle(ctx, repo, courseID, lessonNumber, completed); err != nil {
				return err
			}
			result.Results = append(result.Results, &LessonOperationResult{
				LessonNumber: lessonNumber,
				Completed:    completed,
				Message:      toggleMessage(lessonNumber, completed),
			})
		}

		lessons, err := repo.ListCompletedLessons(ctx, courseID)
		if err != nil {
			return err
		}
		result.TotalCompleted = len(lessons)
		result.CompletedLessonList = lessons
		result.Progress = progress.ComputeProgress(course.TotalLessons, len(lessons))
		return nil
	})
	if err != nil {
		return nil, storageError("batch toggle lessons", err)
	}
	return result, nil
}

func applyToggle(ctx context.Context, repo CourseRepository, courseID int64, lessonNumber int, completed bool) error {
	if completed {
		return repo.MarkCompleted(ctx, courseID, lessonNumber)
	}
	return repo.UnmarkCompleted(ctx, courseID, lessonNumber)
}

// checkLessonRange lessonNumber must not exceed the lessons of its course
func checkLessonRange(domain string, lessonNumber, totalLessons int) *validate.FieldError {
	if lessonNumber > totalLessons {
		return validate.NewFieldError(domain, fmt.Sprintf(
			"lesson number (%d) cannot be greater than the total number of lessons (%d)", lessonNumber, totalLessons))
	}
	return nil
}

func toggleMessage(lessonNumber int, completed bool) string {
	if completed {
		return fmt.Sprintf("lesson %d marked as completed", lessonNumber)
	}
	return fmt.Sprintf("lesson %d marked as not completed", lessonNumber)
}

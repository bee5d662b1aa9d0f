package course

import (
	"context"
	"strings"

	"github.com/pot-code/course-tracker/internal/infrastructure/validate"
	"github.com/pot-code/course-tracker/internal/progress"
	"go.elastic.co/apm"
)

// CourseUseCaseImpl ...
type CourseUseCaseImpl struct {
	CourseRepository CourseRepository
	Validator        validate.Validator
}

var _ CourseUseCase = &CourseUseCaseImpl{}

// NewCourseUseCase ...
func NewCourseUseCase(
	CourseRepository CourseRepository,
	Validator validate.Validator,
) *CourseUseCaseImpl {
	return &CourseUseCaseImpl{
		CourseRepository: CourseRepository,
		Validator:        Validator,
	}
}

// ListCourses all courses with their progress, newest first
func (cu *CourseUseCaseImpl) ListCourses(ctx context.Context) ([]*CourseModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.ListCourses", "service")
	defer apmSpan.End()

	courses, err := cu.CourseRepository.ListCourses(ctx)
	if err != nil {
		return nil, storageError("list courses", err)
	}
	for _, c := range courses {
		c.enrich(c.CompletedLessons)
	}
	return courses, nil
}

// GetCourse a single course along with its completed lessons
func (cu *CourseUseCaseImpl) GetCourse(ctx context.Context, id int64) (*CourseDetail, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.GetCourse", "service")
	defer apmSpan.End()

	detail, err := loadDetail(ctx, cu.CourseRepository, id)
	if err != nil {
		return nil, storageError("get course", err)
	}
	return detail, nil
}

// CreateCourse validates and saves a new course
func (cu *CourseUseCaseImpl) CreateCourse(ctx context.Context, req *CreateCourseRequest) (*CourseDetail, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.CreateCourse", "service")
	defer apmSpan.End()

	if req == nil {
		return nil, errNoData
	}
	if errs := cu.Validator.Struct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	course := &CourseModel{
		Title:           strings.TrimSpace(req.Title),
		Link:            strings.TrimSpace(req.Link),
		TotalLessons:    *req.TotalLessons,
		Notes:           req.Notes,
		DurationHours:   req.Hours,
		DurationMinutes: req.Minutes,
	}
	if err := cu.CourseRepository.InsertCourse(ctx, course); err != nil {
		return nil, storageError("create course", err)
	}
	course.enrich(0)
	return &CourseDetail{CourseModel: course, CompletedLessonList: []int{}}, nil
}

var patchFieldNames = []string{"title", "link", "totalLessons", "notes", "hours", "minutes"}

// UpdateCourse applies the fields present in patch
func (cu *CourseUseCaseImpl) UpdateCourse(ctx context.Context, id int64, patch *CoursePatch) (*CourseDetail, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.UpdateCourse", "service")
	defer apmSpan.End()

	if patch == nil {
		return nil, errNoData
	}
	if fe := cu.Validator.AllEmpty(patchFieldNames,
		patch.Title, patch.Link, patch.TotalLessons, patch.Notes, patch.Hours, patch.Minutes); fe != nil {
		return nil, &ValidationError{
			Message: "no valid field to update",
			Fields:  []*validate.FieldError{fe},
		}
	}
	if errs := cu.Validator.Struct(patch); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	normalized := *patch
	if normalized.Title != nil {
		title := strings.TrimSpace(*normalized.Title)
		normalized.Title = &title
	}
	if normalized.Link != nil {
		link := strings.TrimSpace(*normalized.Link)
		normalized.Link = &link
	}

	var detail *CourseDetail
	err := cu.CourseRepository.InTx(ctx, func(repo CourseRepository) error {
		existing, err := repo.FindCourse(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrCourseNotFound
		}
		if err := repo.UpdateCourse(ctx, id, &normalized); err != nil {
			return err
		}
		detail, err = loadDetail(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, storageError("update course", err)
	}
	return detail, nil
}

// DeleteCourse removes a course and its completed lessons, returning the deleted course
func (cu *CourseUseCaseImpl) DeleteCourse(ctx context.Context, id int64) (*CourseModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.DeleteCourse", "service")
	defer apmSpan.End()

	var deleted *CourseModel
	err := cu.CourseRepository.InTx(ctx, func(repo CourseRepository) error {
		course, err := repo.FindCourse(ctx, id)
		if err != nil {
			return err
		}
		if course == nil {
			return ErrCourseNotFound
		}
		if err := repo.DeleteCourse(ctx, id); err != nil {
			return err
		}
		deleted = course
		return nil
	})
	if err != nil {
		return nil, storageError("delete course", err)
	}
	deleted.enrich(deleted.CompletedLessons)
	return deleted, nil
}

// GetStats aggregate counts across all courses
func (cu *CourseUseCaseImpl) GetStats(ctx context.Context) (*StatsModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.GetStats", "service")
	defer apmSpan.End()

	stats, err := cu.CourseRepository.GetStats(ctx)
	if err != nil {
		return nil, storageError("get stats", err)
	}
	stats.OverallProgress = progress.ComputeProgress(stats.TotalAvailableLessons, stats.TotalCompletedLessons)
	return stats, nil
}

func loadDetail(ctx context.Context, repo CourseRepository, id int64) (*CourseDetail, error) {
	course, err := repo.FindCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	lessons, err := repo.ListCompletedLessons(ctx, id)
	if err != nil {
		return nil, err
	}
	course.enrich(len(lessons))
	return &CourseDetail{CourseModel: course, CompletedLessonList: lessons}, nil
}

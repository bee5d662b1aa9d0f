package course

import (
	"context"
	"time"

	"github.com/pot-code/course-tracker/internal/progress"
)

// CourseModel a tracked course, enriched with derived progress fields on read
type CourseModel struct {
	ID               int64                 `json:"id"`
	Title            string                `json:"title"`
	Link             string                `json:"link"`
	TotalLessons     int                   `json:"totalLessons"`
	Notes            string                `json:"notes"`
	DurationHours    int                   `json:"hours"`
	DurationMinutes  int                   `json:"minutes"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
	CompletedLessons int                   `json:"completedLessons"`
	Progress         float64               `json:"progress"`
	TimeEstimate     progress.TimeEstimate `json:"timeEstimate"`
}

// CourseDetail course with its completed lesson numbers in ascending order
type CourseDetail struct {
	*CourseModel
	CompletedLessonList []int `json:"completedLessonList"`
}

// enrich attaches the fields derived from the completed count
func (c *CourseModel) enrich(completed int) {
	c.CompletedLessons = completed
	c.Progress = progress.ComputeProgress(c.TotalLessons, completed)
	c.TimeEstimate = progress.ComputeTimeEstimate(c.TotalLessons, completed, c.DurationHours, c.DurationMinutes)
}

// CreateCourseRequest payload of a new course
type CreateCourseRequest struct {
	Title        string `json:"title" validate:"required,notblank"`
	Link         string `json:"link"`
	TotalLessons *int   `json:"totalLessons" validate:"required,min=0"`
	Notes        string `json:"notes"`
	Hours        int    `json:"hours" validate:"min=0"`
	Minutes      int    `json:"minutes" validate:"min=0,max=59"`
}

// CoursePatch partial update of a course, nil fields are left untouched
type CoursePatch struct {
	Title        *string `json:"title" validate:"omitempty,notblank"`
	Link         *string `json:"link"`
	TotalLessons *int    `json:"totalLessons" validate:"omitempty,min=0"`
	Notes        *string `json:"notes"`
	Hours        *int    `json:"hours" validate:"omitempty,min=0"`
	Minutes      *int    `json:"minutes" validate:"omitempty,min=0,max=59"`
}

// ToggleLessonRequest marks one lesson as completed or not
type ToggleLessonRequest struct {
	LessonNumber *int  `json:"lessonNumber" validate:"required,min=1"`
	Completed    *bool `json:"completed" validate:"required"`
}

// LessonOperation one entry of a batch toggle
type LessonOperation struct {
	LessonNumber *int  `json:"lessonNumber" validate:"required,min=1"`
	Completed    *bool `json:"completed" validate:"required"`
}

// BatchToggleRequest applies several lesson toggles at once
type BatchToggleRequest struct {
	Operations []*LessonOperation `json:"operations" validate:"required,min=1,dive,required"`
}

// ToggleResult state of a course after a single toggle
type ToggleResult struct {
	CourseID            int64   `json:"courseId"`
	LessonNumber        int     `json:"lessonNumber"`
	Completed           bool    `json:"completed"`
	TotalCompleted      int     `json:"totalCompleted"`
	CompletedLessonList []int   `json:"completedLessonList"`
	Progress            float64 `json:"progress"`
	Message             string  `json:"message"`
}

// LessonOperationResult echo of an applied batch entry
type LessonOperationResult struct {
	LessonNumber int    `json:"lessonNumber"`
	Completed    bool   `json:"completed"`
	Message      string `json:"message"`
}

// BatchToggleResult state of a course after a batch toggle
type BatchToggleResult struct {
	CourseID            int64                    `json:"courseId"`
	Results             []*LessonOperationResult `json:"results"`
	TotalCompleted      int                      `json:"totalCompleted"`
	CompletedLessonList []int                    `json:"completedLessonList"`
	Progress            float64                  `json:"progress"`
}

// StatsModel aggregate figures across all courses
type StatsModel struct {
	TotalCourses          int     `json:"totalCourses"`
	TotalCompletedLessons int     `json:"totalCompletedLessons"`
	TotalAvailableLessons int     `json:"totalAvailableLessons"`
	OverallProgress       float64 `json:"overallProgress"`
}

type CourseRepository interface {
	// ListCourses returns every course with its completed count, newest first
	ListCourses(ctx context.Context) ([]*CourseModel, error)
	// FindCourse returns nil if no course matches id
	FindCourse(ctx context.Context, id int64) (*CourseModel, error)
	InsertCourse(ctx context.Context, course *CourseModel) error
	UpdateCourse(ctx context.Context, id int64, patch *CoursePatch) error
	// DeleteCourse removes the course along with its completed lessons
	DeleteCourse(ctx context.Context, id int64) error
	ListCompletedLessons(ctx context.Context, courseID int64) ([]int, error)
	// MarkCompleted is a no-op when the lesson is already completed
	MarkCompleted(ctx context.Context, courseID int64, lessonNumber int) error
	// UnmarkCompleted is a no-op when the lesson is not completed
	UnmarkCompleted(ctx context.Context, courseID int64, lessonNumber int) error
	GetStats(ctx context.Context) (*StatsModel, error)
	// InTx runs fn against a repository bound to a single transaction,
	// committing when fn returns nil and rolling back otherwise
	InTx(ctx context.Context, fn func(repo CourseRepository) error) error
}

type CourseUseCase interface {
	ListCourses(ctx context.Context) ([]*CourseModel, error)
	GetCourse(ctx context.Context, id int64) (*CourseDetail, error)
	CreateCourse(ctx context.Context, req *CreateCourseRequest) (*CourseDetail, error)
	UpdateCourse(ctx context.Context, id int64, patch *CoursePatch) (*CourseDetail, error)
	DeleteCourse(ctx context.Context, id int64) (*CourseModel, error)
	GetStats(ctx context.Context) (*StatsModel, error)
}

type LessonUseCase interface {
	ToggleLesson(ctx context.Context, courseID int64, req *ToggleLessonRequest) (*ToggleResult, error)
	BatchToggleLessons(ctx context.Context, courseID int64, req *BatchToggleRequest) (*BatchToggleResult, error)
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-tracker/internal/course"
	"github.com/pot-code/course-tracker/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// CourseHandler course CRUD and stats
type CourseHandler struct {
	CourseUseCase course.CourseUseCase
}

func NewCourseHandler(CourseUseCase course.CourseUseCase) *CourseHandler {
	return &CourseHandler{CourseUseCase}
}

type courseList struct {
	Courses []*course.CourseModel `json:"courses"`
	Count   int                   `json:"count"`
}

func (ch *CourseHandler) HandleListCourses(c echo.Context) error {
	courses, err := ch.CourseUseCase.ListCourses(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, NewRESTResponse(&courseList{courses, len(courses)}, ""))
}

func (ch *CourseHandler) HandleGetCourse(c echo.Context) error {
	id, ok, err := parseCourseID(c)
	if !ok {
		return err
	}

	detail, err := ch.CourseUseCase.GetCourse(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, NewRESTResponse(detail, ""))
}

func (ch *CourseHandler) HandleCreateCourse(c echo.Context) error {
	req := new(course.CreateCourseRequest)
	if ok, err := bindBody(c, req); !ok {
		return err
	}

	ctx := c.Request().Context()
	created, err := ch.CourseUseCase.CreateCourse(ctx, req)
	if err != nil {
		return handleServiceError(c, err)
	}
	logging.ExtractLoggerFromContext(ctx).Info("course created",
		zap.Int64("course.id", created.ID), zap.String("course.title", created.Title))
	return c.JSON(http.StatusCreated, NewRESTResponse(created, "course created successfully"))
}

func (ch *CourseHandler) HandleUpdateCourse(c echo.Context) error {
	id, ok, err := parseCourseID(c)
	if !ok {
		return err
	}
	patch := new(course.CoursePatch)
	if ok, err := bindBody(c, patch); !ok {
		return err
	}

	updated, err := ch.CourseUseCase.UpdateCourse(c.Request().Context(), id, patch)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, NewRESTResponse(updated, "course updated successfully"))
}

func (ch *CourseHandler) HandleDeleteCourse(c echo.Context) error {
	id, ok, err := parseCourseID(c)
	if !ok {
		return err
	}

	ctx := c.Request().Context()
	deleted, err := ch.CourseUseCase.DeleteCourse(ctx, id)
	if err != nil {
		return handleServiceError(c, err)
	}
	logging.ExtractLoggerFromContext(ctx).Info("course deleted", zap.Int64("course.id", deleted.ID))
	return c.JSON(http.StatusOK, NewRESTResponse(deleted, fmt.Sprintf("course %q deleted successfully", deleted.Title)))
}

func (ch *CourseHandler) HandleGetStats(c echo.Context) error {
	stats, err := ch.CourseUseCase.GetStats(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, NewRESTResponse(stats, ""))
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-tracker/internal/course"
)

// LessonHandler marks lessons of a course as completed
type LessonHandler struct {
	LessonUseCase course.LessonUseCase
}

func NewLessonHandler(LessonUseCase course.LessonUseCase) *LessonHandler {
	return &LessonHandler{LessonUseCase}
}

func (lh *LessonHandler) HandleToggleLesson(c echo.Context) error {
	id, ok, err := parseCourseID(c)
	if !ok {
		return err
	}
	req := new(course.ToggleLessonRequest)
	if ok, err := bindBody(c, req); !ok {
		return err
	}

	result, err := lh.LessonUseCase.ToggleLesson(c.Request().Context(), id, req)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, NewRESTResponse(result, result.Message))
}

func (lh *LessonHandler) HandleBatchToggleLessons(c echo.Context) error {
	id, ok, err := parseCourseID(c)
	if !ok {
		return err
	}
	req := new(course.BatchToggleRequest)
	if ok, err := bindBody(c, req); !ok {
		return err
	}

	result, err := lh.LessonUseCase.BatchToggleLessons(c.Request().Context(), id, req)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, NewRESTResponse(result, fmt.Sprintf("%d operations applied", len(result.Results))))
}

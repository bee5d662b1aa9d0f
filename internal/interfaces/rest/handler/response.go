package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-tracker/internal/course"
	"github.com/pot-code/course-tracker/internal/infrastructure/validate"
)

// RESTResponse success envelope
type RESTResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewRESTResponse(data interface{}, message string) *RESTResponse {
	return &RESTResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// RESTStandardError response error
type RESTStandardError struct {
	Success   bool      `json:"success"`
	Code      int       `json:"code"`
	Title     string    `json:"error"`
	Detail    string    `json:"details,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRESTStandardError(code int, title string) *RESTStandardError {
	return &RESTStandardError{
		Code:      code,
		Title:     title,
		Timestamp: time.Now().UTC(),
	}
}

func (re RESTStandardError) SetDetail(detail string) RESTStandardError {
	re.Detail = detail
	return re
}

func (re RESTStandardError) SetTraceID(traceID string) RESTStandardError {
	re.TraceID = traceID
	return re
}

// RESTValidationError standard validation error
type RESTValidationError struct {
	RESTStandardError
	InvalidParams []*validate.FieldError `json:"invalid_params,omitempty"`
}

func NewRESTValidationError(code int, title string, internal []*validate.FieldError) *RESTValidationError {
	return &RESTValidationError{
		RESTStandardError: *NewRESTStandardError(code, title),
		InvalidParams:     internal,
	}
}

func (rve RESTValidationError) SetTraceID(traceID string) RESTValidationError {
	rve.RESTStandardError.TraceID = traceID
	return rve
}

// TraceID request id assigned by the RequestID middleware
func TraceID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// handleServiceError renders the client side error kinds, anything else is
// returned for the error middleware to log and render
func handleServiceError(c echo.Context, err error) error {
	var ve *course.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, ve.Message, ve.Fields).SetTraceID(TraceID(c)))
	case errors.Is(err, course.ErrCourseNotFound):
		return c.JSON(http.StatusNotFound,
			NewRESTStandardError(http.StatusNotFound, err.Error()).SetTraceID(TraceID(c)))
	}
	return err
}

// bindBody decodes the request body into i, a malformed body is answered with 400
func bindBody(c echo.Context, i interface{}) (bool, error) {
	if err := c.Bind(i); err != nil {
		detail := err.Error()
		code := http.StatusBadRequest
		if he, ok := err.(*echo.HTTPError); ok {
			detail = fmt.Sprint(he.Message)
			if he.Code == http.StatusUnsupportedMediaType {
				code = he.Code
			}
		}
		return false, c.JSON(code,
			NewRESTStandardError(code, "invalid request body").SetDetail(detail).SetTraceID(TraceID(c)))
	}
	return true, nil
}

// parseCourseID reads the :id path param, answering with 400 if it is not a positive integer
func parseCourseID(c echo.Context) (int64, bool, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false, c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "invalid course id", []*validate.FieldError{
				validate.NewFieldError("id", "id must be a positive integer"),
			}).SetTraceID(TraceID(c)))
	}
	return id, true, nil
}

package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// AbortRequestOption options for request deadlines
type AbortRequestOption struct {
	Timeout time.Duration
}

// AbortRequest bounds every request with a deadline, which flows into the
// database calls through the request context. A zero timeout disables it.
func AbortRequest(option *AbortRequestOption) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if option == nil || option.Timeout <= 0 {
			return next
		}
		return func(c echo.Context) error {
			r := c.Request()
			ctx, cancel := context.WithTimeout(r.Context(), option.Timeout)
			defer cancel()

			c.SetRequest(r.WithContext(ctx))
			return next(c)
		}
	}
}

package rest

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
	"github.com/pot-code/course-tracker/internal/course"
	infra "github.com/pot-code/course-tracker/internal/infrastructure"
	"github.com/pot-code/course-tracker/internal/infrastructure/driver"
	"github.com/pot-code/course-tracker/internal/infrastructure/uuid"
	"github.com/pot-code/course-tracker/internal/interfaces/rest/handler"
	"github.com/pot-code/course-tracker/internal/interfaces/rest/middleware"
	"go.elastic.co/apm/module/apmechov4"
	"go.uber.org/zap"
)

// NewApp create the http transport with every route registered
func NewApp(
	conn driver.ITransactionalDB,
	option *infra.AppConfig,
	CourseUseCase course.CourseUseCase,
	LessonUseCase course.LessonUseCase,
	logger *zap.Logger,
) *echo.Echo {
	var (
		app         = echo.New()
		idGenerator = uuid.NewNanoIDGenerator(option.Security.IDLength)
	)
	app.HideBanner = true

	app.Use(echo_middleware.RequestIDWithConfig(echo_middleware.RequestIDConfig{
		Generator: func() string {
			id, err := idGenerator.Generate()
			if err != nil {
				logger.Warn("failed to generate request id", zap.Error(err))
			}
			return id
		},
	}))
	app.Use(middleware.SetTraceLogger(logger))
	app.Use(middleware.Logging(logger, &middleware.LoggingConfig{
		Skipper: func(e echo.Context) bool {
			return strings.HasSuffix(e.Request().URL.Path, "/health")
		},
	}))
	app.Use(middleware.ErrorHandling(
		&middleware.ErrorHandlingOption{
			Handler: func(c echo.Context, err error) {
				traceID := handler.TraceID(c)
				c.JSON(http.StatusInternalServerError,
					handler.NewRESTStandardError(http.StatusInternalServerError, "internal server error").SetTraceID(traceID),
				)
				logger.Error(err.Error(), zap.String("trace.id", traceID))
			},
			HTTPErrorHandler: func(c echo.Context, err *echo.HTTPError) {
				title := fmt.Sprint(err.Message)
				switch err.Code {
				case http.StatusNotFound:
					title = "endpoint not found"
				case http.StatusMethodNotAllowed:
					title = "method not allowed"
				}
				c.JSON(err.Code, handler.NewRESTStandardError(err.Code, title).SetTraceID(handler.TraceID(c)))
			},
		},
	))
	app.Use(echo_middleware.Secure())
	if option.DevOP.APM {
		app.Use(apmechov4.Middleware())
	}
	app.Use(echo_middleware.CORSWithConfig(echo_middleware.CORSConfig{
		AllowOrigins: option.CORS.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))
	if option.Env == infra.EnvDevelopment {
		registerProfileEndpoints(app)
	}

	var (
		CourseHandler = handler.NewCourseHandler(CourseUseCase)
		LessonHandler = handler.NewLessonHandler(LessonUseCase)
		HealthHandler = handler.NewHealthHandler(conn, option.RequestTimeout)
	)

	createEndpoint(app,
		&endpoint{
			prefix: option.APIPrefix,
			middlewares: []echo.MiddlewareFunc{middleware.AbortRequest(&middleware.AbortRequestOption{
				Timeout: option.RequestTimeout,
			})},
			groups: []*apiGroup{
				{
					prefix: "/courses",
					routes: []*route{
						{"GET", "", CourseHandler.HandleListCourses, nil},
						{"POST", "", CourseHandler.HandleCreateCourse, nil},
						{"GET", "/:id", CourseHandler.HandleGetCourse, nil},
						{"PUT", "/:id", CourseHandler.HandleUpdateCourse, nil},
						{"DELETE", "/:id", CourseHandler.HandleDeleteCourse, nil},
						{"POST", "/:id/lesson", LessonHandler.HandleToggleLesson, nil},
						{"POST", "/:id/lessons/batch", LessonHandler.HandleBatchToggleLessons, nil},
					},
				},
				{
					prefix: "",
					routes: []*route{
						{"GET", "/stats", CourseHandler.HandleGetStats, nil},
						{"GET", "/health", HealthHandler.HandleHealth, nil},
					},
				},
			},
		})

	printRoutes(app, logger)
	return app
}

// Serve start listening until ctx is done, then drain in-flight requests
func Serve(ctx context.Context, app *echo.Echo, option *infra.AppConfig, logger *zap.Logger) error {
	errc := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", option.Host, option.Port)
		logger.Info("Server started", zap.String("server.address", addr))
		errc <- app.Start(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), option.RequestTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func printRoutes(app *echo.Echo, logger *zap.Logger) {
	for _, route := range app.Routes() {
		if !strings.HasPrefix(route.Name, "github.com/labstack/echo") {
			logger.Debug("Registered route", zap.String("method", route.Method), zap.String("path", route.Path))
		}
	}
}

func registerProfileEndpoints(app *echo.Echo) {
	expvarHandler := expvar.Handler()
	app.GET("/debug/vars", func(c echo.Context) error {
		expvarHandler.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/", func(c echo.Context) error {
		pprof.Index(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/:name", func(c echo.Context) error {
		switch c.Param("name") {
		case "cmdline":
			pprof.Cmdline(c.Response().Writer, c.Request())
		case "profile":
			pprof.Profile(c.Response().Writer, c.Request())
		case "symbol":
			pprof.Symbol(c.Response().Writer, c.Request())
		case "trace":
			pprof.Trace(c.Response().Writer, c.Request())
		default:
			pprof.Handler(c.Param("name")).ServeHTTP(c.Response().Writer, c.Request())
		}
		return nil
	})
}

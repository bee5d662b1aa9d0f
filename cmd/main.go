package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pot-code/course-tracker/internal/course"
	infra "github.com/pot-code/course-tracker/internal/infrastructure"
	"github.com/pot-code/course-tracker/internal/infrastructure/driver"
	"github.com/pot-code/course-tracker/internal/infrastructure/logging"
	"github.com/pot-code/course-tracker/internal/infrastructure/validate"
	"github.com/pot-code/course-tracker/internal/interfaces/rest"
	"go.uber.org/zap"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := driver.GetDBConnection(&driver.DBConfig{
		User:        option.Database.User,
		Password:    option.Database.Password,
		MaxConn:     option.Database.MaxConn,
		Protocol:    option.Database.Protocol,
		Driver:      option.Database.Driver,
		Host:        option.Database.Host,
		Port:        option.Database.Port,
		Query:       option.Database.Query,
		Schema:      option.Database.Schema,
		BusyTimeout: option.Database.BusyTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to create DB connection", zap.Error(err))
	}
	defer dbConn.Close(context.Background())
	logger.Debug("Create DB connection instance", zap.String("db.driver", option.Database.Driver),
		zap.String("db.schema", option.Database.Schema),
		zap.String("db.host", option.Database.Host),
		zap.Any("config", option.Database),
	)

	if option.Database.Migrate {
		if err := course.Migrate(logging.SetLoggerInContext(ctx, logger), dbConn); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	validator := validate.NewValidator()
	CourseRepo := course.NewCourseRepository(dbConn)
	CourseUseCase := course.NewCourseUseCase(CourseRepo, validator)
	LessonUseCase := course.NewLessonUseCase(CourseRepo, validator)

	app := rest.NewApp(dbConn, option, CourseUseCase, LessonUseCase, logger)
	if err := rest.Serve(ctx, app, option, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

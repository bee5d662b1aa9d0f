package course

import (
	"context"
	"fmt"

	"github.com/pot-code/course-tracker/internal/infrastructure/driver"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS courses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	link TEXT NOT NULL DEFAULT '',
	total_lessons INTEGER NOT NULL DEFAULT 0 CHECK (total_lessons >= 0),
	notes TEXT NOT NULL DEFAULT '',
	duration_hours INTEGER NOT NULL DEFAULT 0,
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS completed_lessons (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	course_id INTEGER NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
	lesson_number INTEGER NOT NULL CHECK (lesson_number > 0),
	completed_at TIMESTAMP NOT NULL,
	UNIQUE (course_id, lesson_number)
)`,
	`CREATE INDEX IF NOT EXISTS idx_completed_lessons_course_id ON completed_lessons (course_id)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_created_at ON courses (created_at)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS courses (
	id BIGINT NOT NULL AUTO_INCREMENT,
	title TEXT NOT NULL,
	link TEXT NOT NULL,
	total_lessons INT NOT NULL DEFAULT 0,
	notes TEXT NOT NULL,
	duration_hours INT NOT NULL DEFAULT 0,
	duration_minutes INT NOT NULL DEFAULT 0,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL,
	PRIMARY KEY (id),
	INDEX idx_courses_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS completed_lessons (
	id BIGINT NOT NULL AUTO_INCREMENT,
	course_id BIGINT NOT NULL,
	lesson_number INT NOT NULL,
	completed_at DATETIME(6) NOT NULL,
	PRIMARY KEY (id),
	UNIQUE KEY uk_completed_lessons_course_lesson (course_id, lesson_number),
	INDEX idx_completed_lessons_course_id (course_id),
	CONSTRAINT fk_completed_lessons_course FOREIGN KEY (course_id) REFERENCES courses (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS courses (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	link TEXT NOT NULL DEFAULT '',
	total_lessons INTEGER NOT NULL DEFAULT 0 CHECK (total_lessons >= 0),
	notes TEXT NOT NULL DEFAULT '',
	duration_hours INTEGER NOT NULL DEFAULT 0,
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS completed_lessons (
	id BIGSERIAL PRIMARY KEY,
	course_id BIGINT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
	lesson_number INTEGER NOT NULL CHECK (lesson_number > 0),
	completed_at TIMESTAMPTZ NOT NULL,
	UNIQUE (course_id, lesson_number)
)`,
	`CREATE INDEX IF NOT EXISTS idx_completed_lessons_course_id ON completed_lessons (course_id)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_created_at ON courses (created_at)`,
}

// Migrate creates the tables used by this package if they do not exist yet
func Migrate(ctx context.Context, conn driver.ITransactionalDB) error {
	var statements []string
	switch conn.Driver() {
	case driver.DriverSQLite:
		statements = sqliteSchema
	case driver.DriverMySQL:
		statements = mysqlSchema
	case driver.DriverPostgres:
		statements = postgresSchema
	default:
		return fmt.Errorf("migrate: unsupported driver: %s", conn.Driver())
	}

	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

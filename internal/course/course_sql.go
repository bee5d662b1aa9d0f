package course

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pot-code/course-tracker/internal/infrastructure/driver"
)

// CourseSQL CourseRepository backed by any supported SQL driver
type CourseSQL struct {
	Conn driver.ITransactionalDB
}

var _ CourseRepository = &CourseSQL{}

func NewCourseRepository(Conn driver.ITransactionalDB) *CourseSQL {
	return &CourseSQL{
		Conn: Conn,
	}
}

// timestamps are stored in UTC with the precision every backend can keep
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

const courseColumns = `c.id, c.title, c.link, c.total_lessons, c.notes, c.duration_hours, c.duration_minutes,
	c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM completed_lessons cl WHERE cl.course_id = c.id)`

func scanCourse(rows driver.ISQLRows) (*CourseModel, error) {
	item := new(CourseModel)
	var completed int
	err := rows.Scan(&item.ID, &item.Title, &item.Link, &item.TotalLessons, &item.Notes,
		&item.DurationHours, &item.DurationMinutes, &item.CreatedAt, &item.UpdatedAt, &completed)
	if err != nil {
		return nil, err
	}
	item.CompletedLessons = completed
	return item, nil
}

func (repo *CourseSQL) ListCourses(ctx context.Context) ([]*CourseModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+courseColumns+`
FROM
    courses c
ORDER BY c.created_at DESC, c.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*CourseModel, 0)
	for rows.Next() {
		item, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (repo *CourseSQL) FindCourse(ctx context.Context, id int64) (*CourseModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT `+courseColumns+`
FROM
    courses c
WHERE
    c.id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		return scanCourse(rows)
	}
	return nil, rows.Err()
}

// InsertCourse saves course and fills in its id and timestamps
func (repo *CourseSQL) InsertCourse(ctx context.Context, course *CourseModel) error {
	conn := repo.Conn
	ts := now()
	course.CreatedAt, course.UpdatedAt = ts, ts

	query := `INSERT INTO courses(title, link, total_lessons, notes, duration_hours, duration_minutes, created_at, updated_at)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8)`
	args := []interface{}{course.Title, course.Link, course.TotalLessons, course.Notes,
		course.DurationHours, course.DurationMinutes, course.CreatedAt, course.UpdatedAt}

	// postgres has no LastInsertId
	if conn.Driver() == driver.DriverPostgres {
		rows, err := conn.QueryContext(ctx, query+" RETURNING id", args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return fmt.Errorf("insert course: no id returned")
		}
		return rows.Scan(&course.ID)
	}

	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	course.ID, err = res.LastInsertId()
	return err
}

// UpdateCourse writes the non-nil fields of patch and refreshes updated_at
func (repo *CourseSQL) UpdateCourse(ctx context.Context, id int64, patch *CoursePatch) error {
	conn := repo.Conn
	var (
		sets []string
		args []interface{}
	)
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Link != nil {
		set("link", *patch.Link)
	}
	if patch.TotalLessons != nil {
		set("total_lessons", *patch.TotalLessons)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	if patch.Hours != nil {
		set("duration_hours", *patch.Hours)
	}
	if patch.Minutes != nil {
		set("duration_minutes", *patch.Minutes)
	}
	set("updated_at", now())
	args = append(args, id)

	_, err := conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE courses SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)),
		args...)
	return err
}

func (repo *CourseSQL) DeleteCourse(ctx context.Context, id int64) error {
	conn := repo.Conn
	if _, err := conn.ExecContext(ctx, `DELETE FROM completed_lessons WHERE course_id = $1`, id); err != nil {
		return err
	}
	_, err := conn.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}

func (repo *CourseSQL) ListCompletedLessons(ctx context.Context, courseID int64) ([]int, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    lesson_number
FROM
    completed_lessons
WHERE
    course_id = $1
ORDER BY lesson_number ASC
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]int, 0)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (repo *CourseSQL) isCompleted(ctx context.Context, courseID int64, lessonNumber int) (bool, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `SELECT 1 FROM completed_lessons WHERE course_id = $1 AND lesson_number = $2`,
		courseID, lessonNumber)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	if rows.Next() {
		return true, nil
	}
	return false, rows.Err()
}

func (repo *CourseSQL) MarkCompleted(ctx context.Context, courseID int64, lessonNumber int) error {
	// look first, a failed insert would abort a postgres transaction
	if done, err := repo.isCompleted(ctx, courseID, lessonNumber); err != nil || done {
		return err
	}

	conn := repo.Conn
	_, err := conn.ExecContext(ctx, `INSERT INTO completed_lessons(course_id, lesson_number, completed_at)
	VALUES($1, $2, $3)`, courseID, lessonNumber, now())
	if driver.IsDuplicateKey(err) {
		return nil
	}
	return err
}

func (repo *CourseSQL) UnmarkCompleted(ctx context.Context, courseID int64, lessonNumber int) error {
	conn := repo.Conn
	_, err := conn.ExecContext(ctx, `DELETE FROM completed_lessons WHERE course_id = $1 AND lesson_number = $2`,
		courseID, lessonNumber)
	return err
}

func (repo *CourseSQL) GetStats(ctx context.Context) (*StatsModel, error) {
	stats := new(StatsModel)
	if err := repo.scanOne(ctx, `SELECT COUNT(*), COALESCE(SUM(total_lessons), 0) FROM courses`,
		&stats.TotalCourses, &stats.TotalAvailableLessons); err != nil {
		return nil, err
	}
	if err := repo.scanOne(ctx, `SELECT COUNT(*) FROM completed_lessons`,
		&stats.TotalCompletedLessons); err != nil {
		return nil, err
	}
	return stats, nil
}

// scanOne scans the single row of an aggregate query into dest
func (repo *CourseSQL) scanOne(ctx context.Context, query string, dest ...interface{}) error {
	rows, err := repo.Conn.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(dest...)
	}
	return rows.Err()
}

func (repo *CourseSQL) InTx(ctx context.Context, fn func(repo CourseRepository) error) (err error) {
	tx, err := repo.Conn.BeginTx(ctx, driver.ReadWriteTx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	return fn(&CourseSQL{Conn: tx})
}

package driver

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// NewSQLiteConn Returns a SQLite connection pool backed by the file at cfg.Schema.
//
// Foreign keys are enforced and writers wait up to cfg.BusyTimeout on a locked database.
func NewSQLiteConn(cfg *DBConfig) (ITransactionalDB, error) {
	if cfg.Schema == "" {
		return nil, errors.New("sqlite3: database file path is empty")
	}
	if dir := filepath.Dir(cfg.Schema); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite3: failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open(DriverSQLite, sqliteDSN(cfg))
	if err != nil {
		return nil, err
	}
	if cfg.MaxConn > 0 {
		conn.SetMaxOpenConns(int(cfg.MaxConn))
	}
	return newSQLWrapper(conn, DriverSQLite, sqliteAdapter), nil
}

func sqliteDSN(cfg *DBConfig) string {
	params := []string{
		"_foreign_keys=on",
		"_txlock=immediate",
		fmt.Sprintf("_busy_timeout=%d", cfg.BusyTimeout.Milliseconds()),
	}
	if cfg.Query != "" {
		params = append(params, cfg.Query)
	}
	return "file:" + cfg.Schema + "?" + strings.Join(params, "&")
}

// sqliteAdapter rewrites $N placeholders into ?N, which sqlite binds by position
func sqliteAdapter(query string) string {
	query = DollarPlaceholderPattern.ReplaceAllString(query, "?$1")
	query = SpacePattern.ReplaceAllString(query, " ")
	return query
}

func isSQLiteDuplicateKey(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

package driver

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// NewMySQLConn Returns a MySQL connection pool
//
// parseTime is always enabled so DATETIME columns scan into time.Time
func NewMySQLConn(dsn string, cfg *DBConfig) (ITransactionalDB, error) {
	mysqlCfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	mysqlCfg.ParseTime = true
	mysqlCfg.Loc = time.UTC

	conn, err := sql.Open(DriverMySQL, mysqlCfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(int(cfg.MaxConn))
	return newSQLWrapper(conn, DriverMySQL, mysqlAdapter), nil
}

func mysqlAdapter(query string) string {
	query = strings.Replace(query, "\"", "`", -1)
	query = DollarPlaceholderPattern.ReplaceAllString(query, "?")
	query = SpacePattern.ReplaceAllString(query, " ")
	return query
}

func isMySQLDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

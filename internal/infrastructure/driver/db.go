package driver

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/pot-code/course-tracker/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// supported driver names
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type TxAccessMode int

// transaction access mode
const (
	AccessReadOnly TxAccessMode = iota
	AccessReadWrite
)

type TxDeferrableMode int

// transaction defer mode
const (
	Deferrable TxDeferrableMode = iota
	NotDeferrable
)

// TxOptions Provides a universal option struct across different SQL drivers
type TxOptions struct {
	Isolation      sql.IsolationLevel
	AccessMode     TxAccessMode
	DeferrableMode TxDeferrableMode
}

// ReadWriteTx default options for transactions that mutate data
var ReadWriteTx = &TxOptions{
	Isolation:      sql.LevelReadCommitted,
	AccessMode:     AccessReadWrite,
	DeferrableMode: NotDeferrable,
}

// ISQLRows Provides a universal query result struct across different SQL drivers
type ISQLRows interface {
	Next() bool
	Scan(dest ...interface{}) (err error)
	Err() error
	Close() error
}

// ITransactionalDB Universal SQL operation interface, to eliminate the gap between different SQL drivers
type ITransactionalDB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (ISQLRows, error)
	BeginTx(ctx context.Context, opts *TxOptions) (ITransactionalDB, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close(ctx context.Context) error
	Ping(ctx context.Context) error
	// Driver returns the driver name, one of DriverSQLite, DriverMySQL or DriverPostgres
	Driver() string
}

// DBConfig connection options shared by all drivers
type DBConfig struct {
	Driver      string        // driver name
	Host        string        // server host
	MaxConn     int32         // maximum opening connections number
	Password    string        // db password
	Port        int           // server port
	Protocol    string        // connection protocol, eg.tcp
	Query       string        // DSN query parameter
	Schema      string        // use schema, or database file path for sqlite3
	User        string        // username
	BusyTimeout time.Duration // sqlite3 only
}

// SpacePattern check for space, tab or newline
var SpacePattern = regexp.MustCompile(`[\n\t\s]+`)

// DollarPlaceholderPattern check for postgresql style var placeholder
var DollarPlaceholderPattern = regexp.MustCompile(`\$([0-9]+)`)

func getDSN(cfg *DBConfig) (DSN string) {
	if cfg.Protocol != "" {
		DSN = fmt.Sprintf("%s:%s@%s(%s:%d)/%s", cfg.User, cfg.Password, cfg.Protocol, cfg.Host, cfg.Port, cfg.Schema)
	} else {
		DSN = fmt.Sprintf("%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Schema)
	}
	if cfg.Query != "" {
		return DSN + "?" + cfg.Query
	}
	return
}

// GetDBConnection create a DB connection from given config
func GetDBConnection(cfg *DBConfig) (conn ITransactionalDB, err error) {
	switch cfg.Driver {
	case DriverSQLite:
		conn, err = NewSQLiteConn(cfg)
	case DriverMySQL:
		conn, err = NewMySQLConn(getDSN(cfg), cfg)
	case DriverPostgres:
		conn, err = NewPostgreSQLConn("postgres://"+getDSN(cfg), cfg)
	default:
		err = fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
	return
}

func shouldLogError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func logQueryArgs(args []interface{}) []interface{} {
	logArgs := make([]interface{}, 0, len(args))

	for _, a := range args {
		switch v := a.(type) {
		case []byte:
			if len(v) < 64 {
				a = hex.EncodeToString(v)
			} else {
				a = fmt.Sprintf("%x (truncated %d bytes)", v[:64], len(v)-64)
			}
		case string:
			if len(v) > 64 {
				a = fmt.Sprintf("%s (truncated %d bytes)", v[:64], len(v)-64)
			}
		}
		logArgs = append(logArgs, a)
	}

	return logArgs
}

// logStatement logs the outcome of a db call with the logger bound to ctx
func logStatement(ctx context.Context, method, query string, args []interface{}, startTime time.Time, err error) {
	logger := logging.ExtractLoggerFromContext(ctx)
	fields := []zap.Field{zap.String("db.method", method)}
	if query != "" {
		fields = append(fields, zap.String("db.sql", query))
	}
	if args != nil {
		fields = append(fields, zap.Any("db.args", logQueryArgs(args)))
	}
	if err != nil {
		if shouldLogError(err) {
			logger.Error(err.Error(), fields...)
		}
		return
	}
	logger.Debug("", append(fields, zap.Duration("db.time", time.Since(startTime)))...)
}

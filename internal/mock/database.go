// Package mock contains test doubles shared by the repository and handler tests.
package mock

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
)

// Connection is the mock version for database.Connection.
type Connection struct {
	db      *sql.DB
	SQLMock sqlmock.Sqlmock
	// Log is what Logger returns. The zero value discards everything.
	Log zerolog.Logger
}

func (m Connection) CreateContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

func (m Connection) Logger() zerolog.Logger {
	return m.Log
}

func (m Connection) DB() *sql.DB {
	return m.db
}

func (m Connection) Close() {
	_ = m.DB().Close()
}

// MustCreateConnectionMock creates a Connection whose queries are matched by sqlmock. It panics
// if sqlmock cannot be started.
func MustCreateConnectionMock() Connection {
	db, mock, err := sqlmock.New()
	if err != nil {
		panic(err)
	}
	return Connection{
		db:      db,
		SQLMock: mock,
		Log:     zerolog.Nop(),
	}
}

// DBResultOption registers an expectation on the mocked connection.
type DBResultOption func(dbConn Connection)

// MockDBResults registers the given expectations, in order.
func MockDBResults(dbConn Connection, opts ...DBResultOption) {
	for _, opt := range opts {
		opt(dbConn)
	}
}

// WithQueryRows expects the given query, literally, answering it with rows. Arguments are
// only checked when given.
func WithQueryRows(query string, rows *sqlmock.Rows, args ...driver.Value) DBResultOption {
	return func(dbConn Connection) {
		expectation := dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(query))
		if len(args) > 0 {
			expectation = expectation.WithArgs(args...)
		}
		expectation.WillReturnRows(rows)
	}
}

// WithQueryError expects the given query, literally, failing it with err.
func WithQueryError(query string, err error) DBResultOption {
	return func(dbConn Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnError(err)
	}
}

// WithExecResult expects the given statement, literally, answering it with result. Arguments are
// only checked when given.
func WithExecResult(query string, result driver.Result, args ...driver.Value) DBResultOption {
	return func(dbConn Connection) {
		expectation := dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(query))
		if len(args) > 0 {
			expectation = expectation.WithArgs(args...)
		}
		expectation.WillReturnResult(result)
	}
}

// WithExecError expects the given statement, literally, failing it with err.
func WithExecError(query string, err error) DBResultOption {
	return func(dbConn Connection) {
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(query)).WillReturnError(err)
	}
}

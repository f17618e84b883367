// Package database contains useful functions to handle database operations, as create connections,
// apply migrations, close resources and also helpers to parse result into structs.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"time"

	"clinic-scheduler/internal/configs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

const queryTimeout = 5 * time.Second

type defaultConnection struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Connection holds a DB instance.
type Connection interface {
	DB() *sql.DB
	CreateContext(ctx context.Context) (context.Context, context.CancelFunc)
	Logger() zerolog.Logger
	Close()
}

// DB gets the DB instance associated to the connection.
func (d *defaultConnection) DB() *sql.DB {
	return d.db
}

// CreateContext creates a new context based on the given one, with a default timeout.
func (d *defaultConnection) CreateContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// Logger gets the logger the connection reports to.
func (d *defaultConnection) Logger() zerolog.Logger {
	return d.logger
}

// NewConnection creates a new DB instance based on the given configurations.
func NewConnection(config configs.Config, logger zerolog.Logger) (Connection, error) {
	db, err := sql.Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("could not create a connection: %w", err)
	}
	db.SetConnMaxLifetime(time.Minute * 3)
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}
	return &defaultConnection{db: db, logger: logger}, nil
}

// Close closes the DB connection.
func (d *defaultConnection) Close() {
	if err := d.DB().Close(); err != nil {
		d.logger.Error().Err(err).Msg("could not close the database connection")
		return
	}
	d.logger.Info().Msg("database connection released successfully")
}

// Migrate applies every pending migration found in source to the database behind the connection.
// It returns the schema version the database ends at.
func Migrate(dbConn Connection, source fs.FS) (uint, error) {
	dbDriver, err := postgres.WithInstance(dbConn.DB(), &postgres.Config{})
	if err != nil {
		return 0, fmt.Errorf("could not create the migration driver: %w", err)
	}
	srcDriver, err := iofs.New(source, ".")
	if err != nil {
		return 0, fmt.Errorf("could not read the migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return 0, fmt.Errorf("could not create the migrator: %w", err)
	}
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("could not apply the migrations: %w", err)
	}
	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, err
	}
	return version, nil
}

// CloseRows closes the given rows, reporting a failure to logger.
func CloseRows(rows *sql.Rows, logger zerolog.Logger) {
	if err := rows.Close(); err != nil {
		logger.Error().Err(err).Msg("could not close the given rows")
	}
}

// TransformRow transforms the current row given by the into the given struct.
// The transformation is performed by reflection, using a field tag called dbfield for that.
// Columns without a matching field are scanned and discarded.
func TransformRow(rows *sql.Rows, model interface{}) error {
	modelType := reflect.TypeOf(model).Elem()
	modelValue := reflect.ValueOf(model)
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	values := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		target := interface{}(new(interface{}))
		for i := 0; i < modelType.NumField(); i++ {
			if modelType.Field(i).Tag.Get("dbfield") == column {
				target = modelValue.Elem().Field(i).Addr().Interface()
				break
			}
		}
		values = append(values, target)
	}
	return rows.Scan(values...)
}

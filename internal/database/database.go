package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/beesaferoot/fritter/internal/config"
)

// statementCacheCapacity bounds the prepared statements cached per connection.
const statementCacheCapacity = 256

// Open returns a database connection for the configured driver
func Open(cfg *config.Config) (*gorm.DB, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		d, err := PostgresDialector(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		dialector = d
	case config.DriverSQLite:
		dialector = SQLiteDialector(cfg.SQLitePath)
	}

	return OpenDialector(dialector, cfg.Debug)
}

// PostgresDialector builds a postgres dialector on top of a pgx connection
// that caches prepared statements.
func PostgresDialector(dsn string) (gorm.Dialector, error) {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	connConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	connConfig.StatementCacheCapacity = statementCacheCapacity

	return postgres.New(postgres.Config{
		Conn: stdlib.OpenDB(*connConfig),
	}), nil
}

// SQLiteDialector opens the sqlite file at path with foreign keys enforced
func SQLiteDialector(path string) gorm.Dialector {
	return sqlite.Open(path + "?_foreign_keys=on")
}

// OpenDialector opens dialector, logging every statement when debug is set.
// Driver errors for unique and foreign key violations come back as
// gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func OpenDialector(dialector gorm.Dialector, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger(os.Stdout, debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newLogger writes slow queries and failed statements to w, skipping
// lookups that only found no record.
func newLogger(w io.Writer, debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Close releases the connection pool behind db
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

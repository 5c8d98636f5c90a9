package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/yukikurage/team-todo-api/internal/config"
	"github.com/yukikurage/team-todo-api/internal/logger"
	"github.com/yukikurage/team-todo-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectMaxElapsed = 30 * time.Second

// Connect opens the connection pool for the configured driver, retrying with
// exponential backoff until the database answers a ping.
func Connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	open := func() error {
		var err error
		db, err = openPool(ctx, dialector, gormLogLevel(cfg.DBLogLevel))
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectMaxElapsed
	notify := func(err error, wait time.Duration) {
		log.Warn("database not ready, retrying", "driver", cfg.DBDriver, "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(open, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	log.Info("database connection established", "driver", cfg.DBDriver, "host", cfg.DBHost, "name", cfg.DBName)
	return db, nil
}

// openPool opens a pool and pings it once. A pool that fails the ping is
// closed before returning.
func openPool(ctx context.Context, dialector gorm.Dialector, level gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               gormlogger.Default.LogMode(level),
		TranslateError:       true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, err
	}
	if err := Ping(ctx, db); err != nil {
		_ = Close(db)
		return nil, err
	}
	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql", "":
		return mysql.Open(MySQLDSN(cfg)), nil
	case "postgres":
		return postgres.Open(PostgresDSN(cfg)), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// MySQLDSN builds the DSN for the mysql driver. Timestamps are read and
// written as UTC so the naive DATETIME columns round-trip unchanged.
func MySQLDSN(cfg *config.Config) string {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = cfg.DBHost + ":" + cfg.DBPort
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	// Report matched rather than changed rows so an UPDATE writing the same
	// values still counts.
	mc.ClientFoundRows = true
	mc.Loc = time.UTC
	mc.Timeout = cfg.DBTimeout
	mc.ReadTimeout = cfg.DBTimeout
	mc.WriteTimeout = cfg.DBTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// PostgresDSN builds the DSN for the postgres driver with a server-side
// statement timeout.
func PostgresDSN(cfg *config.Config) string {
	parts := []string{
		"host=" + cfg.DBHost,
		"port=" + cfg.DBPort,
		"user=" + cfg.DBUser,
		"password=" + cfg.DBPassword,
		"dbname=" + cfg.DBName,
		"sslmode=disable",
		"TimeZone=UTC",
	}
	if cfg.DBTimeout > 0 {
		parts = append(parts,
			fmt.Sprintf("connect_timeout=%d", int(cfg.DBTimeout.Seconds())),
			fmt.Sprintf("statement_timeout=%d", cfg.DBTimeout.Milliseconds()),
		)
	}
	return strings.Join(parts, " ")
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Todo{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

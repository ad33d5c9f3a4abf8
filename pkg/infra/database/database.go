package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	connectTimeout   = 30 * time.Second
	migrationTimeout = 30 * time.Second

	maxOpenConns    = 50
	maxIdleConns    = 10
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = time.Minute
)

// DB wraps the gorm handle used by the abuse repositories.
type DB struct {
	logger *logrus.Logger
	*gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewDB opens the postgres connection, tunes the pool, verifies connectivity
// and applies any pending schema migrations before returning.
func NewDB(logger *logrus.Logger, cfg *Config) (*DB, error) {
	logger.WithFields(logrus.Fields{
		"host":    cfg.Host,
		"port":    cfg.Port,
		"db":      cfg.DBName,
		"sslmode": cfg.SSLMode,
	}).Info("connecting to database")

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	db := &DB{logger: logger, DB: gormDB}
	if err := db.migrate(); err != nil {
		return nil, err
	}
	return db, nil
}

// migrate applies pending migrations, bounded by migrationTimeout so a
// stuck DDL lock surfaces as an error instead of hanging startup.
func (db *DB) migrate() error {
	db.logger.Info("applying database migrations")

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- NewMigrationsManager(db.DB, db.logger).ApplyPending()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		db.logger.Info("database migrations applied")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("migrations timed out: %w", ctx.Err())
	}
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

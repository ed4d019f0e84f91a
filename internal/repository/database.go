package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/axellelanca/linkshelf/internal/config"
	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/models"
)

// gormWriter forwards gorm's own log lines (slow queries, errors) to zerolog.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	logging.Warn().Str("component", "gorm").Msgf(format, args...)
}

// OpenDatabase opens the relational store selected by cfg.Driver.
func OpenDatabase(cfg config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Name)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(gormWriter{}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, apperrors.Unavailable("open database", err)
	}

	if cfg.Driver != "mysql" {
		// SQLite allows a single writer; one connection also keeps an
		// in-memory database alive for the lifetime of the pool.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return backfillSearchKeys(db)
}

// backfillSearchKeys fills title_search for rows written before the column
// existed.
func backfillSearchKeys(db *gorm.DB) error {
	var rows []models.LinkCollection
	err := db.Select("id", "title").Where("title_search = ? AND title <> ?", "", "").
		FindInBatches(&rows, 200, func(_ *gorm.DB, _ int) error {
			for _, c := range rows {
				if err := db.Model(&models.LinkCollection{ID: c.ID}).UpdateColumn("title_search", models.SearchKey(c.Title)).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
	if err != nil {
		return fmt.Errorf("failed to backfill search keys: %w", err)
	}
	return nil
}

type txKey struct{}

// TxManager runs a function inside a single database transaction. Repository
// calls made with the context handed to fn join that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// GormTxManager is the gorm implementation of TxManager.
type GormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a GormTxManager.
func NewTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (m *GormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := conn(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return translate(err)
}

// conn returns the transaction carried by ctx, or db bound to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// translate maps driver and gorm errors onto the service error kinds.
// Errors that already carry a kind pass through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		apperrors.ErrNotFound, apperrors.ErrForbidden, apperrors.ErrValidation,
		apperrors.ErrConflict, apperrors.ErrUnavailable, apperrors.ErrExpired,
		apperrors.ErrUnauthorized,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}

	var netErr net.Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.As(err, &netErr):
		return apperrors.Unavailable("database", err)
	}
	return err
}

// notFound converts gorm.ErrRecordNotFound into a NotFoundError for resource.
func notFound(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFoundError{Resource: resource, ID: id}
	}
	return translate(err)
}

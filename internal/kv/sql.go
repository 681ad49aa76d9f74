package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"wildcard/internal/config"
	"wildcard/internal/observability"
)

// Entry is the single-table schema behind the SQL-backed store. Value
// carries no explicit column type so each dialector picks its native one
// (bytea on postgres, blob on sqlite).
type Entry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM.
func (Entry) TableName() string {
	return "kv_entries"
}

// SQL is a Store backed by a relational database through gorm. The sqlite
// dialector is the local-first default; postgres is available for shared
// deployments. Keys are prefixed with the configured namespace so several
// installs can share one database.
type SQL struct {
	db        *gorm.DB
	namespace string
}

// OpenSQL connects the dialector selected by the store backend and runs
// the schema migration.
func OpenSQL(cfg *config.Config) (*SQL, error) {
	var dialector gorm.Dialector
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	case config.BackendPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("sql store does not support backend %q", cfg.StoreBackend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating kv_entries: %w", err)
	}

	observability.GlobalLogger.Info("sql store connected", "backend", cfg.StoreBackend, "namespace", cfg.DataNamespace)
	return &SQL{db: db, namespace: cfg.DataNamespace}, nil
}

// NewSQLFromDB wraps an existing gorm handle. Used by tests with an
// in-memory sqlite database.
func NewSQLFromDB(db *gorm.DB, namespace string) (*SQL, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &SQL{db: db, namespace: namespace}, nil
}

func (s *SQL) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", s.key(key)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		observability.StoreErrors.WithLabelValues("sql", "get").Inc()
		return nil, err
	}
	return entry.Value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	entry := Entry{Key: s.key(key), Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		observability.StoreErrors.WithLabelValues("sql", "set").Inc()
	}
	return err
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Delete(&Entry{}, "key = ?", s.key(key)).Error
	if err != nil {
		observability.StoreErrors.WithLabelValues("sql", "del").Inc()
	}
	return err
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

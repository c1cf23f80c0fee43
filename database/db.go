package database

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/harvester/logger"
)

// DB wraps a read-only GORM handle on one SQLite file.
type DB struct {
	GormDB *gorm.DB
	path   string
	log    *logger.Logger
	closed bool
	mu     sync.Mutex
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// readOnlyDSN builds a URI filename that SQLite opens without write access.
func readOnlyDSN(path string, cfg Config) string {
	return fmt.Sprintf("file:%s?mode=ro&_busy_timeout=%d", uriEscaper.Replace(path), cfg.BusyTimeout.Milliseconds())
}

// OpenReadOnly opens the SQLite file at path. The file is never created or
// modified. SQLite validates the file lazily, so a damaged store usually
// opens fine and fails on its first query.
func OpenReadOnly(ctx context.Context, path string, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	gormCfg := &gorm.Config{
		Logger: newStoreLogger(log, path, cfg.SlowQueryThreshold, parseLogLevel(cfg.LogLevel)),
	}
	db, err := gorm.Open(sqlite.Open(readOnlyDSN(path, cfg)), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &DB{GormDB: db, path: path, log: log}, nil
}

// Path returns the store file path.
func (d *DB) Path() string { return d.path }

// Close closes the connection. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.closed = true
	return sqlDB.Close()
}

// HasTable reports whether the store declares the named table.
func (d *DB) HasTable(ctx context.Context, name string) (bool, error) {
	var count int64
	err := d.GormDB.WithContext(ctx).
		Raw("SELECT count(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?", name).
		Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// TransactionFunc defines a function that runs within a transaction.
type TransactionFunc func(tx *gorm.DB) error

// WithReadOnlyTransaction runs fn in a transaction that is always rolled
// back, giving fn one consistent snapshot of the store.
func (d *DB) WithReadOnlyTransaction(ctx context.Context, fn TransactionFunc) error {
	tx := d.GormDB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin read-only transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	return fn(tx)
}

// QuoteIdent quotes an SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

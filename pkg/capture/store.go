// Package capture persists transmitted and received transport blocks to a
// local SQLite database for offline inspection. Writes happen on a dedicated
// goroutine so the slot path never touches the database directly.
package capture

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	// Registers the pure Go sqlite driver (no cgo required)
	_ "modernc.org/sqlite"

	"github.com/ranstack/nrmac/pkg/logger"
)

// Store wraps the GORM database connection for captured PDUs
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// New creates a new capture store backed by SQLite at the given path
func New(dbPath string, log *logger.Logger) (*Store, error) {
	gormLogger := gormlogger.New(
		&gormLogAdapter{log: log},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// modernc.org/sqlite is a pure Go driver, no cgo required
	dialector := sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dbPath,
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open capture database: %w", err)
	}

	// WAL keeps the writer goroutine from blocking web API reads
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if err := db.Exec("PRAGMA busy_timeout=5000").Error; err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &Store{
		db:  db,
		log: log.WithComponent("capture"),
	}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate capture database: %w", err)
	}

	store.log.Info("Capture database initialized", logger.String("path", dbPath))
	return store, nil
}

func (s *Store) migrate() error {
	return s.db.AutoMigrate(&PDURecord{})
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the underlying GORM database handle
func (s *Store) GetDB() *gorm.DB {
	return s.db
}

// gormLogAdapter adapts our logger to GORM's logger interface
type gormLogAdapter struct {
	log *logger.Logger
}

func (a *gormLogAdapter) Printf(format string, args ...interface{}) {
	a.log.Debug(fmt.Sprintf(format, args...))
}

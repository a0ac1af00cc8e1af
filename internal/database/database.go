package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/s-boardman/enviroplus-datalogger/internal/models"
)

// Store appends measurements to a SQLite file. Every operation opens the
// database, runs its statements and closes again, so the file lock is never
// held between runs and concurrent invocations only contend for the duration
// of a single insert.
type Store struct {
	path   string
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the database file the store writes to.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) open() (*gorm.DB, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Wait instead of failing with SQLITE_BUSY when another invocation
	// holds the write lock.
	db.Exec("PRAGMA busy_timeout = 5000")

	return db, nil
}

func (s *Store) close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		s.logger.Debug("Failed to obtain underlying connection for close", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		s.logger.Debug("Failed to close database", "error", err)
	}
}

// EnsureSchema creates the measurements table if it does not exist yet.
// It is safe to call on every run; an existing table is left untouched.
func (s *Store) EnsureSchema() error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer s.close(db)

	if err := db.AutoMigrate(&models.Measurement{}); err != nil {
		return fmt.Errorf("failed to ensure measurements table: %w", err)
	}

	return nil
}

// Append inserts one measurement row.
func (s *Store) Append(m *models.Measurement) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer s.close(db)

	if err := db.Create(m).Error; err != nil {
		return fmt.Errorf("failed to insert measurement: %w", err)
	}

	return nil
}

// Latest returns the most recently recorded measurement. When the table is
// empty the error wraps gorm.ErrRecordNotFound.
func (s *Store) Latest() (*models.Measurement, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer s.close(db)

	var m models.Measurement
	if err := db.Order("timestamp DESC").Take(&m).Error; err != nil {
		return nil, fmt.Errorf("failed to load latest measurement: %w", err)
	}

	return &m, nil
}

// ForEach streams every stored measurement in chronological order. The
// callback's error aborts the iteration and is returned as-is.
func (s *Store) ForEach(fn func(models.Measurement) error) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer s.close(db)

	rows, err := db.Model(&models.Measurement{}).Order("timestamp ASC").Rows()
	if err != nil {
		return fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Measurement
		if err := db.ScanRows(rows, &m); err != nil {
			return fmt.Errorf("failed to scan measurement: %w", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}

	return rows.Err()
}

package store

import (
	"errors"
	"strings"

	"github.com/suteetoe/repurpose/prometheus"
	"gorm.io/gorm"
)

var (
	// ErrNotFound covers both missing rows and rows owned by another user
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Store wraps the gorm handle with owner-scoped queries
type Store struct {
	db *gorm.DB
}

// New creates a store on top of an open database
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle, used by health checks
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks the database connection
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Page bounds a list query
type Page struct {
	Skip  int
	Limit int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Skip > 0 {
		q = q.Offset(p.Skip)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}

func track(operation string) func() {
	return prometheus.TrackDBOperation(operation)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrConflict
	}
	return err
}

// isUniqueViolation catches drivers that do not translate unique errors
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

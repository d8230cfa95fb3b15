// Package repository holds the gorm queries behind every service.
package repository

import (
	"context"
	"time"

	"cleverheal-api/internal/models"

	"gorm.io/gorm"
)

// Store wraps a gorm handle. A Store obtained inside Transaction is bound to
// that transaction.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn inside a database transaction. fn must only use the
// Store it is given.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, now: s.now})
	})
}

func (s *Store) stamp() string {
	return models.Timestamp(s.now())
}

// Package repository is the gorm-backed persistence layer for deals,
// releases, partners and their audit trails.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup by id matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrStale is returned when a conditional update matched no row because
	// the guarded column changed since it was read.
	ErrStale = errors.New("row changed concurrently")
)

// GormStore implements every persistence method the services need.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

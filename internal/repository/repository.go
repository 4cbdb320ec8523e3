// Package repository is the persistence layer. Handlers and services talk
// to the per-entity interfaces below; the gorm implementation works the
// same on SQLite and Postgres.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate key")
	ErrReferenced = errors.New("record is still referenced")
)

// Store groups the repositories that share one database handle.
type Store interface {
	Users() UserRepository
	Vehicles() VehicleRepository
	Routes() RouteRepository
	Trips() TripRepository
	Bookings() BookingRepository

	// Transaction runs fn with a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// fn must only use the Store it is given.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// New returns a Store backed by db.
func New(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository       { return &userRepo{db: s.db} }
func (s *gormStore) Vehicles() VehicleRepository { return &vehicleRepo{db: s.db} }
func (s *gormStore) Routes() RouteRepository     { return &routeRepo{db: s.db} }
func (s *gormStore) Trips() TripRepository       { return &tripRepo{db: s.db} }
func (s *gormStore) Bookings() BookingRepository { return &bookingRepo{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// translate maps driver-specific errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrReferenced, err)
	case errors.As(err, &pqErr):
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case "23503":
			return fmt.Errorf("%w: %v", ErrReferenced, err)
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", ErrReferenced, err)
	}
	return err
}

// affected turns a conditional write into (changed, error).
func affected(res *gorm.DB) (bool, error) {
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

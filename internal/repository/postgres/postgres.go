package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"

	_ "github.com/lib/pq"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same repository
// code serves plain calls and transactional scopes.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.VehicleRepository
	repository.BookingRepository
	repository.UserRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		VehicleRepository: NewVehicleRepository(db),
		BookingRepository: NewBookingRepository(db),
		UserRepository:    NewUserRepository(db),
	}
}

// WithinTx runs fn with vehicle and booking repositories bound to one
// transaction. Rolls back on error or panic, commits otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(vehicles repository.VehicleRepository, bookings repository.BookingRepository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PersistenceError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(NewVehicleRepository(tx), NewBookingRepository(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.PersistenceError("commit transaction", err)
	}
	return nil
}

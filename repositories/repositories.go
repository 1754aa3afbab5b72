// Package repositories wraps the gorm queries the application needs. Every
// method takes a context so request cancellation reaches the driver.
package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Store bundles the repositories over one connection pool.
type Store struct {
	DB        *gorm.DB
	Users     *UserRepository
	Sessions  *SessionRepository
	Paychecks *PaycheckRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		DB:        db,
		Users:     &UserRepository{db: db},
		Sessions:  &SessionRepository{db: db},
		Paychecks: &PaycheckRepository{db: db},
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

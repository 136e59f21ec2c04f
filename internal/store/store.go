package store

import (
	"time"

	"gorm.io/gorm"

	"aasha-server/internal/models"
)

// Store owns the three record collections and the derived patient and
// screening helpers built on them.
type Store struct {
	db  *gorm.DB
	now func() time.Time

	Patients   *Collection[models.Patient]
	Screenings *Collection[models.Screening]
	Settings   *Collection[models.Setting]
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now. The location of the returned times decides
// which calendar day counts as "today".
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New wraps an opened and migrated database.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:         db,
		now:        time.Now,
		Patients:   newCollection[models.Patient](db, "patients", "id"),
		Screenings: newCollection[models.Screening](db, "screenings", "id"),
		Settings:   newCollection[models.Setting](db, "settings", "key"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stamp is the persisted form of the current time. Timestamps are stored in
// UTC so range queries compare consistently on every driver.
func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

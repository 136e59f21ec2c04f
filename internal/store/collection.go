package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Collection is durable CRUD over one record kind keyed by a single column.
// Every call is atomic for the record it touches; nothing spans collections.
type Collection[T any] struct {
	db   *gorm.DB
	name string
	key  string
}

func newCollection[T any](db *gorm.DB, name, key string) *Collection[T] {
	return &Collection[T]{db: db, name: name, key: key}
}

// Name returns the collection name used in errors and logs.
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) byKey(key string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: c.key}, Value: key}
}

// Add inserts rec and fails with ErrDuplicateKey if its key exists.
func (c *Collection[T]) Add(ctx context.Context, rec *T) error {
	err := c.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("add %s: %w", c.name, ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("add %s: %w", c.name, err)
	}
	return nil
}

// Put inserts rec or replaces the record stored under the same key.
func (c *Collection[T]) Put(ctx context.Context, rec *T) error {
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(rec).Error
	if err != nil {
		return fmt.Errorf("put %s: %w", c.name, err)
	}
	return nil
}

// Get looks up one record. A missing key is reported with ok=false, not an
// error.
func (c *Collection[T]) Get(ctx context.Context, key string) (rec T, ok bool, err error) {
	err = c.db.WithContext(ctx).Where(c.byKey(key)).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("get %s %q: %w", c.name, key, err)
	}
	return rec, true, nil
}

// GetAll returns every record. Order is not part of the contract; callers
// that need one sort explicitly.
func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	var recs []T
	if err := c.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("get all %s: %w", c.name, err)
	}
	return recs, nil
}

// Find returns the records matching an equality condition on column.
func (c *Collection[T]) Find(ctx context.Context, column string, value any) ([]T, error) {
	var recs []T
	err := c.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("find %s by %s: %w", c.name, column, err)
	}
	return recs, nil
}

// Delete removes the record under key. Deleting a missing key succeeds.
func (c *Collection[T]) Delete(ctx context.Context, key string) error {
	var rec T
	if err := c.db.WithContext(ctx).Where(c.byKey(key)).Delete(&rec).Error; err != nil {
		return fmt.Errorf("delete %s %q: %w", c.name, key, err)
	}
	return nil
}

// Count returns the number of records in the collection.
func (c *Collection[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	var rec T
	if err := c.db.WithContext(ctx).Model(&rec).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", c.name, err)
	}
	return n, nil
}

package store

import "errors"

// ErrDuplicateKey is returned by Add when the key is already taken. Upsert
// flows (Put and the Save* helpers) never produce it.
var ErrDuplicateKey = errors.New("duplicate key")

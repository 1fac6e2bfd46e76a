// Package kvstore is a minimal document store: one value per key, with
// optimistic concurrency. Revisions are content hashes, so a caller that
// read a value can prove it is writing against the version it saw.
package kvstore

import (
	"context"
	"errors"

	"github.com/cespare/xxhash"
)

var (
	// ErrNotFound reports a key with no stored value.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrRevisionMismatch reports a Put whose expected revision no longer
	// matches the stored document; the caller lost a read-modify-write race.
	ErrRevisionMismatch = errors.New("kvstore: revision mismatch")
)

// Store persists one document per key.
//
// Get returns the value with its current revision. Put is a compare-and-swap:
// rev must be the revision returned by Get, or 0 to assert the key does not
// exist yet.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, rev uint64, err error)
	Put(ctx context.Context, key string, value []byte, rev uint64) error
	Close() error
}

// Revision computes the revision token for a stored value.
func Revision(value []byte) uint64 {
	return xxhash.Sum64(value)
}

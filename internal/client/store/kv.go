// Package store implements the client's local persistent state: a typed
// Item Store layered over a simple get/set byte-string key-value primitive.
package store

import "context"

// KV is the persistence primitive the Item Store is built on. Values are
// opaque byte strings; the typed layer above decides the encoding.
type KV interface {
	// Get returns the value for key. The second result reports whether the
	// key exists; a missing key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}

// Package snapshots stores the last-pushed snapshot per namespace. The
// mirror server treats payloads as opaque blobs; validation happens at the
// HTTP boundary.
package snapshots

import "context"

// Repository is a namespace-keyed blob store.
type Repository interface {
	// Get returns the stored payload for code, or common.ErrorNotFound if
	// the namespace was never pushed.
	Get(ctx context.Context, code string) ([]byte, error)

	// Set overwrites the payload for code.
	Set(ctx context.Context, code string, payload []byte) error
}

// Package store persists the application's collections as whole JSON documents
// in a key-value backend. Every mutation upstream is read-modify-write of the
// full collection; there is exactly one writer process.
package store

import "context"

// Collection keys. No schema version field; a format change needs a data wipe.
const (
	StudentsKey   = "pastoral_students"
	AttendanceKey = "pastoral_attendance"
	InsightsKey   = "pastoral_insights"
)

// Store loads and saves JSON documents by key.
type Store interface {
	// Load unmarshals the value at key into dest. Returns false when the key
	// has never been written — distinct from a stored empty value, which the
	// seeding logic relies on.
	Load(ctx context.Context, key string, dest any) (bool, error)
	// Save marshals val and writes it at key, replacing any previous value.
	Save(ctx context.Context, key string, val any) error
}

// Package store persists encoded figure documents.
//
// A Record holds the encoded JSON body of a figure together with the engine
// that produced it. The HTTP service stores and serves records by ID; the
// MongoDB backend is for deployments, the in-memory backend for tests and
// single-process use.
package store

import (
	"context"
	"time"
)

// Record is a stored figure document.
type Record struct {
	ID        string    `bson:"_id" json:"id"`
	Body      string    `bson:"body" json:"body"`
	Engine    string    `bson:"engine" json:"engine"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Store is a figure document store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Put inserts or replaces the record under its ID.
	Put(ctx context.Context, rec Record) error

	// Get retrieves the record with the given ID. Absent IDs surface a
	// figure-not-found error.
	Get(ctx context.Context, id string) (Record, error)

	// Delete removes the record with the given ID. Absent IDs surface a
	// figure-not-found error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Package store reads record collections into memory. A run works on one
// Snapshot: every collection is read once and never mutated afterwards.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/goreach/internal/record"
)

// ErrCollectionNotFound is returned by Load for a type without a backing collection.
var ErrCollectionNotFound = errors.New("collection not found")

// Store supplies record collections by type name.
type Store interface {
	// Types lists every type name with a backing collection, sorted.
	Types(ctx context.Context) ([]string, error)
	// Load reads the ordered collection for typeName.
	Load(ctx context.Context, typeName string) (*record.Collection, error)
}

// InputError reports an unreadable or malformed collection. It aborts the run.
type InputError struct {
	Type   string // record type, empty when the failure is not type specific
	Source string // file path or table the data came from
	Err    error
}

func (e *InputError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("invalid input %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("invalid %s collection (%s): %v", e.Type, e.Source, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

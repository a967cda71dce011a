package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/goreach/internal/logger"
	"github.com/dbsmedya/goreach/internal/record"
)

// Snapshot holds every collection of one run. It is read-only once built and
// safe for concurrent use.
type Snapshot struct {
	collections map[string]*record.Collection
	types       []string
}

// NewSnapshot builds a snapshot from already loaded collections. A later
// collection with the same type replaces an earlier one.
func NewSnapshot(collections ...*record.Collection) *Snapshot {
	s := &Snapshot{collections: make(map[string]*record.Collection, len(collections))}
	for _, c := range collections {
		if c == nil {
			continue
		}
		s.collections[c.Type] = c
	}
	for typeName := range s.collections {
		s.types = append(s.types, typeName)
	}
	sort.Strings(s.types)
	return s
}

// Types returns the loaded type names, sorted.
func (s *Snapshot) Types() []string {
	out := make([]string, len(s.types))
	copy(out, s.types)
	return out
}

// Collection returns the collection for typeName.
func (s *Snapshot) Collection(typeName string) (*record.Collection, bool) {
	c, ok := s.collections[typeName]
	return c, ok
}

// Collections returns all collections ordered by type name.
func (s *Snapshot) Collections() []*record.Collection {
	out := make([]*record.Collection, 0, len(s.types))
	for _, typeName := range s.types {
		out = append(out, s.collections[typeName])
	}
	return out
}

// Has reports whether typeName is loaded and contains id.
func (s *Snapshot) Has(typeName, id string) bool {
	c, ok := s.collections[typeName]
	return ok && c.Has(id)
}

// TotalRecords returns the number of records across all collections.
func (s *Snapshot) TotalRecords() int {
	total := 0
	for _, c := range s.collections {
		total += c.Len()
	}
	return total
}

// LoadSnapshot loads every collection of st concurrently, at most workers at a
// time. Any input error aborts the whole load.
func LoadSnapshot(ctx context.Context, st Store, workers int, log *logger.Logger) (*Snapshot, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	startTime := time.Now()

	types, err := st.Types(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	collections := make([]*record.Collection, len(types))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, typeName := range types {
		i, typeName := i, typeName
		g.Go(func() error {
			c, err := st.Load(gCtx, typeName)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", typeName, err)
			}
			log.WithType(typeName).Debugf("Loaded %d records", c.Len())
			collections[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := NewSnapshot(collections...)
	log.Infof("Loaded %d collections, %d records in %s",
		len(snap.types), snap.TotalRecords(), time.Since(startTime))
	return snap, nil
}

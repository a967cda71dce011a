// Package index builds id-to-id lookup tables for pairs of record types.
// Each table is built on first use, at most once, and never modified after.
package index

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dbsmedya/goreach/internal/graph"
	"github.com/dbsmedya/goreach/internal/store"
)

// EdgeSet holds the references from records of one type to records of another.
// It is read-only after construction.
type EdgeSet struct {
	Source  string
	Target  string
	forward map[string][]string // source id -> sorted target ids
	reverse map[string][]string // target id -> sorted source ids
	pairs   int
}

var emptyIDs = []string{}

// Targets returns the sorted target ids referenced by sourceID.
func (e *EdgeSet) Targets(sourceID string) []string {
	if ids, ok := e.forward[sourceID]; ok {
		return ids
	}
	return emptyIDs
}

// Sources returns the sorted source ids that reference targetID.
func (e *EdgeSet) Sources(targetID string) []string {
	if ids, ok := e.reverse[targetID]; ok {
		return ids
	}
	return emptyIDs
}

// Len returns the number of distinct (source id, target id) pairs.
func (e *EdgeSet) Len() int {
	return e.pairs
}

// SourceIDs returns every source id with at least one reference, sorted.
func (e *EdgeSet) SourceIDs() []string {
	ids := make([]string, 0, len(e.forward))
	for id := range e.forward {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type pairKey struct {
	source string
	target string
}

// Index memoizes EdgeSets per (source, target) type pair. It is safe for
// concurrent use.
type Index struct {
	snap  *store.Snapshot
	graph *graph.Graph

	mu     sync.RWMutex
	cache  map[pairKey]*EdgeSet
	group  singleflight.Group
	builds atomic.Int64
}

// New creates an index over snap using the field paths recorded in g.
func New(snap *store.Snapshot, g *graph.Graph) *Index {
	return &Index{
		snap:  snap,
		graph: g,
		cache: make(map[pairKey]*EdgeSet),
	}
}

// Between returns the EdgeSet from source to target. It is empty, never nil,
// when no field of source references target or source has no collection.
func (ix *Index) Between(source, target string) *EdgeSet {
	key := pairKey{source: source, target: target}

	ix.mu.RLock()
	es, ok := ix.cache[key]
	ix.mu.RUnlock()
	if ok {
		return es
	}

	v, _, _ := ix.group.Do(source+"\x00"+target, func() (any, error) {
		ix.mu.RLock()
		cached, ok := ix.cache[key]
		ix.mu.RUnlock()
		if ok {
			return cached, nil
		}

		built := ix.build(source, target)
		ix.builds.Add(1)

		ix.mu.Lock()
		ix.cache[key] = built
		ix.mu.Unlock()
		return built, nil
	})
	return v.(*EdgeSet)
}

// build scans every record of source for pointers to target held under one of
// the field paths the graph recorded for the pair. Paths are unioned, so the
// resulting set does not say which field produced an edge.
func (ix *Index) build(source, target string) *EdgeSet {
	es := &EdgeSet{
		Source:  source,
		Target:  target,
		forward: make(map[string][]string),
		reverse: make(map[string][]string),
	}

	meta := ix.graph.GetEdgeMeta(source, target)
	if meta == nil || len(meta.Paths) == 0 {
		return es
	}
	c, ok := ix.snap.Collection(source)
	if !ok {
		return es
	}

	paths := make(map[string]struct{}, len(meta.Paths))
	for _, p := range meta.Paths {
		paths[p] = struct{}{}
	}

	forward := make(map[string]map[string]struct{})
	for _, rec := range c.Records {
		for _, ref := range rec.Refs {
			if ref.Type != target {
				continue
			}
			if _, ok := paths[ref.Path]; !ok {
				continue
			}
			targets, ok := forward[rec.ID]
			if !ok {
				targets = make(map[string]struct{})
				forward[rec.ID] = targets
			}
			targets[ref.ID] = struct{}{}
		}
	}

	reverse := make(map[string]map[string]struct{})
	for sourceID, targets := range forward {
		es.forward[sourceID] = sortedKeys(targets)
		es.pairs += len(targets)
		for targetID := range targets {
			sources, ok := reverse[targetID]
			if !ok {
				sources = make(map[string]struct{})
				reverse[targetID] = sources
			}
			sources[sourceID] = struct{}{}
		}
	}
	for targetID, sources := range reverse {
		es.reverse[targetID] = sortedKeys(sources)
	}
	return es
}

// Warm builds the EdgeSet of every edge in the graph, at most workers at a time.
func (ix *Index) Warm(ctx context.Context, workers int) error {
	if workers <= 0 {
		workers = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, edge := range ix.graph.AllEdges() {
		edge := edge
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			ix.Between(edge.From, edge.To)
			return nil
		})
	}
	return g.Wait()
}

// Builds returns how many EdgeSets have been constructed so far.
func (ix *Index) Builds() int {
	return int(ix.builds.Load())
}

// Graph returns the type graph the index was built over.
func (ix *Index) Graph() *graph.Graph {
	return ix.graph
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

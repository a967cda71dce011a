// Package reach computes the set of records transitively linked to a start
// record through references, treating every reference as undirected.
package reach

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/goreach/internal/index"
	"github.com/dbsmedya/goreach/internal/logger"
	"github.com/dbsmedya/goreach/internal/store"
	"github.com/dbsmedya/goreach/internal/types"
)

// ErrStartNotFound is returned when the start record is not in the snapshot.
var ErrStartNotFound = errors.New("start record not found")

// StepInfo describes one completed superstep.
type StepInfo struct {
	Step     int            // 1-based superstep number
	Frontier int            // Items expanded in this step
	Found    map[string]int // Newly discovered ids per type
	Total    map[string]int // Discovered ids per type after the step
}

// StepHook is called after every superstep. It runs on the caller's goroutine.
type StepHook func(StepInfo)

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets how many frontier items are expanded concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMaxDepth caps the number of supersteps. Zero means no cap.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxDepth = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStepHook registers a callback run after each superstep.
func WithStepHook(h StepHook) Option {
	return func(e *Engine) {
		e.hook = h
	}
}

// Engine runs reachability closures over one snapshot. It holds no per-run
// state and is safe for concurrent Runs.
type Engine struct {
	snap      *store.Snapshot
	index     *index.Index
	neighbors map[string][]string // backed type -> backed neighbor types
	workers   int
	maxDepth  int
	logger    *logger.Logger
	hook      StepHook
}

// NewEngine creates an engine over snap using ix for edge lookups.
func NewEngine(snap *store.Snapshot, ix *index.Index, opts ...Option) (*Engine, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if ix == nil {
		return nil, fmt.Errorf("index is nil")
	}

	e := &Engine{
		snap:      snap,
		index:     ix,
		neighbors: make(map[string][]string),
		workers:   1,
		logger:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	// Types without a collection can never contribute ids, so they are
	// dropped from adjacency up front.
	g := ix.Graph()
	for _, t := range snap.Types() {
		for _, u := range g.Neighbors(t) {
			if _, ok := snap.Collection(u); ok {
				e.neighbors[t] = append(e.neighbors[t], u)
			}
		}
	}
	return e, nil
}

type item struct {
	typeName string
	id       string
}

// Run computes the closure from start. On cancellation it returns the
// records discovered so far together with the context error.
func (e *Engine) Run(ctx context.Context, start types.StartNode) (*types.RecordSet, error) {
	startTime := time.Now()

	if !e.snap.Has(start.Type, start.ID) {
		return nil, fmt.Errorf("%w: %s", ErrStartNotFound, start)
	}

	discovered := map[string]map[string]struct{}{
		start.Type: {start.ID: {}},
	}
	frontier := []item{{typeName: start.Type, id: start.ID}}
	stats := types.DiscoveryStats{}

	e.logger.Infof("Starting reachability closure from %s", start)

	var runErr error
	for len(frontier) > 0 {
		// Supersteps are the only cancellation points; discovered is a valid
		// partial answer at every step boundary.
		if err := ctx.Err(); err != nil {
			e.logger.Warnf("Traversal interrupted after %d steps: %v", stats.Steps, err)
			stats.Truncated = true
			runErr = err
			break
		}
		if e.maxDepth > 0 && stats.Steps >= e.maxDepth {
			e.logger.Warnf("Traversal stopped at max depth %d with %d records unexpanded", e.maxDepth, len(frontier))
			stats.Truncated = true
			break
		}

		found, err := e.expand(ctx, frontier)
		if err != nil {
			e.logger.Warnf("Traversal interrupted after %d steps: %v", stats.Steps, err)
			stats.Truncated = true
			runErr = err
			break
		}

		stats.Steps++
		stats.Expansions += len(frontier)

		next := make([]item, 0)
		newPerType := make(map[string]int)
		for _, slot := range found {
			for _, it := range slot {
				ids, ok := discovered[it.typeName]
				if !ok {
					ids = make(map[string]struct{})
					discovered[it.typeName] = ids
				}
				if _, seen := ids[it.id]; seen {
					continue
				}
				// Dangling pointers name ids with no backing record.
				if !e.snap.Has(it.typeName, it.id) {
					continue
				}
				ids[it.id] = struct{}{}
				next = append(next, it)
				newPerType[it.typeName]++
			}
		}

		e.logger.WithStep(stats.Steps).Debugf("Expanded %d records, discovered %d new", len(frontier), len(next))
		if e.hook != nil {
			e.hook(StepInfo{
				Step:     stats.Steps,
				Frontier: len(frontier),
				Found:    newPerType,
				Total:    sizes(discovered),
			})
		}
		frontier = next
	}

	result := &types.RecordSet{
		Start:   start,
		Records: make(map[string][]string, len(discovered)),
	}
	for typeName, ids := range discovered {
		if len(ids) == 0 {
			continue
		}
		sorted := make([]string, 0, len(ids))
		for id := range ids {
			sorted = append(sorted, id)
		}
		sort.Strings(sorted)
		result.Records[typeName] = sorted
		stats.RecordsFound += int64(len(sorted))
	}
	stats.TypesFound = len(result.Records)
	stats.TypesScanned = len(e.index.Graph().Component(start.Type))
	stats.Duration = time.Since(startTime)
	result.Stats = stats

	e.logger.Infof("Traversal complete: %d types, %d records, %d steps, %d expansions, duration: %s",
		stats.TypesFound,
		stats.RecordsFound,
		stats.Steps,
		stats.Expansions,
		stats.Duration,
	)

	return result, runErr
}

// expand looks up the neighbors of every frontier item. Results are stored
// per frontier position so merging stays in frontier order.
func (e *Engine) expand(ctx context.Context, frontier []item) ([][]item, error) {
	found := make([][]item, len(frontier))

	if e.workers == 1 || len(frontier) == 1 {
		for i, it := range frontier {
			found[i] = e.expandOne(it)
		}
		return found, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, it := range frontier {
		i, it := i, it
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			found[i] = e.expandOne(it)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}

// expandOne returns every record linked to it in either direction.
func (e *Engine) expandOne(it item) []item {
	var out []item
	for _, u := range e.neighbors[it.typeName] {
		for _, id := range e.index.Between(it.typeName, u).Targets(it.id) {
			out = append(out, item{typeName: u, id: id})
		}
		for _, id := range e.index.Between(u, it.typeName).Sources(it.id) {
			out = append(out, item{typeName: u, id: id})
		}
	}
	return out
}

func sizes(discovered map[string]map[string]struct{}) map[string]int {
	out := make(map[string]int, len(discovered))
	for typeName, ids := range discovered {
		if len(ids) > 0 {
			out[typeName] = len(ids)
		}
	}
	return out
}

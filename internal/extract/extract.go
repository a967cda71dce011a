// Package extract discovers which fields of a collection hold references and
// which record types those references point to.
package extract

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/goreach/internal/record"
)

// Result is the reference layout of one collection.
type Result struct {
	Type string
	// Fields maps a field path to the sorted target types seen under it.
	Fields map[string][]string
	// References is the number of pointer values found, duplicates included.
	References int
}

// Paths returns the sorted field paths whose observed targets include target.
func (r *Result) Paths(target string) []string {
	var paths []string
	for path, targets := range r.Fields {
		i := sort.SearchStrings(targets, target)
		if i < len(targets) && targets[i] == target {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Targets returns every type referenced from this collection, sorted.
func (r *Result) Targets() []string {
	seen := make(map[string]struct{})
	for _, targets := range r.Fields {
		for _, t := range targets {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SortedPaths returns every field path holding references, sorted.
func (r *Result) SortedPaths() []string {
	paths := make([]string, 0, len(r.Fields))
	for path := range r.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Collection scans every record of c. It does not modify c.
func Collection(c *record.Collection) *Result {
	fields := make(map[string]map[string]struct{})
	refs := 0
	for _, rec := range c.Records {
		for _, ref := range rec.Refs {
			targets, ok := fields[ref.Path]
			if !ok {
				targets = make(map[string]struct{})
				fields[ref.Path] = targets
			}
			targets[ref.Type] = struct{}{}
			refs++
		}
	}

	res := &Result{
		Type:       c.Type,
		Fields:     make(map[string][]string, len(fields)),
		References: refs,
	}
	for path, targets := range fields {
		sorted := make([]string, 0, len(targets))
		for t := range targets {
			sorted = append(sorted, t)
		}
		sort.Strings(sorted)
		res.Fields[path] = sorted
	}
	return res
}

// All extracts every collection concurrently, at most workers at a time. The
// returned map is keyed by type and is not modified afterwards.
func All(ctx context.Context, collections []*record.Collection, workers int) (map[string]*Result, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]*Result, len(collections))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range collections {
		i, c := i, c
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = Collection(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Result, len(results))
	for _, r := range results {
		out[r.Type] = r
	}
	return out, nil
}

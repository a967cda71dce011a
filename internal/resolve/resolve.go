// Package resolve turns a user-supplied identifier or name pair into the
// start record of a traversal.
package resolve

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/goreach/internal/logger"
	"github.com/dbsmedya/goreach/internal/store"
	"github.com/dbsmedya/goreach/internal/types"
)

// UsageError reports an invalid combination of query inputs. It is raised
// before any data is loaded.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// Kind classifies resolution failures.
type Kind int

const (
	// NotFound means no record matched.
	NotFound Kind = iota
	// Ambiguous means more than one record matched.
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Ambiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ResolutionError reports that no single start record could be determined.
type ResolutionError struct {
	Kind       Kind
	Type       string
	Query      Query
	Candidates []string // matching ids, set for Ambiguous
}

func (e *ResolutionError) Error() string {
	switch e.Kind {
	case Ambiguous:
		return fmt.Sprintf("ambiguous %s match for %s: %d candidates (%s)",
			e.Type, e.Query, len(e.Candidates), strings.Join(e.Candidates, ", "))
	default:
		return fmt.Sprintf("no %s matches %s", e.Type, e.Query)
	}
}

// Query selects the start record either by ID or by FirstName and LastName.
type Query struct {
	ID        string
	FirstName string
	LastName  string
}

func (q Query) String() string {
	if q.ID != "" {
		return fmt.Sprintf("id %q", q.ID)
	}
	return fmt.Sprintf("name %q %q", q.FirstName, q.LastName)
}

// Validate checks that exactly one of ID or the complete name pair is set.
func (q Query) Validate() error {
	hasName := q.FirstName != "" || q.LastName != ""
	switch {
	case q.ID != "" && hasName:
		return &UsageError{Msg: "--id cannot be combined with --firstname/--lastname"}
	case q.ID != "":
		return nil
	case q.FirstName != "" && q.LastName != "":
		return nil
	case q.FirstName != "":
		return &UsageError{Msg: "--firstname requires --lastname"}
	case q.LastName != "":
		return &UsageError{Msg: "--lastname requires --firstname"}
	default:
		return &UsageError{Msg: "either --id or both --firstname and --lastname are required"}
	}
}

// Resolver finds start records in one collection of a snapshot.
type Resolver struct {
	snap      *store.Snapshot
	startType string
	logger    *logger.Logger
}

// NewResolver creates a resolver for records of startType.
func NewResolver(snap *store.Snapshot, startType string, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNop()
	}
	return &Resolver{snap: snap, startType: startType, logger: log}
}

// Resolve returns the single record matching q.
func (r *Resolver) Resolve(q Query) (types.StartNode, error) {
	if err := q.Validate(); err != nil {
		return types.StartNode{}, err
	}

	c, ok := r.snap.Collection(r.startType)
	if !ok {
		return types.StartNode{}, &ResolutionError{Kind: NotFound, Type: r.startType, Query: q}
	}

	if q.ID != "" {
		rec, ok := c.Get(q.ID)
		if !ok {
			return types.StartNode{}, &ResolutionError{Kind: NotFound, Type: r.startType, Query: q}
		}
		r.logger.Debugf("Resolved %s to %s/%s with %d references", q, r.startType, rec.ID, len(rec.Refs))
		return types.StartNode{Type: r.startType, ID: rec.ID}, nil
	}

	var matches []string
	for _, rec := range c.Records {
		for _, name := range rec.Names {
			if name.Family == q.LastName && name.First() == q.FirstName {
				matches = append(matches, rec.ID)
				break
			}
		}
	}

	switch len(matches) {
	case 0:
		return types.StartNode{}, &ResolutionError{Kind: NotFound, Type: r.startType, Query: q}
	case 1:
		r.logger.Debugf("Resolved %s to %s/%s", q, r.startType, matches[0])
		return types.StartNode{Type: r.startType, ID: matches[0]}, nil
	default:
		return types.StartNode{}, &ResolutionError{Kind: Ambiguous, Type: r.startType, Query: q, Candidates: matches}
	}
}

// Package types contains shared types used across multiple packages to avoid import cycles.
package types

import (
	"fmt"
	"sort"
	"time"

	"github.com/elliotchance/orderedmap/v2"
)

// StartNode identifies the record a traversal starts from.
type StartNode struct {
	Type string
	ID   string
}

// String returns the pointer form "<Type>/<Id>".
func (s StartNode) String() string {
	return fmt.Sprintf("%s/%s", s.Type, s.ID)
}

// RecordSet represents the records reachable from a start node, organized by type.
type RecordSet struct {
	Start   StartNode
	Records map[string][]string // type name -> sorted record ids
	Stats   DiscoveryStats
}

// DiscoveryStats contains statistics about the traversal.
type DiscoveryStats struct {
	TypesScanned int           // Number of types connected to the start type
	TypesFound   int           // Number of types with at least one reachable record
	RecordsFound int64         // Total records discovered across all types
	Steps        int           // Number of supersteps executed
	Expansions   int           // Number of frontier items expanded
	Truncated    bool          // True if a depth cap or cancellation stopped the traversal early
	Duration     time.Duration // Time taken for the traversal
}

// Count returns the number of reachable records of typeName.
func (rs *RecordSet) Count(typeName string) int {
	return len(rs.Records[typeName])
}

// Contains reports whether id of typeName was reached.
func (rs *RecordSet) Contains(typeName, id string) bool {
	ids := rs.Records[typeName]
	i := sort.SearchStrings(ids, id)
	return i < len(ids) && ids[i] == id
}

// Counts returns the count table for allTypes plus any type holding records,
// ordered by count descending and then by type name. Types with a zero count
// are left out when hideEmpty is set.
func (rs *RecordSet) Counts(allTypes []string, hideEmpty bool) *orderedmap.OrderedMap[string, int] {
	seen := make(map[string]struct{}, len(allTypes)+len(rs.Records))
	var names []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, name := range allTypes {
		add(name)
	}
	for name := range rs.Records {
		add(name)
	}

	sort.Slice(names, func(i, j int) bool {
		ci, cj := rs.Count(names[i]), rs.Count(names[j])
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	counts := orderedmap.NewOrderedMap[string, int]()
	for _, name := range names {
		n := rs.Count(name)
		if n == 0 && hideEmpty {
			continue
		}
		counts.Set(name, n)
	}
	return counts
}

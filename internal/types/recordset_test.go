package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartNode_String(t *testing.T) {
	assert.Equal(t, "Patient/P1", StartNode{Type: "Patient", ID: "P1"}.String())
}

func TestRecordSet_Initialization(t *testing.T) {
	t.Run("Empty RecordSet", func(t *testing.T) {
		rs := &RecordSet{}
		assert.Equal(t, StartNode{}, rs.Start)
		assert.Nil(t, rs.Records)
		assert.Equal(t, DiscoveryStats{}, rs.Stats)
		assert.Zero(t, rs.Count("Patient"))
		assert.False(t, rs.Contains("Patient", "P1"))
	})

	t.Run("RecordSet with data", func(t *testing.T) {
		rs := &RecordSet{
			Start: StartNode{Type: "Patient", ID: "P1"},
			Records: map[string][]string{
				"Patient":     {"P1"},
				"Observation": {"O1", "O2"},
			},
			Stats: DiscoveryStats{
				TypesScanned: 3,
				TypesFound:   2,
				RecordsFound: 3,
				Steps:        2,
				Expansions:   3,
				Duration:     100 * time.Millisecond,
			},
		}

		assert.Equal(t, 1, rs.Count("Patient"))
		assert.Equal(t, 2, rs.Count("Observation"))
		assert.True(t, rs.Contains("Observation", "O2"))
		assert.False(t, rs.Contains("Observation", "O3"))
		assert.Equal(t, int64(3), rs.Stats.RecordsFound)
		assert.Equal(t, 2, rs.Stats.Steps)
	})
}

func countPairs(rs *RecordSet, allTypes []string, hideEmpty bool) [][2]any {
	var out [][2]any
	m := rs.Counts(allTypes, hideEmpty)
	for el := m.Front(); el != nil; el = el.Next() {
		out = append(out, [2]any{el.Key, el.Value})
	}
	return out
}

func TestRecordSet_Counts(t *testing.T) {
	rs := &RecordSet{
		Records: map[string][]string{
			"Patient":     {"P1"},
			"Observation": {"O1", "O2"},
			"Encounter":   {"E1"},
			"Condition":   {"C1", "C2"},
		},
	}
	allTypes := []string{"Patient", "Observation", "Encounter", "Condition", "Procedure", "Device"}

	t.Run("sorted by count then name", func(t *testing.T) {
		assert.Equal(t, [][2]any{
			{"Condition", 2},
			{"Observation", 2},
			{"Encounter", 1},
			{"Patient", 1},
			{"Device", 0},
			{"Procedure", 0},
		}, countPairs(rs, allTypes, false))
	})

	t.Run("hide empty", func(t *testing.T) {
		assert.Equal(t, [][2]any{
			{"Condition", 2},
			{"Observation", 2},
			{"Encounter", 1},
			{"Patient", 1},
		}, countPairs(rs, allTypes, true))
	})

	t.Run("duplicate type names", func(t *testing.T) {
		m := rs.Counts([]string{"Patient", "Patient"}, false)
		assert.Equal(t, 4, m.Len())
	})
}

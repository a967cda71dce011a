// Package record defines the in-memory representation of structured records
// and the per-record parse that discovers typed references and names.
package record

import (
	"errors"
	"sort"

	"github.com/dbsmedya/goreach/internal/config"
)

// Schema declares the field-name conventions used to interpret a record.
// Conventions are resolved once here instead of being sniffed from shapes.
type Schema struct {
	IDField        string // unique identifier field, "id"
	ReferenceField string // pointer field name, "reference"
	NameField      string // top-level field holding name entries, "name"
	FamilyField    string // last name inside a name entry, "family"
	GivenField     string // first names inside a name entry, "given"
}

// DefaultSchema returns the FHIR conventions.
func DefaultSchema() Schema {
	return Schema{
		IDField:        "id",
		ReferenceField: "reference",
		NameField:      "name",
		FamilyField:    "family",
		GivenField:     "given",
	}
}

// SchemaFromConfig builds a Schema from the configured field names.
func SchemaFromConfig(cfg config.SchemaConfig) Schema {
	return Schema{
		IDField:        cfg.IDField,
		ReferenceField: cfg.ReferenceField,
		NameField:      cfg.NameField,
		FamilyField:    cfg.FamilyField,
		GivenField:     cfg.GivenField,
	}
}

// ErrDuplicateID is returned when an id appears twice in one collection.
var ErrDuplicateID = errors.New("duplicate record identifier")

// Ref is one pointer found inside a record.
type Ref struct {
	Path string // dotted field path to the map holding the pointer field
	Type string // target record type
	ID   string // target record id
}

// HumanName is one name entry of a record.
type HumanName struct {
	Family string
	Given  []string
}

// First returns the first given name, or "" when there is none.
func (n HumanName) First() string {
	if len(n.Given) == 0 {
		return ""
	}
	return n.Given[0]
}

// Record is one parsed entry of a collection. Records are immutable once parsed.
type Record struct {
	ID     string
	Fields map[string]any
	Refs   []Ref
	Names  []HumanName
}

// Collection is the ordered set of records of one type.
type Collection struct {
	Type    string
	Records []*Record
	byID    map[string]int
}

// NewCollection returns an empty collection for typeName.
func NewCollection(typeName string) *Collection {
	return &Collection{
		Type: typeName,
		byID: make(map[string]int),
	}
}

// Add appends r to the collection. It returns false, leaving the collection
// unchanged, when a record with the same id is already present.
func (c *Collection) Add(r *Record) bool {
	if _, exists := c.byID[r.ID]; exists {
		return false
	}
	c.byID[r.ID] = len(c.Records)
	c.Records = append(c.Records, r)
	return true
}

// Get returns the record with the given id.
func (c *Collection) Get(id string) (*Record, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return c.Records[i], true
}

// Has reports whether the collection contains id.
func (c *Collection) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.Records)
}

// IDs returns all record ids in sorted order.
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.Records))
	for _, r := range c.Records {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	return ids
}

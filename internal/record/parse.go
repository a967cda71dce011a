package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// ErrMissingID is returned when a record has no usable identifier.
var ErrMissingID = errors.New("record has no identifier")

// ErrNotObject is returned when a line decodes to something other than an object.
var ErrNotObject = errors.New("record is not a JSON object")

// ErrTrailingData is returned when a line holds more than one JSON value.
var ErrTrailingData = errors.New("invalid JSON: trailing data")

// ParseError describes an invalid record at a given line of its source.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// pointerPattern matches "<Type>/<Id>" with an optional trailing path such as
// "/_history/2". The id ends at a slash or the end of the value, so ids with
// whitespace, absolute URLs and urn: values do not match.
var pointerPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)/([^/\s]+)(?:/|$)`)

// ParsePointer splits a "<Type>/<Id>" value.
func ParsePointer(value string) (typeName, id string, ok bool) {
	m := pointerPattern.FindStringSubmatch(value)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Parse decodes one JSON object and returns the record together with every
// reference and name it holds. It has no side effects.
func Parse(data []byte, schema Schema) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	// One record per line: anything but whitespace after the object is malformed.
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return nil, ErrTrailingData
	}
	fields, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}

	id, err := identifier(fields[schema.IDField])
	if err != nil {
		return nil, err
	}

	s := scan{schema: schema}
	s.walk(fields, nil)

	return &Record{
		ID:     id,
		Fields: fields,
		Refs:   s.refs,
		Names:  names(fields[schema.NameField], schema),
	}, nil
}

func identifier(v any) (string, error) {
	switch id := v.(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case json.Number:
		return id.String(), nil
	}
	return "", ErrMissingID
}

type scan struct {
	schema Schema
	refs   []Ref
}

// walk visits every map and list below v. Pointers are only recognized as the
// value of the schema's reference field.
func (s *scan) walk(v any, path []string) {
	switch node := v.(type) {
	case map[string]any:
		if raw, ok := node[s.schema.ReferenceField].(string); ok {
			if typeName, id, ok := ParsePointer(raw); ok {
				s.refs = append(s.refs, Ref{
					Path: strings.Join(path, "."),
					Type: typeName,
					ID:   id,
				})
			}
		}

		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			child := append(path[:len(path):len(path)], k)
			s.walk(node[k], child)
		}
	case []any:
		for _, elem := range node {
			s.walk(elem, path)
		}
	}
}

// names reads name entries from the record's name field, which may hold one
// entry or a list of them. Entries lacking the family field are skipped.
func names(v any, schema Schema) []HumanName {
	var entries []any
	switch n := v.(type) {
	case []any:
		entries = n
	case map[string]any:
		entries = []any{n}
	default:
		return nil
	}

	var out []HumanName
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		family, ok := m[schema.FamilyField].(string)
		if !ok {
			continue
		}
		name := HumanName{Family: family}
		switch given := m[schema.GivenField].(type) {
		case []any:
			for _, g := range given {
				if gs, ok := g.(string); ok {
					name.Given = append(name.Given, gs)
				}
			}
		case string:
			name.Given = []string{given}
		}
		out = append(out, name)
	}
	return out
}

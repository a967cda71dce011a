package store

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dbsmedya/goreach/internal/record"
)

const defaultMaxLineBytes = 64 * 1024 * 1024

// NDJSONStore reads one collection per file from a directory. The type name is
// the file name without its extension, e.g. Observation.ndjson.
type NDJSONStore struct {
	dir          string
	ext          string
	schema       record.Schema
	maxLineBytes int
}

// NewNDJSONStore creates a store over dir. An empty ext defaults to ".ndjson";
// a non-positive maxLineBytes defaults to 64 MiB.
func NewNDJSONStore(dir, ext string, schema record.Schema, maxLineBytes int) *NDJSONStore {
	if ext == "" {
		ext = ".ndjson"
	}
	if maxLineBytes <= 0 {
		maxLineBytes = defaultMaxLineBytes
	}
	return &NDJSONStore{
		dir:          dir,
		ext:          ext,
		schema:       schema,
		maxLineBytes: maxLineBytes,
	}
}

// Dir returns the directory the store reads from.
func (s *NDJSONStore) Dir() string {
	return s.dir
}

// Types lists the collections present in the directory.
func (s *NDJSONStore) Types(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &InputError{Source: s.dir, Err: err}
	}

	var types []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, s.ext) {
			continue
		}
		typeName := strings.TrimSuffix(name, s.ext)
		if typeName == "" {
			continue
		}
		types = append(types, typeName)
	}
	sort.Strings(types)
	return types, nil
}

// Load reads and parses the collection file for typeName. Blank lines are skipped.
func (s *NDJSONStore) Load(ctx context.Context, typeName string) (*record.Collection, error) {
	path := filepath.Join(s.dir, typeName+s.ext)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", typeName, ErrCollectionNotFound)
		}
		return nil, &InputError{Type: typeName, Source: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	initial := 64 * 1024
	if initial > s.maxLineBytes {
		initial = s.maxLineBytes
	}
	scanner.Buffer(make([]byte, initial), s.maxLineBytes)

	c := record.NewCollection(typeName)
	line := 0
	for scanner.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		rec, err := record.Parse(data, s.schema)
		if err != nil {
			return nil, &InputError{Type: typeName, Source: path, Err: &record.ParseError{Line: line, Err: err}}
		}
		if !c.Add(rec) {
			return nil, &InputError{Type: typeName, Source: path, Err: &record.ParseError{
				Line: line,
				Err:  fmt.Errorf("%w: %q", record.ErrDuplicateID, rec.ID),
			}}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &InputError{Type: typeName, Source: path, Err: err}
	}

	return c, nil
}

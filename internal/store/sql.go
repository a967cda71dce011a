package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/dbsmedya/goreach/internal/config"
	"github.com/dbsmedya/goreach/internal/record"
)

// SQLStore reads collections from a single MySQL table that stores one JSON
// document per row, tagged with its type name.
type SQLStore struct {
	db     *sql.DB
	schema record.Schema

	table       string
	typeColumn  string
	bodyColumn  string
	orderColumn string
}

// NewSQLStore creates a store over db using the table layout from cfg.
// Identifiers are validated because they are interpolated into queries.
func NewSQLStore(db *sql.DB, cfg *config.DatabaseConfig, schema record.Schema) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	s := &SQLStore{db: db, schema: schema}
	for _, ident := range []struct {
		dst   *string
		value string
		field string
	}{
		{&s.table, cfg.Table, "table"},
		{&s.typeColumn, cfg.TypeColumn, "type_column"},
		{&s.bodyColumn, cfg.BodyColumn, "body_column"},
		{&s.orderColumn, cfg.OrderColumn, "order_column"},
	} {
		quoted, err := quoteIdentifierSafe(ident.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ident.field, err)
		}
		*ident.dst = quoted
	}
	return s, nil
}

// Types lists the distinct type names present in the table.
func (s *SQLStore) Types(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s ORDER BY %s", s.typeColumn, s.table, s.typeColumn)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &InputError{Source: s.table, Err: fmt.Errorf("query failed: %w", err)}
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var typeName string
		if err := rows.Scan(&typeName); err != nil {
			return nil, &InputError{Source: s.table, Err: fmt.Errorf("failed to scan type: %w", err)}
		}
		types = append(types, typeName)
	}
	if err := rows.Err(); err != nil {
		return nil, &InputError{Source: s.table, Err: err}
	}
	return types, nil
}

// Load reads the rows of typeName in collection order.
func (s *SQLStore) Load(ctx context.Context, typeName string) (*record.Collection, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s",
		s.bodyColumn, s.table, s.typeColumn, s.orderColumn)

	rows, err := s.db.QueryContext(ctx, query, typeName)
	if err != nil {
		return nil, &InputError{Type: typeName, Source: s.table, Err: fmt.Errorf("query failed: %w", err)}
	}
	defer rows.Close()

	c := record.NewCollection(typeName)
	row := 0
	for rows.Next() {
		row++
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, &InputError{Type: typeName, Source: s.table, Err: fmt.Errorf("failed to scan row %d: %w", row, err)}
		}

		rec, err := record.Parse(body, s.schema)
		if err != nil {
			return nil, &InputError{Type: typeName, Source: s.table, Err: &record.ParseError{Line: row, Err: err}}
		}
		if !c.Add(rec) {
			return nil, &InputError{Type: typeName, Source: s.table, Err: &record.ParseError{
				Line: row,
				Err:  fmt.Errorf("%w: %q", record.ErrDuplicateID, rec.ID),
			}}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &InputError{Type: typeName, Source: s.table, Err: err}
	}

	if c.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", typeName, ErrCollectionNotFound)
	}
	return c, nil
}

// validIdentifier restricts table and column names to alphanumerics and underscore.
var validIdentifier = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// InvalidIdentifierError is returned when a configured identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}

// quoteIdentifierSafe validates name and wraps it in backticks.
func quoteIdentifierSafe(name string) (string, error) {
	if !validIdentifier.MatchString(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`", nil
}

package storage

import (
	"context"
	"fmt"
	"strings"

	"budgetbook/internal/mirror"
)

// Tables lists the user tables in name order. SQLite's own tables and the
// migration bookkeeping table are not part of the dataset.
func (r *SQLiteRepository) Tables(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\' AND name <> ? ORDER BY name`,
		migrationsTable)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Describe reads the ordered columns and declared types of a table. An
// unknown table yields a schema with no columns.
func (r *SQLiteRepository) Describe(ctx context.Context, table string) (mirror.TableSchema, error) {
	rows, err := r.q.QueryContext(ctx, `PRAGMA table_info(`+quoteIdent(table)+`)`)
	if err != nil {
		return mirror.TableSchema{}, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	schema := mirror.TableSchema{Name: table}
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return mirror.TableSchema{}, fmt.Errorf("scan column of %s: %w", table, err)
		}
		schema.Columns = append(schema.Columns, mirror.Column{Name: strings.ToLower(name), Type: typ})
	}
	return schema, rows.Err()
}

// Rows reads the whole table with values in schema column order.
func (r *SQLiteRepository) Rows(ctx context.Context, schema mirror.TableSchema) ([][]any, error) {
	if len(schema.Columns) == 0 {
		return nil, nil
	}
	cols := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		cols[i] = quoteIdent(c.Name)
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+strings.Join(cols, ", ")+` FROM `+quoteIdent(schema.Name)+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", schema.Name, err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row of %s: %w", schema.Name, err)
		}
		out = append(out, values)
	}
	return out, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

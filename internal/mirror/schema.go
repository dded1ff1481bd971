// Package mirror replicates every table of the local record store into a
// destination store whose columns may be named differently.
package mirror

import (
	"context"
	"strings"
)

// Column is one ordered column of a table descriptor. Type is the declared
// type as reported by the store, empty when the store has none.
type Column struct {
	Name string
	Type string
}

// TableSchema describes a table as an ordered list of columns.
type TableSchema struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in declaration order.
func (t TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a column by name, case-insensitively.
func (t TableSchema) Lookup(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// IsDateTimeType reports whether a declared type holds a calendar date or
// timestamp, across the dialects the destinations speak.
func IsDateTimeType(declared string) bool {
	t := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(t, '('); i >= 0 {
		if j := strings.IndexByte(t[i:], ')'); j >= 0 {
			t = t[:i] + " " + t[i+j+1:]
		}
	}
	t = strings.Join(strings.Fields(t), " ")
	switch t {
	case "date", "datetime", "timestamp",
		"timestamp without time zone", "timestamp with time zone", "timestamptz":
		return true
	}
	return false
}

// IsBooleanType reports whether a declared type is a boolean.
func IsBooleanType(declared string) bool {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case "boolean", "bool":
		return true
	}
	return false
}

// SourceReader exposes the local store's tables for a full read.
type SourceReader interface {
	Tables(ctx context.Context) ([]string, error)
	Describe(ctx context.Context, table string) (TableSchema, error)
	// Rows returns every row with values ordered as schema.Columns.
	Rows(ctx context.Context, schema TableSchema) ([][]any, error)
}

// Destination is the store being populated. It never creates schema.
type Destination interface {
	// Describe reports exists=false when the table is absent.
	Describe(ctx context.Context, table string) (schema TableSchema, exists bool, err error)
	// Begin opens the unit of work a table's replacement is committed in.
	Begin(ctx context.Context, table string) (TableWriter, error)
	Close(ctx context.Context) error
}

// Locker is implemented by destinations that can refuse a run another
// process already holds. The lock lasts until Close.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
}

// TableWriter replaces a single destination table's contents.
type TableWriter interface {
	DeleteAll(ctx context.Context) error
	// Insert writes one row; a failure must leave earlier rows intact.
	Insert(ctx context.Context, columns []string, values []any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Opener connects to the destination for the duration of one run.
type Opener func(ctx context.Context) (Destination, error)

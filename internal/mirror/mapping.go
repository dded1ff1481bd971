package mirror

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ColumnMapping renames source columns per table. Columns without an entry
// keep their name in the destination.
type ColumnMapping map[string]map[string]string

// DefaultMapping gives the generic date fields their domain specific names.
func DefaultMapping() ColumnMapping {
	return ColumnMapping{
		"expense": {"date": "expense_date"},
		"saving":  {"date": "saving_date"},
	}
}

// Resolve returns the destination column for a source column.
func (m ColumnMapping) Resolve(table, column string) string {
	if cols, ok := m[strings.ToLower(table)]; ok {
		if dst, ok := cols[strings.ToLower(column)]; ok {
			return dst
		}
	}
	return column
}

type mappingFile struct {
	Tables map[string]map[string]string `yaml:"tables"`
}

// LoadMappingFile reads a YAML override of the form
//
//	tables:
//	  expense:
//	    date: expense_date
//
// Entries are merged over DefaultMapping; a table listed with no columns
// clears its default renames.
func LoadMappingFile(path string) (ColumnMapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	var f mappingFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse mapping file %s: %w", path, err)
	}

	m := DefaultMapping()
	for table, cols := range f.Tables {
		table = strings.ToLower(strings.TrimSpace(table))
		merged := make(map[string]string, len(cols))
		for src, dst := range cols {
			src, dst = strings.ToLower(strings.TrimSpace(src)), strings.TrimSpace(dst)
			if src == "" || dst == "" {
				return nil, fmt.Errorf("mapping file %s: empty column name in table %q", path, table)
			}
			merged[src] = dst
		}
		m[table] = merged
	}
	return m, nil
}

package table

import (
	"fmt"
	"regexp"
	"strings"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Column is a non-key column of a table
type Column struct {
	Name string
	Type string // declared SQLite type, e.g. INTEGER or TEXT
}

// Schema describes a table keyed by an auto-assigned integer.
// Key values are never reused, even after the row with the highest key is deleted.
type Schema struct {
	Name    string
	Key     string
	Columns []Column
	// Indexes lists columns that get a secondary index
	Indexes []string
}

func (s Schema) validate() error {
	if !identifier.MatchString(s.Name) {
		return fmt.Errorf("%w: table name %q", ErrInvalidSchema, s.Name)
	}
	if !identifier.MatchString(s.Key) {
		return fmt.Errorf("%w: key column %q", ErrInvalidSchema, s.Key)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: table %s has no columns", ErrInvalidSchema, s.Name)
	}
	seen := map[string]bool{s.Key: true}
	for _, c := range s.Columns {
		if !identifier.MatchString(c.Name) || !identifier.MatchString(c.Type) {
			return fmt.Errorf("%w: column %q %q", ErrInvalidSchema, c.Name, c.Type)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, c.Name)
		}
		seen[c.Name] = true
	}
	for _, name := range s.Indexes {
		if name == s.Key || !seen[name] {
			return fmt.Errorf("%w: index on unknown column %q", ErrInvalidSchema, name)
		}
	}
	return nil
}

// ColumnNames returns the key column followed by the other columns, in table order
func (s Schema) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns)+1)
	names = append(names, s.Key)
	for _, c := range s.Columns {
		names = append(names, c.Name)
	}
	return names
}

func (s Schema) hasColumn(name string) bool {
	if name == s.Key {
		return true
	}
	for _, c := range s.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (s Schema) createTableStmt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (%s INTEGER PRIMARY KEY AUTOINCREMENT", s.Name, s.Key)
	for _, c := range s.Columns {
		fmt.Fprintf(&b, ", %s %s", c.Name, c.Type)
	}
	b.WriteString(")")
	return b.String()
}

func (s Schema) createIndexStmts() []string {
	stmts := make([]string, 0, len(s.Indexes))
	for _, name := range s.Indexes {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)", s.Name, name, s.Name, name))
	}
	return stmts
}

func (s Schema) insertStmt() string {
	names := make([]string, len(s.Columns))
	marks := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.Name, strings.Join(names, ", "), strings.Join(marks, ", "))
}

func (s Schema) selectStmt() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(s.ColumnNames(), ", "), s.Name)
}

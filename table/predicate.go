package table

import (
	"fmt"
	"strings"
)

// Predicate selects rows for SelectAll, DeleteWhere and UpdateWhere
type Predicate struct {
	column string
	op     string
	args   []any
}

// All matches every row
func All() Predicate {
	return Predicate{}
}

// Eq matches rows whose column equals v
func Eq(column string, v any) Predicate {
	return Predicate{column: column, op: "=", args: []any{v}}
}

// In matches rows whose column equals any of vs. An empty In matches nothing.
func In(column string, vs ...any) Predicate {
	return Predicate{column: column, op: "IN", args: vs}
}

func (p Predicate) where(s Schema) (string, []any, error) {
	if p.op == "" {
		return "", nil, nil
	}
	if !s.hasColumn(p.column) {
		return "", nil, fmt.Errorf("%w: %q in %s", ErrUnknownColumn, p.column, s.Name)
	}
	switch p.op {
	case "=":
		return fmt.Sprintf(" WHERE %s = ?", p.column), p.args, nil
	case "IN":
		if len(p.args) == 0 {
			return " WHERE 0", nil, nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(p.args)), ", ")
		return fmt.Sprintf(" WHERE %s IN (%s)", p.column, marks), p.args, nil
	}
	return "", nil, fmt.Errorf("unsupported predicate %q", p.op)
}

// Assignment sets one column in UpdateWhere
type Assignment struct {
	column string
	value  any
}

// Set assigns v to column
func Set(column string, v any) Assignment {
	return Assignment{column: column, value: v}
}

package table

import (
	"database/sql"
	"fmt"
)

// Row is one table row. Values follow the schema column order and exclude the key.
type Row struct {
	Key    int64
	Values []any
}

// Tx is a transaction bound to one table
type Tx struct {
	tx     *sql.Tx
	schema Schema
}

// Insert appends row and returns the key the store assigned to it.
// row.Key must be zero.
func (tx *Tx) Insert(row Row) (int64, error) {
	if row.Key != 0 {
		return 0, ErrKeyColumn
	}
	if len(row.Values) != len(tx.schema.Columns) {
		return 0, fmt.Errorf("%w: %d values for %d columns", ErrRowShape, len(row.Values), len(tx.schema.Columns))
	}

	res, err := tx.tx.Exec(tx.schema.insertStmt(), row.Values...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", tx.schema.Name, err)
	}
	return res.LastInsertId()
}

// DeleteWhere removes the rows matching p and returns how many were removed
func (tx *Tx) DeleteWhere(p Predicate) (int64, error) {
	where, args, err := p.where(tx.schema)
	if err != nil {
		return 0, err
	}
	res, err := tx.tx.Exec("DELETE FROM "+tx.schema.Name+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", tx.schema.Name, err)
	}
	return res.RowsAffected()
}

// UpdateWhere applies set to the rows matching p and returns how many were changed
func (tx *Tx) UpdateWhere(set Assignment, p Predicate) (int64, error) {
	if !tx.schema.hasColumn(set.column) {
		return 0, fmt.Errorf("%w: %q in %s", ErrUnknownColumn, set.column, tx.schema.Name)
	}
	if set.column == tx.schema.Key {
		return 0, ErrKeyColumn
	}
	where, args, err := p.where(tx.schema)
	if err != nil {
		return 0, err
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s = ?%s", tx.schema.Name, set.column, where)
	res, err := tx.tx.Exec(stmt, append([]any{set.value}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", tx.schema.Name, err)
	}
	return res.RowsAffected()
}

// SelectAll returns the rows matching p, ordered by key
func (tx *Tx) SelectAll(p Predicate) ([]Row, error) {
	where, args, err := p.where(tx.schema)
	if err != nil {
		return nil, err
	}

	stmt := tx.schema.selectStmt() + where + " ORDER BY " + tx.schema.Key
	rows, err := tx.tx.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", tx.schema.Name, err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		row := Row{Values: make([]any, len(tx.schema.Columns))}
		dest := make([]any, 0, len(row.Values)+1)
		dest = append(dest, &row.Key)
		for i := range row.Values {
			dest = append(dest, &row.Values[i])
		}
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tx.schema.Name, err)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("select from %s: %w", tx.schema.Name, err)
	}
	return result, nil
}

// checkColumns compares the table as stored against the schema
func (tx *Tx) checkColumns() error {
	rows, err := tx.tx.Query("SELECT name FROM pragma_table_info(?) ORDER BY cid", tx.schema.Name)
	if err != nil {
		return fmt.Errorf("table info %s: %w", tx.schema.Name, err)
	}
	defer rows.Close()

	var stored []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return fmt.Errorf("table info %s: %w", tx.schema.Name, err)
		}
		stored = append(stored, name)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("table info %s: %w", tx.schema.Name, err)
	}

	want := tx.schema.ColumnNames()
	if len(stored) != len(want) {
		return fmt.Errorf("%w: %s has columns %v, want %v", ErrSchemaMismatch, tx.schema.Name, stored, want)
	}
	for i := range want {
		if stored[i] != want[i] {
			return fmt.Errorf("%w: %s has columns %v, want %v", ErrSchemaMismatch, tx.schema.Name, stored, want)
		}
	}
	return nil
}

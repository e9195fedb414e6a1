package table

import "errors"

var (
	ErrInvalidSchema  = errors.New("table: invalid schema")
	ErrSchemaMismatch = errors.New("table: existing table does not match schema")
	ErrUnknownColumn  = errors.New("table: unknown column")
	ErrRowShape       = errors.New("table: row does not match schema")
	ErrKeyColumn      = errors.New("table: key column is assigned by the store")
)

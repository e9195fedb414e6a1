package codec

import (
	"github.com/cqkv/prioritydb/model"
	"github.com/cqkv/prioritydb/table"
)

// Codec maps records to table rows and back
type Codec interface {
	// MarshalRecord returns the row for record, without its key
	MarshalRecord(*model.Record) table.Row

	UnmarshalRecord(table.Row, *model.Record) error
}

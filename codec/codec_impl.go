package codec

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cqkv/prioritydb/model"
	"github.com/cqkv/prioritydb/table"
)

var ErrBadColumn = errors.New("codec: unexpected column value")

/*
default codec, values in column order:
	priority INTEGER | hash TEXT | size INTEGER | on_disk INTEGER (0 or 1)
the row key is the record id
*/

type CodecImpl struct{}

func NewCodecImpl() *CodecImpl {
	return &CodecImpl{}
}

func (cl *CodecImpl) MarshalRecord(record *model.Record) table.Row {
	var onDisk int64
	if record.OnDisk {
		onDisk = 1
	}
	return table.Row{
		Values: []any{record.Priority, record.Hash, record.Size, onDisk},
	}
}

func (cl *CodecImpl) UnmarshalRecord(row table.Row, record *model.Record) error {
	if len(row.Values) != 4 {
		return fmt.Errorf("%w: %d values, want 4", ErrBadColumn, len(row.Values))
	}

	priority, err := toInt64(row.Values[0])
	if err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	hash, err := toString(row.Values[1])
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	size, err := toInt64(row.Values[2])
	if err != nil {
		return fmt.Errorf("size: %w", err)
	}
	onDisk, err := toInt64(row.Values[3])
	if err != nil {
		return fmt.Errorf("on_disk: %w", err)
	}

	record.ID = row.Key
	record.Priority = priority
	record.Hash = hash
	record.Size = size
	record.OnDisk = onDisk != 0
	return nil
}

// toInt64 accepts the representations SQLite may hand back for an INTEGER column
func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrBadColumn, v)
}

func toString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int64:
		// a numeric looking hash may come back with integer affinity
		return strconv.FormatInt(v, 10), nil
	}
	return "", fmt.Errorf("%w: %T", ErrBadColumn, v)
}

package keydir

import "github.com/cqkv/prioritydb/model"

// Keydir defined the keydir interface
// it indexes the tracked records by hash, by eviction order and by id
type Keydir interface {
	// Put stores record, replacing any record with the same hash
	Put(record model.Record)
	Get(hash string) (model.Record, bool)
	// Delete removes the record with hash and returns it
	Delete(hash string) (model.Record, bool)

	// AscendEviction visits records by ascending priority, ties by ascending id
	AscendEviction(fn func(model.Record) bool)
	// Ascend visits records by ascending id
	Ascend(fn func(model.Record) bool)

	Len() int
	Stats() Stats
	// Bytes is the exact sum of the record sizes
	Bytes() Total

	// Clone returns an independent copy, later writes to either side are not shared
	Clone() Keydir
}

// Stats are the running totals of a keydir.
// Byte counts are capped at math.MaxInt64, Bytes gives the exact sum.
type Stats struct {
	Records       int
	Bytes         int64
	OnDiskRecords int
	OnDiskBytes   int64
}

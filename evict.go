package prioritydb

import (
	"github.com/cqkv/prioritydb/keydir"
	"github.com/cqkv/prioritydb/model"
	"github.com/cqkv/prioritydb/table"
)

// maxDeleteBatch keeps IN lists below the SQLite host parameter limit
const maxDeleteBatch = 500

// planEviction returns, in eviction order, the records to drop so that the
// tracked size fits within maxSize. Records are taken one at a time by
// ascending priority, ties by ascending id, until the total fits or none remain.
func planEviction(kd keydir.Keydir, maxSize int64) []model.Record {
	total := kd.Bytes()
	if !total.Exceeds(maxSize) {
		return nil
	}

	var victims []model.Record
	kd.AscendEviction(func(record model.Record) bool {
		victims = append(victims, record)
		total.Sub(record.Size)
		return total.Exceeds(maxSize)
	})
	return victims
}

// enforceCapacity evicts the planned records from the table and from kd
func (db *DB) enforceCapacity(tx *table.Tx, kd keydir.Keydir) ([]model.Record, error) {
	victims := planEviction(kd, db.maxSize)
	if len(victims) == 0 {
		return nil, nil
	}

	ids := make([]any, len(victims))
	for i, victim := range victims {
		ids[i] = victim.ID
	}
	if err := deleteIDs(tx, ids); err != nil {
		return nil, err
	}
	for _, victim := range victims {
		kd.Delete(victim.Hash)
	}
	return victims, nil
}

func deleteIDs(tx *table.Tx, ids []any) error {
	for len(ids) > 0 {
		n := min(len(ids), maxDeleteBatch)
		if _, err := tx.DeleteWhere(table.In(columnID, ids[:n]...)); err != nil {
			return err
		}
		ids = ids[n:]
	}
	return nil
}

// noteEviction accounts for a committed eviction pass
func (db *DB) noteEviction(evicted []model.Record) {
	if len(evicted) == 0 {
		return
	}
	var freed keydir.Total
	for _, record := range evicted {
		freed.Add(record.Size)
		db.evictedBytes.Add(record.Size)
	}
	db.evictions += int64(len(evicted))

	db.logger.LogEviction(len(evicted), freed.Int64(), db.keydir.Stats().Bytes, db.maxSize)
	db.options.metrics.RecordEviction(len(evicted), freed.Int64())
}

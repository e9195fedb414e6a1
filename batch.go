package prioritydb

import (
	"sync"
	"time"

	"github.com/cqkv/prioritydb/keydir"
	"github.com/cqkv/prioritydb/model"
	"github.com/cqkv/prioritydb/table"
)

var ErrExceedMaxBatchNum = newError(KindInvalidArgument, "exceed the max batch num")

const defaultMaxBatchNum = 10000

type batchOpKind int

const (
	batchPut batchOpKind = iota
	batchDelete
	batchMark
)

type batchOp struct {
	kind   batchOpKind
	record model.Record
}

type writeBatchOptions struct {
	maxBatchNum int
}

type WriteBatchOption func(*writeBatchOptions)

// WithMaxBatchNum caps the number of pending operations
func WithMaxBatchNum(n int) WriteBatchOption {
	return func(o *writeBatchOptions) {
		o.maxBatchNum = n
	}
}

// WriteBatch collects operations and applies them in one transaction.
// Operations run in the order they were added, with the same eviction after
// each put as sequential inserts, and become visible together on Commit.
type WriteBatch struct {
	mu *sync.Mutex

	db            *DB
	options       writeBatchOptions
	pendingWrites []batchOp
}

func (db *DB) NewWriteBatch(options ...WriteBatchOption) *WriteBatch {
	opts := writeBatchOptions{maxBatchNum: defaultMaxBatchNum}
	for _, opt := range options {
		opt(&opts)
	}

	return &WriteBatch{
		mu:      new(sync.Mutex),
		options: opts,
		db:      db,
	}
}

func (wb *WriteBatch) Put(priority int64, hash string, size int64, onDisk bool) error {
	if hash == "" {
		return nil
	}
	if size < 0 {
		return ErrNegativeSize
	}
	return wb.add(batchOp{kind: batchPut, record: model.Record{
		Priority: priority,
		Hash:     hash,
		Size:     size,
		OnDisk:   onDisk,
	}})
}

func (wb *WriteBatch) Delete(hash string) error {
	return wb.add(batchOp{kind: batchDelete, record: model.Record{Hash: hash}})
}

func (wb *WriteBatch) SetOnDisk(hash string, onDisk bool) error {
	return wb.add(batchOp{kind: batchMark, record: model.Record{Hash: hash, OnDisk: onDisk}})
}

func (wb *WriteBatch) add(op batchOp) error {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	if len(wb.pendingWrites) >= wb.options.maxBatchNum {
		return ErrExceedMaxBatchNum
	}
	wb.pendingWrites = append(wb.pendingWrites, op)
	return nil
}

// Len returns the number of pending operations
func (wb *WriteBatch) Len() int {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return len(wb.pendingWrites)
}

// Commit applies the pending operations. On error nothing is applied and
// the operations stay pending.
func (wb *WriteBatch) Commit() error {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	if len(wb.pendingWrites) == 0 {
		return nil
	}

	db := wb.db
	start := time.Now()
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}

	var (
		inserts int64
		evicted []model.Record
	)
	err := db.update(func(tx *table.Tx, staged keydir.Keydir) error {
		for _, op := range wb.pendingWrites {
			var err error
			switch op.kind {
			case batchPut:
				if _, err = db.insert(tx, staged, op.record); err != nil {
					return err
				}
				var victims []model.Record
				if victims, err = db.enforceCapacity(tx, staged); err != nil {
					return err
				}
				evicted = append(evicted, victims...)
				inserts++
			case batchDelete:
				_, err = db.remove(tx, staged, op.record.Hash)
			case batchMark:
				_, err = db.setOnDisk(tx, staged, op.record.Hash, op.record.OnDisk)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	err = storageFailure("commit batch", err)
	if err != nil {
		db.logger.Error("batch commit failed", "operations", len(wb.pendingWrites), "error", err)
		return err
	}

	db.inserts += inserts
	db.noteEviction(evicted)
	db.logger.Debug("batch committed", "operations", len(wb.pendingWrites), "duration", time.Since(start))

	wb.pendingWrites = nil
	return nil
}

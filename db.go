package prioritydb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cqkv/prioritydb/fio"
	"github.com/cqkv/prioritydb/keydir"
	"github.com/cqkv/prioritydb/model"
	"github.com/cqkv/prioritydb/table"
)

// TableName is the table holding the records in the database file
const TableName = "prism_data"

const (
	columnID       = "id"
	columnPriority = "priority"
	columnHash     = "hash"
	columnSize     = "size"
	columnOnDisk   = "on_disk"
)

var recordSchema = table.Schema{
	Name: TableName,
	Key:  columnID,
	Columns: []table.Column{
		{Name: columnPriority, Type: "INTEGER"},
		{Name: columnHash, Type: "TEXT"},
		{Name: columnSize, Type: "INTEGER"},
		{Name: columnOnDisk, Type: "INTEGER"},
	},
	Indexes: []string{columnHash},
}

// DB is a size-bounded index of cached objects, persisted in a SQLite file.
// When the tracked size exceeds the capacity, the records with the lowest
// priority are evicted, oldest first among equal priorities.
type DB struct {
	mu sync.RWMutex

	store  *table.DB
	table  *table.Table
	keydir keydir.Keydir // served to readers, replaced only after a commit
	flock  fio.FileLocker

	location string
	maxSize  int64
	closed   bool

	inserts      int64
	evictions    int64
	evictedBytes keydir.Total

	options options
	logger  *Logger
}

// Stats is a snapshot of the index
type Stats struct {
	Records       int
	Bytes         int64
	MaxBytes      int64
	OnDiskRecords int
	OnDiskBytes   int64

	// counted since Open
	Inserts      int64
	Evictions    int64
	EvictedBytes int64
}

// Open opens the index stored at location, creating the file and its table
// if needed. maxSize is the capacity in bytes and must be positive.
// The lock file <location>.flock stays on disk after Close; a failed Open removes it.
func Open(maxSize int64, location string, opts ...Option) (*DB, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.WithLocation(location)
	db, err := open(maxSize, location, o, logger)
	logger.LogOpen(maxSize, err)
	return db, err
}

func open(maxSize int64, location string, o options, logger *Logger) (*DB, error) {
	if maxSize <= 0 {
		return nil, ErrInvalidConfiguration
	}
	if err := checkLocation(location); err != nil {
		return nil, wrap(ErrStorageUnavailable, err)
	}

	db := &DB{
		location: location,
		maxSize:  maxSize,
		options:  o,
		logger:   logger,
	}

	if o.fileLock {
		fl, err := fio.Acquire(location)
		if errors.Is(err, fio.ErrLocked) {
			return nil, wrap(ErrLocationInUse, err)
		}
		if err != nil {
			return nil, wrap(ErrStorageUnavailable, err)
		}
		db.flock = fl
	}

	var err error
	db.store, err = table.Open(location, table.WithBusyTimeout(o.busyTimeout))
	if err != nil {
		db.abort()
		return nil, wrap(ErrStorageUnavailable, err)
	}
	db.table, err = db.store.CreateTableIfAbsent(recordSchema)
	if err != nil {
		db.abort()
		return nil, wrap(ErrStorageUnavailable, err)
	}

	if err = db.load(); err != nil {
		db.abort()
		return nil, err
	}
	return db, nil
}

// abort undoes a failed open, including the lock file it created
func (db *DB) abort() {
	if db.store != nil {
		_ = db.store.Close()
	}
	if db.flock != nil {
		if err := fio.Discard(db.flock); err != nil {
			db.logger.Warn("lock file not removed", "path", db.flock.Path(), "error", err)
		}
	}
}

// checkLocation rejects what SQLite would not treat as a plain database file
func checkLocation(location string) error {
	if location == "" {
		return errors.New("empty location")
	}
	if location == ":memory:" || strings.ContainsRune(location, '?') {
		return fmt.Errorf("%q is not a file path", location)
	}
	if base := filepath.Base(location); base == "." || base == ".." || os.IsPathSeparator(location[len(location)-1]) {
		return fmt.Errorf("%q names a directory", location)
	}

	info, err := os.Stat(location)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%q is a directory", location)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	parent, err := os.Stat(filepath.Dir(location))
	if err != nil {
		return err
	}
	if !parent.IsDir() {
		return fmt.Errorf("parent of %q is not a directory", location)
	}
	return nil
}

// load rebuilds the keydir from the table.
// Older rows sharing a hash with a newer one, rows without a hash or with a
// negative size and any overflow left by a larger capacity are dropped.
func (db *DB) load() error {
	rows, err := db.table.SelectAll(table.All())
	if err != nil {
		return storageFailure("load", err)
	}

	kd := keydir.NewBTree(db.options.degree)
	var shadowed []any
	for _, row := range rows {
		var record model.Record
		if err = db.options.codec.UnmarshalRecord(row, &record); err != nil {
			return storageFailure("load", fmt.Errorf("row %d: %w", row.Key, err))
		}
		if record.Hash == "" || record.Size < 0 {
			shadowed = append(shadowed, record.ID)
			continue
		}
		if prev, ok := kd.Get(record.Hash); ok {
			shadowed = append(shadowed, prev.ID)
		}
		kd.Put(record)
	}
	db.keydir = kd

	stats := kd.Stats()
	db.logger.LogRecovery(stats.Records, stats.Bytes, len(shadowed))
	if len(shadowed) == 0 && !kd.Bytes().Exceeds(db.maxSize) {
		return nil
	}

	var evicted []model.Record
	err = db.update(func(tx *table.Tx, staged keydir.Keydir) error {
		if err := deleteIDs(tx, shadowed); err != nil {
			return err
		}
		var err error
		evicted, err = db.enforceCapacity(tx, staged)
		return err
	})
	if err != nil {
		return storageFailure("load", err)
	}
	db.noteEviction(evicted)
	return nil
}

// update runs fn in one transaction against a staged copy of the keydir.
// The copy is published only once the transaction has committed.
func (db *DB) update(fn func(tx *table.Tx, staged keydir.Keydir) error) error {
	staged := db.keydir.Clone()
	err := db.table.Update(func(tx *table.Tx) error {
		return fn(tx, staged)
	})
	if err != nil {
		return err
	}
	db.keydir = staged
	return nil
}

// Insert tracks a new object and evicts the lowest priority records until
// the total size fits the capacity again, which may evict the new record
// itself. An empty hash is ignored. Inserting a tracked hash replaces its
// record with a new one.
func (db *DB) Insert(priority int64, hash string, size int64, onDisk bool) error {
	if hash == "" {
		return nil
	}
	if size < 0 {
		return ErrNegativeSize
	}

	start := time.Now()
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}

	var (
		record  model.Record
		evicted []model.Record
	)
	err := db.update(func(tx *table.Tx, staged keydir.Keydir) error {
		var err error
		record, err = db.insert(tx, staged, model.Record{
			Priority: priority,
			Hash:     hash,
			Size:     size,
			OnDisk:   onDisk,
		})
		if err != nil {
			return err
		}
		evicted, err = db.enforceCapacity(tx, staged)
		return err
	})
	err = storageFailure("insert", err)
	if err == nil {
		db.inserts++
		db.noteEviction(evicted)
	}

	db.logger.LogInsert(record.ID, hash, size, err)
	db.options.metrics.RecordInsert(time.Since(start), err)
	return err
}

// insert appends record, dropping the record it replaces
func (db *DB) insert(tx *table.Tx, kd keydir.Keydir, record model.Record) (model.Record, error) {
	if _, ok := kd.Get(record.Hash); ok {
		if _, err := tx.DeleteWhere(table.Eq(columnHash, record.Hash)); err != nil {
			return record, err
		}
		kd.Delete(record.Hash)
	}

	id, err := tx.Insert(db.options.codec.MarshalRecord(&record))
	if err != nil {
		return record, err
	}
	record.ID = id
	kd.Put(record)
	return record, nil
}

// MarkOnDisk records that the payload of hash now lives on disk.
// An untracked hash is ignored.
func (db *DB) MarkOnDisk(hash string) error {
	return db.SetOnDisk(hash, true)
}

// SetOnDisk sets the on-disk flag of hash. An untracked hash is ignored.
func (db *DB) SetOnDisk(hash string, onDisk bool) error {
	start := time.Now()
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}

	var found bool
	err := db.update(func(tx *table.Tx, staged keydir.Keydir) error {
		var err error
		found, err = db.setOnDisk(tx, staged, hash, onDisk)
		return err
	})
	err = storageFailure("mark", err)

	db.logger.LogMark(hash, onDisk, found, err)
	db.options.metrics.RecordMark(time.Since(start), err)
	return err
}

func (db *DB) setOnDisk(tx *table.Tx, kd keydir.Keydir, hash string, onDisk bool) (bool, error) {
	record, ok := kd.Get(hash)
	if !ok {
		return false, nil
	}
	if record.OnDisk == onDisk {
		return true, nil
	}

	record.OnDisk = onDisk
	value, ok := columnValue(db.options.codec.MarshalRecord(&record), columnOnDisk)
	if !ok {
		return true, fmt.Errorf("%w: no %s value", table.ErrRowShape, columnOnDisk)
	}
	if _, err := tx.UpdateWhere(table.Set(columnOnDisk, value), table.Eq(columnID, record.ID)); err != nil {
		return true, err
	}
	kd.Put(record)
	return true, nil
}

// columnValue returns the value the codec produced for column
func columnValue(row table.Row, column string) (any, bool) {
	if len(row.Values) != len(recordSchema.Columns) {
		return nil, false
	}
	for i, c := range recordSchema.Columns {
		if c.Name == column {
			return row.Values[i], true
		}
	}
	return nil, false
}

// Remove stops tracking hash. An untracked hash is ignored.
func (db *DB) Remove(hash string) error {
	start := time.Now()
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}

	var found bool
	err := db.update(func(tx *table.Tx, staged keydir.Keydir) error {
		var err error
		found, err = db.remove(tx, staged, hash)
		return err
	})
	err = storageFailure("remove", err)

	db.logger.LogRemove(hash, found, err)
	db.options.metrics.RecordRemove(time.Since(start), err)
	return err
}

func (db *DB) remove(tx *table.Tx, kd keydir.Keydir, hash string) (bool, error) {
	if _, ok := kd.Get(hash); !ok {
		return false, nil
	}
	if _, err := tx.DeleteWhere(table.Eq(columnHash, hash)); err != nil {
		return true, err
	}
	kd.Delete(hash)
	return true, nil
}

// Lookup returns the record tracked for hash, or an error of kind KindNotFound
func (db *DB) Lookup(hash string) (model.Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return model.Record{}, ErrClosed
	}

	record, ok := db.keydir.Get(hash)
	if !ok {
		return model.Record{}, ErrNotFound
	}
	return record, nil
}

// ListAll returns every tracked record by ascending id
func (db *DB) ListAll() ([]model.Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrClosed
	}

	records := make([]model.Record, 0, db.keydir.Len())
	db.keydir.Ascend(func(record model.Record) bool {
		records = append(records, record)
		return true
	})
	return records, nil
}

// Len returns the number of tracked records
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return 0
	}
	return db.keydir.Len()
}

// Size returns the sum of the sizes of tracked records
func (db *DB) Size() int64 {
	return db.Stats().Bytes
}

func (db *DB) MaxSize() int64 {
	return db.maxSize
}

func (db *DB) Location() string {
	return db.location
}

func (db *DB) Stats() Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s := Stats{
		MaxBytes:     db.maxSize,
		Inserts:      db.inserts,
		Evictions:    db.evictions,
		EvictedBytes: db.evictedBytes.Int64(),
	}
	if db.closed {
		return s
	}
	kd := db.keydir.Stats()
	s.Records = kd.Records
	s.Bytes = kd.Bytes
	s.OnDiskRecords = kd.OnDiskRecords
	s.OnDiskBytes = kd.OnDiskBytes
	return s
}

// Compact rebuilds the database file so space freed by evictions is returned to the filesystem
func (db *DB) Compact() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	return storageFailure("compact", db.store.Vacuum())
}

// Close releases the database file and its lock. Closing twice is a no-op.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	return storageFailure("close", db.release())
}

func (db *DB) release() error {
	var errs []error
	if db.store != nil {
		errs = append(errs, db.store.Close())
	}
	if db.flock != nil {
		errs = append(errs, db.flock.Unlock())
	}
	return errors.Join(errs...)
}

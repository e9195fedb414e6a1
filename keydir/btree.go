package keydir

import (
	"sync"

	"github.com/cqkv/prioritydb/model"
	"github.com/google/btree"
)

var _ Keydir = (*BTree)(nil)

const defaultDegree = 32

// hashItem orders records by hash
type hashItem struct {
	record model.Record
}

func (i hashItem) Less(than btree.Item) bool {
	return i.record.Hash < than.(hashItem).record.Hash
}

// rankItem orders records for eviction
type rankItem struct {
	record model.Record
}

func (i rankItem) Less(than btree.Item) bool {
	other := than.(rankItem).record
	return i.record.Less(&other)
}

// idItem orders records by insertion
type idItem struct {
	record model.Record
}

func (i idItem) Less(than btree.Item) bool {
	return i.record.ID < than.(idItem).record.ID
}

// BTree implement the keydir
type BTree struct {
	byHash *btree.BTree
	byRank *btree.BTree
	byID   *btree.BTree

	records       int
	onDiskRecords int
	bytes         Total
	onDiskBytes   Total

	lock *sync.RWMutex
}

func NewBTree(degree int) *BTree {
	if degree <= 0 {
		degree = defaultDegree
	}
	return &BTree{
		byHash: btree.New(degree),
		byRank: btree.New(degree),
		byID:   btree.New(degree),
		lock:   &sync.RWMutex{},
	}
}

func (bt *BTree) Put(record model.Record) {
	bt.lock.Lock()
	defer bt.lock.Unlock()

	if old := bt.byHash.ReplaceOrInsert(hashItem{record: record}); old != nil {
		prev := old.(hashItem).record
		bt.byRank.Delete(rankItem{record: prev})
		bt.byID.Delete(idItem{record: prev})
		bt.remove(prev)
	}
	bt.byRank.ReplaceOrInsert(rankItem{record: record})
	bt.byID.ReplaceOrInsert(idItem{record: record})
	bt.add(record)
}

func (bt *BTree) add(record model.Record) {
	bt.records++
	bt.bytes.Add(record.Size)
	if record.OnDisk {
		bt.onDiskRecords++
		bt.onDiskBytes.Add(record.Size)
	}
}

func (bt *BTree) remove(record model.Record) {
	bt.records--
	bt.bytes.Sub(record.Size)
	if record.OnDisk {
		bt.onDiskRecords--
		bt.onDiskBytes.Sub(record.Size)
	}
}

func (bt *BTree) Get(hash string) (model.Record, bool) {
	bt.lock.RLock()
	defer bt.lock.RUnlock()

	item := bt.byHash.Get(hashItem{record: model.Record{Hash: hash}})
	if item == nil {
		return model.Record{}, false
	}
	return item.(hashItem).record, true
}

func (bt *BTree) Delete(hash string) (model.Record, bool) {
	bt.lock.Lock()
	defer bt.lock.Unlock()

	item := bt.byHash.Delete(hashItem{record: model.Record{Hash: hash}})
	if item == nil {
		return model.Record{}, false
	}
	record := item.(hashItem).record
	bt.byRank.Delete(rankItem{record: record})
	bt.byID.Delete(idItem{record: record})
	bt.remove(record)
	return record, true
}

func (bt *BTree) AscendEviction(fn func(model.Record) bool) {
	bt.lock.RLock()
	defer bt.lock.RUnlock()

	bt.byRank.Ascend(func(item btree.Item) bool {
		return fn(item.(rankItem).record)
	})
}

func (bt *BTree) Ascend(fn func(model.Record) bool) {
	bt.lock.RLock()
	defer bt.lock.RUnlock()

	bt.byID.Ascend(func(item btree.Item) bool {
		return fn(item.(idItem).record)
	})
}

func (bt *BTree) Len() int {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	return bt.byHash.Len()
}

func (bt *BTree) Stats() Stats {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	return Stats{
		Records:       bt.records,
		Bytes:         bt.bytes.Int64(),
		OnDiskRecords: bt.onDiskRecords,
		OnDiskBytes:   bt.onDiskBytes.Int64(),
	}
}

func (bt *BTree) Bytes() Total {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	return bt.bytes
}

// Clone is lazy, nodes are copied on the first write to any of the trees
func (bt *BTree) Clone() Keydir {
	bt.lock.Lock()
	defer bt.lock.Unlock()

	return &BTree{
		byHash: bt.byHash.Clone(),
		byRank: bt.byRank.Clone(),
		byID:   bt.byID.Clone(),

		records:       bt.records,
		onDiskRecords: bt.onDiskRecords,
		bytes:         bt.bytes,
		onDiskBytes:   bt.onDiskBytes,

		lock: &sync.RWMutex{},
	}
}

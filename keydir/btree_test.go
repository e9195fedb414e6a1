package keydir

import (
	"fmt"
	"math"
	"testing"

	"github.com/cqkv/prioritydb/model"
	"github.com/stretchr/testify/assert"
)

func collect(visit func(func(model.Record) bool)) []int64 {
	var ids []int64
	visit(func(r model.Record) bool {
		ids = append(ids, r.ID)
		return true
	})
	return ids
}

func TestBTree_Put(t *testing.T) {
	bt := NewBTree(32)

	bt.Put(model.Record{ID: 1, Priority: 1, Hash: "hash", Size: 5})
	bt.Put(model.Record{ID: 2, Priority: 3, Hash: "hashbrowns", Size: 10, OnDisk: true})
	assert.Equal(t, 2, bt.Len())
	assert.Equal(t, Stats{Records: 2, Bytes: 15, OnDiskRecords: 1, OnDiskBytes: 10}, bt.Stats())

	record, ok := bt.Get("hash")
	assert.True(t, ok)
	assert.Equal(t, int64(1), record.ID)
	assert.Equal(t, int64(5), record.Size)
}

func TestBTree_PutReplace(t *testing.T) {
	bt := NewBTree(0)

	bt.Put(model.Record{ID: 1, Priority: 1, Hash: "a", Size: 5})
	bt.Put(model.Record{ID: 2, Priority: 9, Hash: "a", Size: 7, OnDisk: true})
	assert.Equal(t, 1, bt.Len())
	assert.Equal(t, Stats{Records: 1, Bytes: 7, OnDiskRecords: 1, OnDiskBytes: 7}, bt.Stats())
	assert.Equal(t, []int64{2}, collect(bt.Ascend))
	assert.Equal(t, []int64{2}, collect(bt.AscendEviction))

	// same id, flipped flag
	bt.Put(model.Record{ID: 2, Priority: 9, Hash: "a", Size: 7})
	assert.Equal(t, Stats{Records: 1, Bytes: 7}, bt.Stats())
	record, _ := bt.Get("a")
	assert.False(t, record.OnDisk)
}

func TestBTree_Delete(t *testing.T) {
	bt := NewBTree(32)
	bt.Put(model.Record{ID: 1, Priority: 1, Hash: "a", Size: 5})
	bt.Put(model.Record{ID: 2, Priority: 1, Hash: "b", Size: 6})

	record, ok := bt.Delete("a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), record.ID)

	_, ok = bt.Delete("a")
	assert.False(t, ok)
	_, ok = bt.Get("a")
	assert.False(t, ok)

	assert.Equal(t, Stats{Records: 1, Bytes: 6}, bt.Stats())
	assert.Equal(t, []int64{2}, collect(bt.AscendEviction))
}

func TestBTree_EvictionOrder(t *testing.T) {
	bt := NewBTree(2)
	bt.Put(model.Record{ID: 1, Priority: 5, Hash: "a"})
	bt.Put(model.Record{ID: 2, Priority: 1, Hash: "b"})
	bt.Put(model.Record{ID: 3, Priority: 5, Hash: "c"})
	bt.Put(model.Record{ID: 4, Priority: -2, Hash: "d"})
	bt.Put(model.Record{ID: 5, Priority: 1, Hash: "e"})

	assert.Equal(t, []int64{4, 2, 5, 1, 3}, collect(bt.AscendEviction))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, collect(bt.Ascend))
}

func TestBTree_Clone(t *testing.T) {
	bt := NewBTree(4)
	for i := 1; i <= 20; i++ {
		bt.Put(model.Record{ID: int64(i), Priority: int64(i % 3), Hash: fmt.Sprint(i), Size: 1})
	}

	clone := bt.Clone()
	clone.Delete("1")
	clone.Put(model.Record{ID: 21, Hash: "21", Size: 4})

	assert.Equal(t, 20, bt.Len())
	assert.Equal(t, int64(20), bt.Stats().Bytes)
	_, ok := bt.Get("21")
	assert.False(t, ok)
	_, ok = bt.Get("1")
	assert.True(t, ok)

	assert.Equal(t, 20, clone.Len())
	assert.Equal(t, int64(23), clone.Stats().Bytes)
}

func TestBTree_AscendStop(t *testing.T) {
	bt := NewBTree(32)
	for i := 1; i <= 5; i++ {
		bt.Put(model.Record{ID: int64(i), Hash: fmt.Sprint(i)})
	}
	var seen int
	bt.Ascend(func(model.Record) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)
}

func TestBTree_LargeSizes(t *testing.T) {
	bt := NewBTree(32)
	bt.Put(model.Record{ID: 1, Hash: "a", Size: math.MaxInt64, OnDisk: true})
	bt.Put(model.Record{ID: 2, Hash: "b", Size: math.MaxInt64, OnDisk: true})

	assert.Equal(t, Stats{Records: 2, Bytes: math.MaxInt64, OnDiskRecords: 2, OnDiskBytes: math.MaxInt64}, bt.Stats())
	assert.True(t, bt.Bytes().Exceeds(math.MaxInt64))

	clone := bt.Clone()
	clone.Delete("a")
	assert.False(t, clone.Bytes().Exceeds(math.MaxInt64))
	assert.Equal(t, int64(math.MaxInt64), clone.Stats().Bytes)
	assert.True(t, bt.Bytes().Exceeds(math.MaxInt64))
}

package keydir

import (
	"math"
	"math/bits"
)

// Total is a byte count that cannot wrap: it holds the sum of any number of
// non-negative int64 sizes.
type Total struct {
	hi, lo uint64
}

// Add adds size, which must not be negative
func (t *Total) Add(size int64) {
	var carry uint64
	t.lo, carry = bits.Add64(t.lo, uint64(size), 0)
	t.hi += carry
}

// Sub removes a size previously added
func (t *Total) Sub(size int64) {
	var borrow uint64
	t.lo, borrow = bits.Sub64(t.lo, uint64(size), 0)
	t.hi -= borrow
}

// Exceeds reports whether the total is greater than limit
func (t Total) Exceeds(limit int64) bool {
	if limit < 0 {
		return t.hi > 0 || t.lo > 0
	}
	return t.hi > 0 || t.lo > uint64(limit)
}

// Int64 returns the total, capped at math.MaxInt64
func (t Total) Int64() int64 {
	if t.hi > 0 || t.lo > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(t.lo)
}

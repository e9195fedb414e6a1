package model

// Record is the metadata tracked for one cached object
type Record struct {
	ID       int64 // assigned by the store, strictly increasing
	Priority int64 // lower priority is evicted first
	Hash     string
	Size     int64 // bytes counted against the capacity
	OnDisk   bool  // payload lives in the durable tier
}

// Less reports whether r is evicted before than
// records are ordered by priority, ties broken by the older id
func (r *Record) Less(than *Record) bool {
	if r.Priority != than.Priority {
		return r.Priority < than.Priority
	}
	return r.ID < than.ID
}

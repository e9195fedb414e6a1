// Package prioritydb is the bookkeeping layer of a cache: a persistent,
// size-bounded index of content objects keyed by hash.
//
// Each record carries a priority, a size and whether its payload is on disk.
// The index never stores payload bytes. When the summed size of the records
// would exceed the capacity given to Open, the lowest priority records are
// evicted, the oldest first among equal priorities, until it fits again.
//
// Records live in the prism_data table of a SQLite file, so the index
// survives restarts and can be inspected with any SQLite tool:
//
//	db, err := prioritydb.Open(1<<30, "/var/cache/prism/index.db")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	if err := db.Insert(priority, hash, size, false); err != nil {
//		return err
//	}
//	// once the payload reached the durable tier
//	err = db.MarkOnDisk(hash)
package prioritydb

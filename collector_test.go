package prioritydb

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	db := openTestDB(t, 10, testLocation(t))
	require.NoError(t, db.Insert(1, "a", 6, true))
	require.NoError(t, db.Insert(2, "b", 3, false))
	require.NoError(t, db.Insert(3, "c", 4, false))

	collector := NewCollector(db)
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(collector))

	expected := `
# HELP prioritydb_bytes Sum of the sizes of tracked records
# TYPE prioritydb_bytes gauge
prioritydb_bytes 7
# HELP prioritydb_evicted_bytes_total Bytes evicted since open
# TYPE prioritydb_evicted_bytes_total counter
prioritydb_evicted_bytes_total 6
# HELP prioritydb_evictions_total Records evicted since open
# TYPE prioritydb_evictions_total counter
prioritydb_evictions_total 1
# HELP prioritydb_inserts_total Records inserted since open
# TYPE prioritydb_inserts_total counter
prioritydb_inserts_total 3
# HELP prioritydb_max_bytes Configured capacity
# TYPE prioritydb_max_bytes gauge
prioritydb_max_bytes 10
# HELP prioritydb_on_disk_bytes Sum of the sizes of records whose payload is on disk
# TYPE prioritydb_on_disk_bytes gauge
prioritydb_on_disk_bytes 0
# HELP prioritydb_on_disk_records Number of tracked records whose payload is on disk
# TYPE prioritydb_on_disk_records gauge
prioritydb_on_disk_records 0
# HELP prioritydb_records Number of tracked records
# TYPE prioritydb_records gauge
prioritydb_records 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))
	assert.Equal(t, 8, testutil.CollectAndCount(collector))
}

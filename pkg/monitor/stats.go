package monitor

import (
	"sync/atomic"
	"time"
)

// WorkloadStats counts tree operations. It satisfies tree.Observer.
type WorkloadStats struct {
	InsertCount    uint64
	InsertErrors   uint64
	InsertNanos    uint64
	BatchCount     uint64
	BatchEntries   uint64
	BatchErrors    uint64
	RemovedCount   uint64
	RemoveCalls    uint64
	SplitCount     uint64
	ClearCount     uint64
	TraversalCount uint64
	ConflictCount  uint64
}

func NewWorkloadStats() *WorkloadStats {
	return &WorkloadStats{}
}

func (ws *WorkloadStats) RecordInsert(d time.Duration, err error) {
	atomic.AddUint64(&ws.InsertCount, 1)
	atomic.AddUint64(&ws.InsertNanos, uint64(d.Nanoseconds()))
	if err != nil {
		atomic.AddUint64(&ws.InsertErrors, 1)
	}
}

func (ws *WorkloadStats) RecordBatchInsert(count int, _ time.Duration, err error) {
	atomic.AddUint64(&ws.BatchCount, 1)
	if err != nil {
		atomic.AddUint64(&ws.BatchErrors, 1)
		return
	}
	atomic.AddUint64(&ws.BatchEntries, uint64(count))
}

func (ws *WorkloadStats) RecordRemove(removed int) {
	atomic.AddUint64(&ws.RemoveCalls, 1)
	atomic.AddUint64(&ws.RemovedCount, uint64(removed))
}

func (ws *WorkloadStats) RecordSplit(splits int) {
	atomic.AddUint64(&ws.SplitCount, uint64(splits))
}

func (ws *WorkloadStats) RecordClear(int) {
	atomic.AddUint64(&ws.ClearCount, 1)
}

func (ws *WorkloadStats) RecordTraversal() {
	atomic.AddUint64(&ws.TraversalCount, 1)
}

func (ws *WorkloadStats) RecordConflict() {
	atomic.AddUint64(&ws.ConflictCount, 1)
}

// GetReadWriteRatio is traversals per write, where writes are single inserts,
// batch loads and remove calls.
func (ws *WorkloadStats) GetReadWriteRatio() float64 {
	reads := atomic.LoadUint64(&ws.TraversalCount)
	writes := atomic.LoadUint64(&ws.InsertCount) +
		atomic.LoadUint64(&ws.BatchCount) +
		atomic.LoadUint64(&ws.RemoveCalls)

	if writes == 0 {
		if reads > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(reads) / float64(writes)
}

// AvgInsertLatency is the mean duration of single inserts.
func (ws *WorkloadStats) AvgInsertLatency() time.Duration {
	n := atomic.LoadUint64(&ws.InsertCount)
	if n == 0 {
		return 0
	}
	return time.Duration(atomic.LoadUint64(&ws.InsertNanos) / n)
}

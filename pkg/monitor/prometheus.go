package monitor

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

type counterDesc struct {
	desc  *prometheus.Desc
	value func(*WorkloadStats) uint64
}

// Collector exports a WorkloadStats as Prometheus counters. Values are read
// at scrape time, so the tree hot path only pays for atomic adds.
type Collector struct {
	stats    *WorkloadStats
	counters []counterDesc
	ratio    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector wraps stats. constLabels are attached to every series, e.g. to
// tell several trees apart.
func NewCollector(stats *WorkloadStats, constLabels prometheus.Labels) *Collector {
	counter := func(name, help string, field func(*WorkloadStats) *uint64) counterDesc {
		return counterDesc{
			desc: prometheus.NewDesc(prometheus.BuildFQName("regiontree", "", name), help, nil, constLabels),
			value: func(ws *WorkloadStats) uint64 {
				return atomic.LoadUint64(field(ws))
			},
		}
	}

	return &Collector{
		stats: stats,
		counters: []counterDesc{
			counter("inserts_total", "Single inserts attempted.", func(ws *WorkloadStats) *uint64 { return &ws.InsertCount }),
			counter("insert_errors_total", "Single inserts rejected.", func(ws *WorkloadStats) *uint64 { return &ws.InsertErrors }),
			counter("batch_loads_total", "Bulk loads attempted.", func(ws *WorkloadStats) *uint64 { return &ws.BatchCount }),
			counter("batch_entries_total", "Entries added by successful bulk loads.", func(ws *WorkloadStats) *uint64 { return &ws.BatchEntries }),
			counter("batch_errors_total", "Bulk loads rejected.", func(ws *WorkloadStats) *uint64 { return &ws.BatchErrors }),
			counter("removed_entries_total", "Entries removed.", func(ws *WorkloadStats) *uint64 { return &ws.RemovedCount }),
			counter("remove_calls_total", "Remove operations issued.", func(ws *WorkloadStats) *uint64 { return &ws.RemoveCalls }),
			counter("node_splits_total", "Nodes split after overflowing.", func(ws *WorkloadStats) *uint64 { return &ws.SplitCount }),
			counter("clears_total", "Clear operations.", func(ws *WorkloadStats) *uint64 { return &ws.ClearCount }),
			counter("traversals_total", "Lazy traversals started.", func(ws *WorkloadStats) *uint64 { return &ws.TraversalCount }),
			counter("conflicts_total", "Traversals aborted by a concurrent modification.", func(ws *WorkloadStats) *uint64 { return &ws.ConflictCount }),
		},
		ratio: prometheus.NewDesc(
			prometheus.BuildFQName("regiontree", "", "read_write_ratio"),
			"Traversals per write operation.", nil, constLabels),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, cd := range c.counters {
		ch <- cd.desc
	}
	ch <- c.ratio
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, cd := range c.counters {
		ch <- prometheus.MustNewConstMetric(cd.desc, prometheus.CounterValue, float64(cd.value(c.stats)))
	}
	ch <- prometheus.MustNewConstMetric(c.ratio, prometheus.GaugeValue, c.stats.GetReadWriteRatio())
}

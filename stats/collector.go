package stats

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports a Stats instance's counters as Prometheus metrics,
// mirroring stats/common_prom.go's Describe/Collect pattern in the teacher
// repo, trimmed to exactly the counters spec §6 names.
type Collector struct {
	stats *Stats
	rank  string
	descs map[string]*prometheus.Desc
}

// NewCollector builds a Collector for stats, labeling every metric with
// this process's rank.
func NewCollector(stats *Stats, rank int) *Collector {
	rankStr := strconv.Itoa(rank)
	mk := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("shuffle_"+name, help, nil, prometheus.Labels{"rank": rankStr})
	}
	return &Collector{
		stats: stats,
		rank:  rankStr,
		descs: map[string]*prometheus.Desc{
			"nms":     mk("nms", "messages sent"),
			"nmd":     mk("nmd", "deliveries acked"),
			"nmr":     mk("nmr", "messages received"),
			"nps":     mk("nps", "send count"),
			"accqsz":  mk("accqsz", "accumulated outbox queue depth"),
			"minfill": mk("outbox_min_fill", "minimum per-outbox fill observed"),
			"maxfill": mk("outbox_max_fill", "maximum per-outbox fill observed"),
		},
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.descs["nms"], prometheus.CounterValue, float64(snap.NMS))
	ch <- prometheus.MustNewConstMetric(c.descs["nmd"], prometheus.CounterValue, float64(snap.NMD))
	ch <- prometheus.MustNewConstMetric(c.descs["nmr"], prometheus.CounterValue, float64(snap.NMR))
	ch <- prometheus.MustNewConstMetric(c.descs["nps"], prometheus.CounterValue, float64(snap.NPS))
	ch <- prometheus.MustNewConstMetric(c.descs["accqsz"], prometheus.CounterValue, float64(snap.AccQSZ))
	ch <- prometheus.MustNewConstMetric(c.descs["minfill"], prometheus.GaugeValue, float64(snap.MinFill))
	ch <- prometheus.MustNewConstMetric(c.descs["maxfill"], prometheus.GaugeValue, float64(snap.MaxFill))
}

// Package stats tracks and exports the counters named in spec §6: nms
// (messages sent), nmd (deliveries acked), nmr (messages received), the
// min/max of per-outbox queue sizes, the accumulated queue depth accqsz,
// and the send count nps.
package stats

import (
	"go.uber.org/atomic"
)

// Stats is one instance per ShuffleCtx, shared by the dispatcher(s), the
// delivery sink, the trace log, and the Prometheus Collector.
type Stats struct {
	nms    atomic.Int64
	nmd    atomic.Int64
	nmr    atomic.Int64
	nps    atomic.Int64
	accqsz atomic.Int64
	minFill atomic.Int64
	maxFill atomic.Int64
}

// New returns a zeroed Stats instance. minFill starts at the max possible
// int64 so the first observed fill always lowers it.
func New() *Stats {
	s := &Stats{}
	s.minFill.Store(int64(^uint64(0) >> 1))
	return s
}

func (s *Stats) IncSent(n int64)      { s.nms.Add(n) }
func (s *Stats) IncDelivered(n int64) { s.nmd.Add(n) }
func (s *Stats) IncReceived(n int64)  { s.nmr.Add(n) }
func (s *Stats) IncSends()            { s.nps.Inc() }

// ObserveFill records an outbox's fill at flush time, updating the
// lifetime min/max and the accumulated queue depth.
func (s *Stats) ObserveFill(fill int64) {
	s.accqsz.Add(fill)
	for {
		cur := s.minFill.Load()
		if fill >= cur || s.minFill.CAS(cur, fill) {
			break
		}
	}
	for {
		cur := s.maxFill.Load()
		if fill <= cur || s.maxFill.CAS(cur, fill) {
			break
		}
	}
}

// Snapshot is a point-in-time, read-only copy of every counter.
type Snapshot struct {
	NMS    int64
	NMD    int64
	NMR    int64
	NPS    int64
	AccQSZ int64
	MinFill int64
	MaxFill int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		NMS:     s.nms.Load(),
		NMD:     s.nmd.Load(),
		NMR:     s.nmr.Load(),
		NPS:     s.nps.Load(),
		AccQSZ:  s.accqsz.Load(),
		MinFill: s.minFill.Load(),
		MaxFill: s.maxFill.Load(),
	}
}

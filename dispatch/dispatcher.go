// Package dispatch implements the two dispatch topologies of spec §4.4 and
// §4.5 (the flat NN shuffler and the hierarchical 3H shuffler) behind one
// shared Dispatcher capability, plus the epoch coordinator of spec §4.6.
//
// Dual topology is modeled as a tagged variant over a common capability
// interface, per the re-architecture hint of spec §9: no virtual dispatch
// is needed beyond this one boundary.
package dispatch

import (
	"context"

	"github.com/stpalmer21/deltafs-vpic-preload/placement"
	"github.com/stpalmer21/deltafs-vpic-preload/sink"
	"github.com/stpalmer21/deltafs-vpic-preload/stats"
	"github.com/stpalmer21/deltafs-vpic-preload/transport"
)

// Barrier stands in for the MPI world-wide barrier named an external
// collaborator in spec §1 (MPI world bootstrap is out of scope). A nil
// Barrier is treated as a no-op; production wiring supplies MPI_Barrier
// (or equivalent) here.
type Barrier func(ctx context.Context) error

// Dispatcher is the capability every topology exposes to the epoch
// coordinator and to the preload shim's write path: write, epoch_start,
// epoch_end, finalize, stats — exactly the boundary named in spec §9.
type Dispatcher interface {
	Write(ctx context.Context, name string, payload []byte, epoch uint16) error
	EpochStart(ctx context.Context, epoch uint16) error
	EpochEnd(ctx context.Context, epoch uint16) error
	Finalize(ctx context.Context) error
	Stats() stats.Snapshot
}

// Deps bundles the dependencies every Dispatcher implementation is built
// from — the injected object graph the re-architecture hint of spec §9
// calls for, in place of the original's global pctx/sctx state.
type Deps struct {
	SelfRank        int
	WorldSize       int
	Oracle          *placement.Oracle
	Transport       transport.Transport
	Sink            *sink.Sink
	Tracer          *sink.Tracer // nil unless test mode is on; see Tracer.TraceSend
	Stats           *stats.Stats
	BatchCap        int  // per-outbox byte cap before an in-place flush
	FlushIntervalMS int  // background flusher wake period
	OutboxAgeMS     int  // age since last append that forces a flush
	ForceSync       bool // see DESIGN.md Open Question resolution #3
	ParanoidBarrier bool
	Barrier         Barrier
}

func (d *Deps) barrier(ctx context.Context) error {
	if d.Barrier == nil {
		return nil
	}
	return d.Barrier(ctx)
}

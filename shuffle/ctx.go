// Package shuffle is the composition root of the shuffle dispatch
// subsystem: it owns every subsystem handle (config, placement oracle,
// transport, dispatcher, sink, stats) and wires them together exactly once,
// at process start, the way ais/daemon.go owns and wires the teacher's own
// subsystem handles for the lifetime of a process.
//
// ShuffleCtx is meant to be built once per rank and driven by the preload
// shim through Write/EpochStart/EpochEnd/Finalize; Global exists only as the
// thin wrapper the shim calls into across its FFI boundary — nothing in
// dispatch/, wire/, placement/, sink/, or transport/ ever consults Global
// itself.
package shuffle

import (
	"context"
	"os"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn"
	"github.com/stpalmer21/deltafs-vpic-preload/dispatch"
	"github.com/stpalmer21/deltafs-vpic-preload/nlog"
	"github.com/stpalmer21/deltafs-vpic-preload/placement"
	"github.com/stpalmer21/deltafs-vpic-preload/sink"
	"github.com/stpalmer21/deltafs-vpic-preload/stats"
	"github.com/stpalmer21/deltafs-vpic-preload/transport"
)

// ShuffleCtx is the per-rank object graph: one instance lives for the
// lifetime of a simulation run.
type ShuffleCtx struct {
	cfg        *cmn.Config
	selfRank   int
	worldSize  int
	oracle     *placement.Oracle
	transport  transport.Transport
	dispatcher dispatch.Dispatcher
	sink       *sink.Sink
	stats      *stats.Stats
	collector  *stats.Collector
}

// Deps bundles everything a caller must supply that LoadConfig cannot
// derive on its own: the rank's identity, the transport handle bound to it,
// the storage Writer records are ultimately delivered to, and — for 3H
// only — the pre-built Nexus naming this rank's node partition. Barrier
// stands in for the MPI world barrier named an external collaborator in
// spec.md §1.
type Deps struct {
	SelfRank  int
	WorldSize int
	Transport transport.Transport
	Writer    sink.Writer
	Nexus     *dispatch.Nexus // required iff cfg.Topology == cmn.ThreeHop
	Barrier   dispatch.Barrier
}

// New builds a ShuffleCtx from a parsed Config and the Deps a caller (the
// preload shim's init path, or a bench harness) supplies. It is the direct
// translation of the original preload's per-rank init sequence — build the
// placement oracle, open the delivery sink, then hand both to whichever
// dispatcher the config selects — except expressed as explicit
// construction instead of a sequence of global side effects.
func New(cfg *cmn.Config, d Deps) (*ShuffleCtx, error) {
	if cfg.PLFSDirRoot == "" {
		return nil, cmn.NewFault(cmn.ErrConfig, errMissingPLFSRoot())
	}

	oracle := placement.New(d.WorldSize, cfg.VirtualFactor, cfg.Bypass)

	var tracer *sink.Tracer
	if cfg.TestMode && cfg.TraceLogPath != "" {
		f, err := os.OpenFile(cfg.TraceLogPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cmn.NewFault(cmn.ErrConfig, err)
		}
		tracer = sink.NewTracer(f)
	}
	sk := sink.New(cfg.PLFSDirRoot, d.Writer, tracer)

	st := stats.New()
	deps := dispatch.Deps{
		SelfRank:        d.SelfRank,
		WorldSize:       d.WorldSize,
		Oracle:          oracle,
		Transport:       d.Transport,
		Sink:            sk,
		Tracer:          tracer,
		Stats:           st,
		FlushIntervalMS: cfg.FlushIntervalMS,
		OutboxAgeMS:     cfg.OutboxAgeThreshold,
		ForceSync:       cfg.ForceSync,
		ParanoidBarrier: cfg.ParanoidBarrier,
		Barrier:         d.Barrier,
	}

	var disp dispatch.Dispatcher
	switch cfg.Topology {
	case cmn.ThreeHop:
		if d.Nexus == nil {
			return nil, cmn.NewFault(cmn.ErrConfig, errMissingNexus())
		}
		disp = dispatch.NewThreeHop(deps, d.Nexus)
	default:
		disp = dispatch.NewNN(deps)
	}

	ctx := &ShuffleCtx{
		cfg:        cfg,
		selfRank:   d.SelfRank,
		worldSize:  d.WorldSize,
		oracle:     oracle,
		transport:  d.Transport,
		dispatcher: disp,
		sink:       sk,
		stats:      st,
	}
	ctx.collector = stats.NewCollector(st, d.SelfRank)
	nlog.Info("shuffle: rank %d/%d topology=%s protocol=%s", d.SelfRank, d.WorldSize, cfg.Topology, cfg.PlacementProtocol)
	return ctx, nil
}

func (c *ShuffleCtx) Write(ctx context.Context, name string, payload []byte, epoch uint16) error {
	return c.dispatcher.Write(ctx, name, payload, epoch)
}

func (c *ShuffleCtx) EpochStart(ctx context.Context, epoch uint16) error {
	return c.dispatcher.EpochStart(ctx, epoch)
}

func (c *ShuffleCtx) EpochEnd(ctx context.Context, epoch uint16) error {
	return c.dispatcher.EpochEnd(ctx, epoch)
}

func (c *ShuffleCtx) Finalize(ctx context.Context) error {
	return c.dispatcher.Finalize(ctx)
}

// Stats returns a point-in-time snapshot of this rank's counters.
func (c *ShuffleCtx) Stats() stats.Snapshot { return c.dispatcher.Stats() }

// Collector exposes this rank's counters as a prometheus.Collector, for a
// caller that registers it against its own registry (see cmd/shuffle).
func (c *ShuffleCtx) Collector() *stats.Collector { return c.collector }

// Oracle exposes the placement oracle this context was built with, mainly
// so a bench driver can pre-compute expected placement without duplicating
// ShuffleCtx's construction.
func (c *ShuffleCtx) Oracle() *placement.Oracle { return c.oracle }

func (c *ShuffleCtx) SelfRank() int  { return c.selfRank }
func (c *ShuffleCtx) WorldSize() int { return c.worldSize }

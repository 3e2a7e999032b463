package dispatch

import (
	"context"

	"github.com/stpalmer21/deltafs-vpic-preload/stats"
)

// NN is the flat neighbor-to-neighbor dispatcher of spec §4.4: one outbox
// per remote rank, every write exactly one hop from its final destination.
// It is the degenerate, single-hop case of the shared engine.
type NN struct {
	e *engine
}

// NewNN builds an NN dispatcher from deps, applying the defaults named in
// spec §4.4/§6 for any zero-valued tuning knob, and starts the background
// flusher goroutine.
func NewNN(deps Deps) *NN {
	return &NN{e: newEngine(deps, identityRouter{}, false /* forward */)}
}

func (n *NN) Write(ctx context.Context, name string, payload []byte, epoch uint16) error {
	return n.e.write(ctx, name, payload, epoch)
}

func (n *NN) EpochStart(ctx context.Context, epoch uint16) error { return n.e.epochStart(ctx, epoch) }
func (n *NN) EpochEnd(ctx context.Context, epoch uint16) error   { return n.e.epochEnd(ctx, epoch) }
func (n *NN) Finalize(ctx context.Context) error                { return n.e.finalize(ctx) }
func (n *NN) Stats() stats.Snapshot                              { return n.e.stats() }

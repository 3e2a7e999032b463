package dispatch

import (
	"context"

	"github.com/stpalmer21/deltafs-vpic-preload/stats"
)

// ThreeHop is the hierarchical 3H dispatcher of spec §4.5: sender -> local
// representative -> remote representative -> receiver, collapsing
// inter-node fan-out from O(N) to O(sqrt(N)) connections. It shares all of
// its outbox/flush/epoch machinery with NN via the common engine; only the
// next-hop routing decision (nexusRouter) and the forward-on-receive
// behavior differ.
type ThreeHop struct {
	e     *engine
	nexus *Nexus
}

// NewThreeHop builds a 3H dispatcher from deps and a pre-built Nexus.
func NewThreeHop(deps Deps, nexus *Nexus) *ThreeHop {
	return &ThreeHop{
		e:     newEngine(deps, nexusRouter{nexus: nexus}, true /* forward */),
		nexus: nexus,
	}
}

func (t *ThreeHop) Write(ctx context.Context, name string, payload []byte, epoch uint16) error {
	return t.e.write(ctx, name, payload, epoch)
}

// EpochStart resets per-epoch counters, matching NN's epoch_start by
// symmetry — the 3H body is TODO in the original source (spec §9's open
// question); this module implements the intended symmetric behavior.
func (t *ThreeHop) EpochStart(ctx context.Context, epoch uint16) error {
	return t.e.epochStart(ctx, epoch)
}

// EpochEnd flushes all three hop queues (every outbox this rank holds,
// whether it is forwarding to a representative or delivering directly) and
// awaits every in-flight future, by symmetry with NN (spec §9's open
// question resolution).
func (t *ThreeHop) EpochEnd(ctx context.Context, epoch uint16) error {
	return t.e.epochEnd(ctx, epoch)
}

func (t *ThreeHop) Finalize(ctx context.Context) error { return t.e.finalize(ctx) }
func (t *ThreeHop) Stats() stats.Snapshot              { return t.e.stats() }

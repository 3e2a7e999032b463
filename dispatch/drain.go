package dispatch

import "context"

// DrainEpochEnd calls EpochEnd once on every dispatcher in all, then
// repeats that full pass until every dispatcher has been visited MaxHops
// times in total.
//
// A single pass is not enough to drain a forwarding topology (3H) when,
// as every caller of this function does, every rank's EpochEnd is called
// exactly once per pass in a fixed order: a representative's own EpochEnd
// call flushes only the outbox data that already existed at the moment
// its turn in the pass is reached, so a node-mate visited later in the
// same pass still has its forward sitting, unflushed, in the
// representative's outbox table after the representative has already
// returned (see dispatch/engine.go's onReceive, which only buffers a
// forwarded frame via enqueue, never flushes it). Repeating the full pass
// guarantees every frame advances by at least one hop per pass — because
// any outbox holding data at the start of a pass is unconditionally
// flushed during that rank's turn within the pass — and since no frame
// ever takes more than MaxHops hops to reach its destination (see
// router_test.go's TestNexusRouterHopBound), MaxHops passes fully drain
// the cluster regardless of the order ranks are visited in or which ranks
// are representatives. NN, which never forwards, is already fully drained
// after its first pass; the remaining passes are no-ops for it.
func DrainEpochEnd(ctx context.Context, epoch uint16, all []Dispatcher) error {
	for pass := 0; pass < MaxHops; pass++ {
		for _, d := range all {
			if err := d.EpochEnd(ctx, epoch); err != nil {
				return err
			}
		}
	}
	return nil
}

// engine.go holds the dispatch machinery shared by NN and 3H: both
// topologies are, at bottom, "resolve a next-hop rank, coalesce a frame
// into that rank's outbox, flush on fill/age/epoch boundary, await
// in-flight sends in bulk at epoch_end." They differ only in how the
// next-hop is chosen (see router.go) and in whether a received frame not
// addressed to the local rank should be forwarded (3H) or is itself a
// wire-corruption fault (NN, which never forwards).
package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn"
	"github.com/stpalmer21/deltafs-vpic-preload/stats"
	"github.com/stpalmer21/deltafs-vpic-preload/wire"
)

const defaultBatchCap = 4096

type engine struct {
	deps   Deps
	router hopRouter
	// forward is true for topologies where a frame addressed elsewhere,
	// once received, must be re-posted toward its final destination (3H);
	// false means receiving a misdirected frame is a wire-corruption fault
	// (NN, which only ever sends exactly where it means to deliver).
	forward bool

	outbox  *outboxTable
	sem     *semaphore.Weighted
	pending *errgroup.Group
	pmu     sync.Mutex

	flusherStop chan struct{}
	flusherDone chan struct{}

	mu     sync.Mutex
	epoch  uint16
	closed bool
}

func newEngine(deps Deps, router hopRouter, forward bool) *engine {
	if deps.BatchCap <= 0 {
		deps.BatchCap = defaultBatchCap
	}
	if deps.FlushIntervalMS <= 0 {
		deps.FlushIntervalMS = 20
	}
	if deps.OutboxAgeMS <= 0 {
		deps.OutboxAgeMS = 50
	}
	maxInFlight := deps.Transport.MaxInFlight()
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	e := &engine{
		deps:        deps,
		router:      router,
		forward:     forward,
		outbox:      newOutboxTable(deps.BatchCap),
		sem:         semaphore.NewWeighted(int64(maxInFlight)),
		pending:     &errgroup.Group{},
		flusherStop: make(chan struct{}),
		flusherDone: make(chan struct{}),
	}
	e.deps.Transport.RegisterReceiver(e.onReceive)
	go e.flusherLoop()
	return e
}

// write resolves finalDst via placement, then the next hop via the
// engine's router; a next hop equal to self is the self-loop shortcut of
// spec invariant #7 (no transport send occurs) whether that happens
// because finalDst is self (NN and 3H both) or, for 3H, because routing
// momentarily lands back on self (it never does, by construction of
// nexusRouter, but the check is kept as the single source of truth for the
// shortcut either way).
func (e *engine) write(ctx context.Context, name string, payload []byte, epoch uint16) error {
	finalDst := e.deps.Oracle.Destination(name)
	nextHop := e.router.nextHop(e.deps.SelfRank, finalDst)

	e.traceSend(name, payload, epoch, finalDst)
	if nextHop == e.deps.SelfRank {
		return e.deliverLocal(name, payload, epoch, e.deps.SelfRank)
	}
	return e.enqueue(ctx, nextHop, finalDst, name, payload, epoch, true /* origin */)
}

// traceSend appends the [SEND] trace log line of spec §6, mirroring
// _3h_shuffle_write logging it unconditionally — including the dst == src
// self-loop case — immediately after resolving the placement target and
// before handing the frame to the outbox or the local sink. A nil Tracer
// (production mode) makes this a no-op.
func (e *engine) traceSend(name string, payload []byte, epoch uint16, finalDst int) {
	if e.deps.Tracer == nil {
		return
	}
	path := e.deps.Sink.Path(name)
	_ = e.deps.Tracer.TraceSend(path, payload, epoch, e.deps.SelfRank, finalDst)
}

// deliverLocal is the self-loop shortcut of spec invariant #7: nms and nmr
// both count it as one message (so the epoch-drain law of spec §8 still
// balances across the cluster), but nps — the count of physical transport
// sends — is deliberately left untouched, since no network send occurs.
func (e *engine) deliverLocal(name string, payload []byte, epoch uint16, src int) error {
	if err := e.deps.Sink.Deliver(name, payload, epoch, src, e.deps.SelfRank); err != nil {
		return err
	}
	e.deps.Stats.IncSent(1)
	e.deps.Stats.IncReceived(1)
	e.deps.Stats.IncDelivered(1)
	return nil
}

// enqueue coalesces one frame into nextHop's outbox. origin is true only
// when this frame is being posted by its originating rank (the Write call
// that first produced it); a forwarding rank (3H, re-posting a received
// frame toward its final destination) passes origin=false so the same
// logical message is not counted as "sent" more than once toward the nms
// side of the epoch-drain law of spec §8, no matter how many hops it takes,
// and is not traced again (the [SEND] line is logged once, by the
// originating rank, per spec §6).
func (e *engine) enqueue(ctx context.Context, nextHop, finalDst int, name string, payload []byte, epoch uint16, origin bool) error {
	frame := &wire.Frame{Src: uint32(e.deps.SelfRank), Dst: uint32(finalDst), Name: name, Payload: payload, Epoch: epoch}
	pbuf := wire.GetBuffer()
	defer wire.PutBuffer(pbuf)
	n, err := wire.Encode(frame, *pbuf)
	if err != nil {
		return err
	}
	encoded := (*pbuf)[:n]

	ob := e.outbox.get(nextHop)
	ob.mu.Lock()
	if !ob.fits(n) {
		data, msgs := ob.drainLocked()
		ob.mu.Unlock()
		if data != nil {
			if err := e.flush(ctx, nextHop, data, msgs); err != nil {
				return err
			}
		}
		ob.mu.Lock()
	}
	ob.appendLocked(encoded, epoch)
	ob.mu.Unlock()
	if origin {
		e.deps.Stats.IncSent(1)
	}
	return nil
}

// flush hands a filled outbox buffer to the transport, blocking the caller
// on the engine's own pending-sends semaphore (the back-pressure point of
// spec §5) rather than on the send itself.
func (e *engine) flush(ctx context.Context, nextHop int, data []byte, msgs int) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return cmn.NewFault(cmn.ErrSendTimeout, err)
	}
	fut, err := e.deps.Transport.SendOneWay(ctx, nextHop, data)
	if err != nil {
		e.sem.Release(1)
		return cmn.NewFault(cmn.ErrTransportSend, err)
	}
	e.deps.Stats.ObserveFill(int64(len(data)))
	e.deps.Stats.IncSends()

	e.pmu.Lock()
	g := e.pending
	e.pmu.Unlock()
	g.Go(func() error {
		defer e.sem.Release(1)
		return fut.Wait(ctx)
	})
	return nil
}

// onReceive is registered with the transport as this rank's receive
// callback. Each frame in the batch is either a terminal delivery (its
// decoded dst is this rank) or, for a forwarding topology, re-enqueued
// toward its final destination.
func (e *engine) onReceive(carrierSrc, _ int, payload []byte) {
	buf := payload
	for len(buf) > 0 {
		f, err := wire.Decode(buf)
		if err != nil {
			cmn.Abort(err.(*cmn.Fault))
			return
		}
		buf = buf[f.Size():]

		if int(f.Dst) == e.deps.SelfRank {
			if !e.forward && int(f.Src) != carrierSrc {
				cmn.Abort(cmn.NewFault(cmn.ErrWireCorruption,
					srcDstMismatch(int(f.Src), carrierSrc, int(f.Dst), e.deps.SelfRank)))
				return
			}
			e.deps.Stats.IncReceived(1)
			if err := e.deps.Sink.Deliver(f.Name, f.Payload, f.Epoch, int(f.Src), e.deps.SelfRank); err != nil {
				cmn.Abort(err.(*cmn.Fault))
				return
			}
			e.deps.Stats.IncDelivered(1)
			continue
		}

		if !e.forward {
			cmn.Abort(cmn.NewFault(cmn.ErrWireCorruption, srcDstMismatch(int(f.Src), carrierSrc, int(f.Dst), e.deps.SelfRank)))
			return
		}
		// Forward toward the final destination, preserving the original
		// src field, per spec §4.5.
		nextHop := e.router.nextHop(e.deps.SelfRank, int(f.Dst))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := e.enqueue(ctx, nextHop, int(f.Dst), f.Name, f.Payload, f.Epoch, false /* forwarding, not origin */); err != nil {
			cancel()
			cmn.Abort(err.(*cmn.Fault))
			return
		}
		cancel()
	}
}

func (e *engine) flusherLoop() {
	defer close(e.flusherDone)
	interval := time.Duration(e.deps.FlushIntervalMS) * time.Millisecond
	ageThreshold := time.Duration(e.deps.OutboxAgeMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.flusherStop:
			return
		case <-ticker.C:
			now := time.Now()
			for _, ob := range e.outbox.all() {
				ob.mu.Lock()
				stale := ob.fill > 0 && now.Sub(ob.lastAppend) > ageThreshold
				var data []byte
				var msgs int
				if stale {
					data, msgs = ob.drainLocked()
				}
				dst := ob.dst
				ob.mu.Unlock()
				if data != nil {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					_ = e.flush(ctx, dst, data, msgs)
					cancel()
				}
			}
		}
	}
}

func (e *engine) epochStart(_ context.Context, epoch uint16) error {
	e.mu.Lock()
	e.epoch = epoch
	e.mu.Unlock()
	e.pmu.Lock()
	e.pending = &errgroup.Group{}
	e.pmu.Unlock()
	return nil
}

func (e *engine) epochEnd(ctx context.Context, _ uint16) error {
	for _, ob := range e.outbox.all() {
		ob.mu.Lock()
		data, msgs := ob.drainLocked()
		dst := ob.dst
		ob.mu.Unlock()
		if data != nil {
			if err := e.flush(ctx, dst, data, msgs); err != nil {
				return err
			}
		}
	}

	e.pmu.Lock()
	g := e.pending
	e.pmu.Unlock()
	if err := g.Wait(); err != nil {
		return cmn.NewFault(cmn.ErrTransportSend, err)
	}

	if !e.deps.ForceSync {
		if err := e.deps.Transport.Quiesce(ctx); err != nil {
			return err
		}
	}

	if e.deps.ParanoidBarrier {
		if err := e.deps.barrier(ctx); err != nil {
			return cmn.NewFault(cmn.ErrTransportSend, err)
		}
	}
	return nil
}

func (e *engine) finalize(ctx context.Context) error {
	e.mu.Lock()
	epoch := e.epoch
	e.mu.Unlock()
	if err := e.epochEnd(ctx, epoch); err != nil {
		return err
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()
	close(e.flusherStop)
	<-e.flusherDone
	return e.deps.Transport.Close()
}

func (e *engine) stats() stats.Snapshot { return e.deps.Stats.Snapshot() }

package transport

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn"
)

// Fabric is the shared switching fabric a Loopback plugs into: it routes a
// SendOneWay from one rank straight to the destination rank's registered
// receiver, on a dedicated goroutine per send, the way the bench harness's
// simulated "network" stands in for real Mercury RPCs between ranks living
// in the same process.
type Fabric struct {
	mu        sync.RWMutex
	receivers map[int]ReceiveFunc
}

// NewFabric builds an empty switching fabric.
func NewFabric() *Fabric {
	return &Fabric{receivers: make(map[int]ReceiveFunc)}
}

// NewLoopback builds the Transport handle for rank within f, bounding this
// rank's own outstanding sends to maxInFlight.
func (f *Fabric) NewLoopback(rank, maxInFlight int) *Loopback {
	if maxInFlight <= 0 {
		maxInFlight = 16
	}
	return &Loopback{
		fabric:      f,
		rank:        rank,
		maxInFlight: maxInFlight,
		sem:         semaphore.NewWeighted(int64(maxInFlight)),
		inflight:    &sync.WaitGroup{},
	}
}

func (f *Fabric) register(rank int, fn ReceiveFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receivers[rank] = fn
}

func (f *Fabric) dispatch(src, dst int, payload []byte) error {
	f.mu.RLock()
	fn := f.receivers[dst]
	f.mu.RUnlock()
	if fn == nil {
		return cmn.NewFault(cmn.ErrTransportSend, errNoReceiver(dst))
	}
	fn(src, dst, payload)
	return nil
}

// Loopback is the in-process Transport test double. It satisfies the same
// bounded-in-flight and async-completion contract a real RPC-backed
// implementation must, without any actual network I/O, mirroring the
// teacher's own core/mock test doubles.
type Loopback struct {
	fabric      *Fabric
	rank        int
	maxInFlight int
	sem         *semaphore.Weighted
	inflight    *sync.WaitGroup
	closed      bool
	mu          sync.Mutex
}

type loopbackFuture struct {
	done chan error
}

func (fut *loopbackFuture) Wait(ctx context.Context) error {
	select {
	case err := <-fut.done:
		return err
	case <-ctx.Done():
		return cmn.NewFault(cmn.ErrSendTimeout, ctx.Err())
	}
}

func (l *Loopback) RegisterReceiver(fn ReceiveFunc) { l.fabric.register(l.rank, fn) }

func (l *Loopback) MaxInFlight() int { return l.maxInFlight }

// SendOneWay acquires the in-flight semaphore (this is the transport's
// back-pressure point) then hands off to a goroutine so the caller is never
// blocked on the simulated network itself, only on the semaphore.
func (l *Loopback) SendOneWay(ctx context.Context, dst int, payload []byte) (Future, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, cmn.NewFault(cmn.ErrSendTimeout, err)
	}
	l.inflight.Add(1)
	fut := &loopbackFuture{done: make(chan error, 1)}
	go func() {
		defer l.sem.Release(1)
		defer l.inflight.Done()
		fut.done <- l.fabric.dispatch(l.rank, dst, payload)
	}()
	return fut, nil
}

// Quiesce blocks until every send this rank has originated has resolved.
func (l *Loopback) Quiesce(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return cmn.NewFault(cmn.ErrSendTimeout, ctx.Err())
	}
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

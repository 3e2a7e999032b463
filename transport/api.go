// Package transport defines the capability boundary the shuffle core
// requires from an asynchronous, one-way RPC transport (spec §4.3), plus an
// in-process Loopback implementation used by tests and the bench harness.
// A real wire transport (Mercury/CCI-backed) is an external collaborator
// per spec §1 and is not implemented here; production code plugs one in
// behind this same Transport interface.
package transport

import "context"

// ReceiveFunc is invoked exactly once per received frame on the receiver,
// per spec §4.3's register_receiver contract.
type ReceiveFunc func(src, dst int, payload []byte)

// Future represents a pending send's completion, per spec §4.3's
// send_one_way(...) -> future<()> contract. Wait blocks until the send
// resolves and returns any transport-level send error.
type Future interface {
	Wait(ctx context.Context) error
}

// Transport is the capability set the dispatch layer consumes. The caller
// retains ownership of the buffer passed to SendOneWay until the returned
// Future resolves, exactly as spec §4.3 specifies; implementations must not
// block the caller on network I/O inside SendOneWay itself — only on the
// in-flight bound, which is an explicit, documented back-pressure point.
type Transport interface {
	// SendOneWay delivers payload to dst exactly once. The caller must not
	// mutate payload until the returned Future resolves.
	SendOneWay(ctx context.Context, dst int, payload []byte) (Future, error)

	// RegisterReceiver installs the callback invoked for every frame this
	// rank receives. Must be called at most once per Transport instance.
	RegisterReceiver(fn ReceiveFunc)

	// MaxInFlight returns the configured bound on outstanding sends
	// originated by this rank; dispatchers size their own semaphores off
	// of this when the config does not override it.
	MaxInFlight() int

	// Quiesce blocks until every send this rank has originated has
	// resolved. Used by epoch_end's "wait for transport quiescence" step.
	Quiesce(ctx context.Context) error

	// Close tears the transport down. Idempotent.
	Close() error
}

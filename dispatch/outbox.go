package dispatch

import (
	"sync"
	"time"
)

// outbox is the per-destination coalescing buffer of spec §3/§4.4: frames
// are appended under outbox.mu until the batch cap is hit, at which point
// the buffer is swapped for an empty one and handed to the transport. An
// outbox never holds frames from two epochs at once — drainLocked is
// called unconditionally at every epoch boundary.
type outbox struct {
	mu         sync.Mutex
	dst        int
	cap        int
	buf        []byte
	fill       int
	msgs       int
	epoch      uint16
	lastAppend time.Time
}

func newOutbox(dst, capBytes int) *outbox {
	return &outbox{dst: dst, cap: capBytes, buf: make([]byte, capBytes)}
}

// drainLocked must be called with mu held. It returns nil if the outbox is
// empty, otherwise a copy of the filled region and the message count, and
// resets the outbox to empty.
func (o *outbox) drainLocked() (data []byte, msgs int) {
	if o.fill == 0 {
		return nil, 0
	}
	data = append([]byte(nil), o.buf[:o.fill]...)
	msgs = o.msgs
	o.fill = 0
	o.msgs = 0
	return data, msgs
}

// appendLocked must be called with mu held and with the caller having
// already ensured len(frame) fits within cap (the caller flushes first if
// not). It copies frame into the buffer and bumps the fill/msg/lastAppend
// bookkeeping.
func (o *outbox) appendLocked(frame []byte, epoch uint16) {
	copy(o.buf[o.fill:], frame)
	o.fill += len(frame)
	o.msgs++
	o.epoch = epoch
	o.lastAppend = time.Now()
}

// fits reports whether frame of the given size can be appended without
// exceeding cap.
func (o *outbox) fits(size int) bool { return o.fill+size <= o.cap }

// outboxTable owns every per-destination outbox. Each outbox is guarded by
// its own lock (per spec §5's shared-resource policy); the table's own
// mutex only protects the act of creating a new entry on first send to a
// peer, mirroring transport/bundle's "bundle map[string]*robin" pattern.
type outboxTable struct {
	mu      sync.Mutex
	byDst   map[int]*outbox
	capSize int
}

func newOutboxTable(capSize int) *outboxTable {
	return &outboxTable{byDst: make(map[int]*outbox), capSize: capSize}
}

func (t *outboxTable) get(dst int) *outbox {
	t.mu.Lock()
	defer t.mu.Unlock()
	ob, ok := t.byDst[dst]
	if !ok {
		ob = newOutbox(dst, t.capSize)
		t.byDst[dst] = ob
	}
	return ob
}

func (t *outboxTable) all() []*outbox {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*outbox, 0, len(t.byDst))
	for _, ob := range t.byDst {
		out = append(out, ob)
	}
	return out
}

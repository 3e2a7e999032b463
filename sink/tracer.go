package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/OneOfOne/xxhash"
)

// Tracer appends the test-mode trace log lines defined in spec §6:
//
//	[SEND] <path> <n> bytes (e<epoch>) r<src> >> r<dst> (hash=<xxhash32 hex>)
//	[RECV] <path> <n> bytes (e<epoch>) r<dst> << r<src> (hash=<xxhash32 hex>)
//
// It is the Go-ified version of write_bulk_transfer_cb's "write out to the
// log if we are running a test" snprintf line, now carrying a payload
// checksum instead of a bare byte count.
type Tracer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTracer wraps w (typically an append-mode *os.File) as a Tracer.
func NewTracer(w io.Writer) *Tracer { return &Tracer{w: w} }

func (t *Tracer) TraceSend(path string, payload []byte, epoch uint16, src, dst int) error {
	return t.write("[SEND] %s %d bytes (e%d) r%d >> r%d (hash=%08x)\n",
		path, len(payload), epoch, src, dst, xxhash.Checksum32S(payload, 0))
}

func (t *Tracer) TraceRecv(path string, payload []byte, epoch uint16, src, dst int) error {
	return t.write("[RECV] %s %d bytes (e%d) r%d << r%d (hash=%08x)\n",
		path, len(payload), epoch, dst, src, xxhash.Checksum32S(payload, 0))
}

func (t *Tracer) write(format string, args ...interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, format, args...)
	return err
}

// Package sink implements the delivery sink adapter of spec §4.7: the
// receiver-side component that turns a decoded Frame into a write against
// the external storage layer (a plfsdir, or — per
// original_source/src/shuffle_write.cc's shuffle_write_local — a plain
// POSIX path under test modes).
package sink

import (
	"path/filepath"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn"
)

// Writer is the external storage collaborator named in spec §1/§4.7: the
// object-addressed file API that ultimately persists records. It is out of
// scope for this module; Sink only defines the boundary and two concrete
// adapters standing in for it (PosixWriter, ExternalWriter).
type Writer interface {
	// Write appends payload for epoch at path. A non-zero-equivalent
	// (non-nil) return is fatal, per spec §7's delivery-failure policy.
	Write(path string, payload []byte, epoch uint16) error
}

// Sink composes the resolved path from a root directory and a record name
// and delegates to a Writer, optionally tracing the delivery first. It is
// the direct analogue of shuffle_write_local dispatching between
// shuffle_deltafs_write and shuffle_posix_write by test mode.
type Sink struct {
	root   string
	writer Writer
	tracer *Tracer // nil unless test mode is on
}

// New builds a Sink rooted at root (the plfsdir_root of spec §4.7),
// delegating actual writes to writer. tracer may be nil (production mode).
func New(root string, writer Writer, tracer *Tracer) *Sink {
	return &Sink{root: root, writer: writer, tracer: tracer}
}

// Path resolves a record name to the path the backing writer receives:
// plfsdir_root + "/" + name, per spec §4.7.
func (s *Sink) Path(name string) string {
	return filepath.Join(s.root, name)
}

// Deliver writes payload for (name, epoch), having arrived from src and
// being delivered on dst. If a tracer is configured, the [RECV] trace line
// is appended before the write, mirroring write_bulk_transfer_cb's
// "write out to the log if we are running a test" ordering. A non-nil
// return is a delivery-failure Fault; the caller is expected to route it
// through cmn.Abort, since the delivery path has no local recovery.
func (s *Sink) Deliver(name string, payload []byte, epoch uint16, src, dst int) error {
	path := s.Path(name)
	if s.tracer != nil {
		if err := s.tracer.TraceRecv(path, payload, epoch, src, dst); err != nil {
			return cmn.NewFault(cmn.ErrDelivery, err)
		}
	}
	if err := s.writer.Write(path, payload, epoch); err != nil {
		return cmn.NewFault(cmn.ErrDelivery, err)
	}
	return nil
}

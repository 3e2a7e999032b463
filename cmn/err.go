package cmn

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/stpalmer21/deltafs-vpic-preload/nlog"
)

// Kind enumerates the error-handling policy's fatal-error taxonomy
// (see spec §7): every error the core surfaces is one of these kinds.
type Kind int

const (
	ErrConfig Kind = iota
	ErrTransportInit
	ErrFrameTooLarge
	ErrWireCorruption
	ErrDelivery
	ErrTransportSend
	ErrSendTimeout
)

func (k Kind) String() string {
	switch k {
	case ErrConfig:
		return "configuration error"
	case ErrTransportInit:
		return "transport init failure"
	case ErrFrameTooLarge:
		return "frame too large"
	case ErrWireCorruption:
		return "wire corruption"
	case ErrDelivery:
		return "delivery failure"
	case ErrTransportSend:
		return "transport send error"
	case ErrSendTimeout:
		return "send timeout"
	default:
		return "unknown error"
	}
}

// Fault is a fatal core error: there is no local recovery path for any of
// these, per the error-handling policy. Wrap with errors.Wrap to retain a
// stack for the ABORT line.
type Fault struct {
	Kind Kind
	Err  error
}

func (f *Fault) Error() string { return fmt.Sprintf("%s: %v", f.Kind, f.Err) }
func (f *Fault) Unwrap() error { return f.Err }

func newConfigError(name, value string) error {
	return &Fault{Kind: ErrConfig, Err: errors.Errorf("invalid %s=%q", name, value)}
}

// NewFault wraps cause as a Fault of the given kind, attaching a stack
// trace via pkg/errors the way dsort wraps unrecoverable conditions before
// surfacing them.
func NewFault(kind Kind, cause error) *Fault {
	return &Fault{Kind: kind, Err: errors.WithStack(cause)}
}

// Abort is the single chokepoint for the fatal-abort policy: every fault
// the core raises is logged once here, at ABORT severity, and the process
// is terminated. Mirrors the original preload's single msg_abort().
func Abort(f *Fault) {
	nlog.Abort("ABORT: %s", f.Error())
}

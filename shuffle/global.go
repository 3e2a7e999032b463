package shuffle

import (
	"context"
	"sync"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn"
)

// Global is the process-wide ShuffleCtx handle the preload shim's FFI
// boundary calls through — set once by Init, read by every Write/EpochStart/
// EpochEnd/Finalize call the shim makes. Nothing below this package ever
// reads Global directly; it exists only so the shim, which has no Go object
// graph of its own, has a single handle to call into.
var (
	globalMu sync.Mutex
	global   *ShuffleCtx
)

// Init builds the process-wide ShuffleCtx and stores it as Global. Calling
// Init twice without an intervening Shutdown is a programmer error and
// aborts, mirroring the original preload's single-init assumption.
func Init(cfg *cmn.Config, d Deps) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		cmn.Abort(cmn.NewFault(cmn.ErrConfig, errAlreadyInitialized()))
		return nil
	}
	ctx, err := New(cfg, d)
	if err != nil {
		return err
	}
	global = ctx
	return nil
}

// Write is the shim-facing wrapper around Global.Write.
func Write(ctx context.Context, name string, payload []byte, epoch uint16) error {
	return global.Write(ctx, name, payload, epoch)
}

// EpochStart is the shim-facing wrapper around Global.EpochStart.
func EpochStart(ctx context.Context, epoch uint16) error { return global.EpochStart(ctx, epoch) }

// EpochEnd is the shim-facing wrapper around Global.EpochEnd.
func EpochEnd(ctx context.Context, epoch uint16) error { return global.EpochEnd(ctx, epoch) }

// Finalize is the shim-facing wrapper around Global.Finalize; it also
// clears Global so a subsequent Init can run (used by tests that build and
// tear down a process-wide context repeatedly within one test binary).
func Finalize(ctx context.Context) error {
	globalMu.Lock()
	ctx2 := global
	global = nil
	globalMu.Unlock()
	if ctx2 == nil {
		return nil
	}
	return ctx2.Finalize(ctx)
}

// Current returns the process-wide ShuffleCtx, or nil if Init has not run.
func Current() *ShuffleCtx {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global
}

package shuffle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn"
	"github.com/stpalmer21/deltafs-vpic-preload/dispatch"
	"github.com/stpalmer21/deltafs-vpic-preload/sink"
	"github.com/stpalmer21/deltafs-vpic-preload/transport"
)

func baseConfig(root string) *cmn.Config {
	return &cmn.Config{
		Topology:           cmn.NN,
		VirtualFactor:      1024,
		PlacementProtocol:  "ring",
		ForceSync:          true,
		FlushIntervalMS:    20,
		OutboxAgeThreshold: 50,
		PLFSDirRoot:        root,
	}
}

func TestNewRejectsMissingPLFSRoot(t *testing.T) {
	fabric := transport.NewFabric()
	cfg := baseConfig("")
	_, err := New(cfg, Deps{
		SelfRank: 0, WorldSize: 1,
		Transport: fabric.NewLoopback(0, 16),
		Writer:    sink.PosixWriter{},
	})
	if err == nil {
		t.Fatal("expected a configuration error for an empty PLFSDirRoot")
	}
}

func TestNewRejects3HopWithoutNexus(t *testing.T) {
	root := t.TempDir()
	fabric := transport.NewFabric()
	cfg := baseConfig(root)
	cfg.Topology = cmn.ThreeHop
	_, err := New(cfg, Deps{
		SelfRank: 0, WorldSize: 1,
		Transport: fabric.NewLoopback(0, 16),
		Writer:    sink.PosixWriter{},
	})
	if err == nil {
		t.Fatal("expected a configuration error for 3H without a Nexus")
	}
}

// TestShuffleCtxEndToEndNN drives two ShuffleCtx instances through one
// epoch over the NN topology and checks that the record each rank writes
// lands on its placement-oracle-resolved destination exactly once.
func TestShuffleCtxEndToEndNN(t *testing.T) {
	const world = 2
	root := t.TempDir()
	fabric := transport.NewFabric()

	ctxs := make([]*ShuffleCtx, world)
	for r := 0; r < world; r++ {
		cfg := baseConfig(filepath.Join(root, itoaS(r)))
		c, err := New(cfg, Deps{
			SelfRank: r, WorldSize: world,
			Transport: fabric.NewLoopback(r, 16),
			Writer:    sink.PosixWriter{},
		})
		if err != nil {
			t.Fatalf("rank %d New: %v", r, err)
		}
		ctxs[r] = c
	}

	ctx := context.Background()
	for r := 0; r < world; r++ {
		if err := ctxs[r].EpochStart(ctx, 0); err != nil {
			t.Fatalf("rank %d EpochStart: %v", r, err)
		}
	}
	if err := ctxs[0].Write(ctx, "probe", []byte{0xAB}, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for r := 0; r < world; r++ {
		if err := ctxs[r].EpochEnd(ctx, 0); err != nil {
			t.Fatalf("rank %d EpochEnd: %v", r, err)
		}
	}

	dst := ctxs[0].Oracle().Destination("probe")
	got, err := os.ReadFile(filepath.Join(root, itoaS(dst), "probe"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 1 || got[0] != 0xAB {
		t.Fatalf("sink contents = %x, want [ab]", got)
	}

	for r := 0; r < world; r++ {
		if err := ctxs[r].Finalize(ctx); err != nil {
			t.Fatalf("rank %d Finalize: %v", r, err)
		}
	}
}

func TestShuffleCtxThreeHop(t *testing.T) {
	const world = 4
	root := t.TempDir()
	fabric := transport.NewFabric()
	nexus := dispatch.EvenNexus(world, 2)

	ctxs := make([]*ShuffleCtx, world)
	for r := 0; r < world; r++ {
		cfg := baseConfig(filepath.Join(root, itoaS(r)))
		cfg.Topology = cmn.ThreeHop
		c, err := New(cfg, Deps{
			SelfRank: r, WorldSize: world,
			Transport: fabric.NewLoopback(r, 16),
			Writer:    sink.PosixWriter{},
			Nexus:     nexus,
		})
		if err != nil {
			t.Fatalf("rank %d New: %v", r, err)
		}
		ctxs[r] = c
	}

	ctx := context.Background()
	for r := 0; r < world; r++ {
		if err := ctxs[r].EpochStart(ctx, 0); err != nil {
			t.Fatal(err)
		}
	}
	for r := 0; r < world; r++ {
		if err := ctxs[r].Write(ctx, "p0", []byte{byte(r)}, 0); err != nil {
			t.Fatal(err)
		}
	}
	dispatchers := make([]dispatch.Dispatcher, world)
	for r := 0; r < world; r++ {
		dispatchers[r] = ctxs[r]
	}
	if err := dispatch.DrainEpochEnd(ctx, 0, dispatchers); err != nil {
		t.Fatal(err)
	}

	dst := ctxs[0].Oracle().Destination("p0")
	got, err := os.ReadFile(filepath.Join(root, itoaS(dst), "p0"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != world {
		t.Fatalf("got %d bytes, want %d", len(got), world)
	}

	for r := 0; r < world; r++ {
		if err := ctxs[r].Finalize(ctx); err != nil {
			t.Fatalf("rank %d Finalize: %v", r, err)
		}
	}
}

// TestShuffleCtxBypassPlacement mirrors scenario S3 of spec §8: with bypass
// placement on, 4 ranks each write "foo" once in epoch 0, and the record
// lands on dst = xxhash32("foo", 0) % 4 with one copy per source rank.
func TestShuffleCtxBypassPlacement(t *testing.T) {
	const world = 4
	root := t.TempDir()
	fabric := transport.NewFabric()

	ctxs := make([]*ShuffleCtx, world)
	for r := 0; r < world; r++ {
		cfg := baseConfig(filepath.Join(root, itoaS(r)))
		cfg.Bypass = true
		c, err := New(cfg, Deps{
			SelfRank: r, WorldSize: world,
			Transport: fabric.NewLoopback(r, 16),
			Writer:    sink.PosixWriter{},
		})
		if err != nil {
			t.Fatalf("rank %d New: %v", r, err)
		}
		ctxs[r] = c
	}

	ctx := context.Background()
	for r := 0; r < world; r++ {
		if err := ctxs[r].EpochStart(ctx, 0); err != nil {
			t.Fatal(err)
		}
	}
	for r := 0; r < world; r++ {
		if err := ctxs[r].Write(ctx, "foo", []byte("bar"), 0); err != nil {
			t.Fatalf("rank %d Write: %v", r, err)
		}
	}
	for r := 0; r < world; r++ {
		if err := ctxs[r].EpochEnd(ctx, 0); err != nil {
			t.Fatal(err)
		}
	}

	dst := ctxs[0].Oracle().Destination("foo")
	got, err := os.ReadFile(filepath.Join(root, itoaS(dst), "foo"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != world*len("bar") {
		t.Fatalf("got %d bytes, want %d (one copy of \"bar\" per source rank)", len(got), world*len("bar"))
	}

	for r := 0; r < world; r++ {
		if err := ctxs[r].Finalize(ctx); err != nil {
			t.Fatalf("rank %d Finalize: %v", r, err)
		}
	}
}

func itoaS(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return string(b)
}

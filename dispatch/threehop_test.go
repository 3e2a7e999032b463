package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stpalmer21/deltafs-vpic-preload/placement"
	"github.com/stpalmer21/deltafs-vpic-preload/sink"
	"github.com/stpalmer21/deltafs-vpic-preload/stats"
	"github.com/stpalmer21/deltafs-vpic-preload/transport"
)

func newTestThreeHop(t *testing.T, fabric *transport.Fabric, nexus *Nexus, rank, world int, root string) (*ThreeHop, *stats.Stats) {
	t.Helper()
	st := stats.New()
	deps := Deps{
		SelfRank:  rank,
		WorldSize: world,
		Oracle:    placement.New(world, 1024, false),
		Transport: fabric.NewLoopback(rank, 16),
		Sink:      sink.New(filepath.Join(root, itoaT(rank)), sink.PosixWriter{}, nil),
		Stats:     st,
		ForceSync: true,
	}
	return NewThreeHop(deps, nexus), st
}

// TestS6EightRanksThreeHop mirrors scenario S6 of spec §8: the same
// all-to-all experiment as S2, run over the 3H topology instead of NN.
// Final placement must match what NN would have produced (the routing
// topology never changes which rank a name lands on, only how it gets
// there), and the epoch-drain law must still balance across the cluster
// even though messages now take up to three hops.
func TestS6EightRanksThreeHop(t *testing.T) {
	const world = 8
	root := t.TempDir()
	fabric := transport.NewFabric()
	nexus := EvenNexus(world, 3)

	hops := make([]*ThreeHop, world)
	stat := make([]*stats.Stats, world)
	for r := 0; r < world; r++ {
		hops[r], stat[r] = newTestThreeHop(t, fabric, nexus, r, world, root)
	}

	names := make([]string, 16)
	for i := range names {
		names[i] = "p" + itoaT(i)
	}

	ctx := context.Background()
	for r := 0; r < world; r++ {
		if err := hops[r].EpochStart(ctx, 0); err != nil {
			t.Fatalf("rank %d EpochStart: %v", r, err)
		}
	}
	for r := 0; r < world; r++ {
		for _, name := range names {
			if err := hops[r].Write(ctx, name, []byte{byte(r)}, 0); err != nil {
				t.Fatalf("rank %d Write(%s): %v", r, name, err)
			}
		}
	}
	dispatchers := make([]Dispatcher, world)
	for r := 0; r < world; r++ {
		dispatchers[r] = hops[r]
	}
	if err := DrainEpochEnd(ctx, 0, dispatchers); err != nil {
		t.Fatalf("DrainEpochEnd: %v", err)
	}

	oracle := placement.New(world, 1024, false)
	for _, name := range names {
		dst := oracle.Destination(name)
		got, err := os.ReadFile(filepath.Join(root, itoaT(dst), name))
		if err != nil {
			t.Fatalf("ReadFile(%s on rank %d): %v", name, dst, err)
		}
		if len(got) != world {
			t.Fatalf("%s: got %d bytes on rank %d, want %d (one per source)", name, len(got), dst, world)
		}
		seen := map[byte]bool{}
		for _, b := range got {
			seen[b] = true
		}
		if len(seen) != world {
			t.Fatalf("%s: expected one byte per source rank, got %v", name, got)
		}
	}

	var totalSent, totalDelivered, totalReceived int64
	for r := 0; r < world; r++ {
		snap := stat[r].Snapshot()
		totalSent += snap.NMS
		totalDelivered += snap.NMD
		totalReceived += snap.NMR
	}
	if totalSent != totalDelivered || totalDelivered != totalReceived {
		t.Fatalf("epoch drain law violated over 3H: nms=%d nmd=%d nmr=%d", totalSent, totalDelivered, totalReceived)
	}
	if totalSent != 16*world {
		t.Fatalf("totalSent = %d, want %d", totalSent, 16*world)
	}
}

func TestThreeHopFinalize(t *testing.T) {
	root := t.TempDir()
	fabric := transport.NewFabric()
	nexus := EvenNexus(1, 1)
	th, _ := newTestThreeHop(t, fabric, nexus, 0, 1, root)
	ctx := context.Background()
	if err := th.Finalize(ctx); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}

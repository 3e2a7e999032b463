// shuffle-bench is an in-process multi-rank load generator for the shuffle
// dispatch subsystem, the single-process analogue of bench/aisloader: it
// drives a configurable number of simulated ranks through a fixed workload
// over one topology and reports aggregate throughput, mirroring aisloader's
// own stdlib-flag command line instead of the urfave/cli skeleton cmd/shuffle
// uses, since this is a synthetic load driver, not a control surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn"
	"github.com/stpalmer21/deltafs-vpic-preload/dispatch"
	"github.com/stpalmer21/deltafs-vpic-preload/shuffle"
	"github.com/stpalmer21/deltafs-vpic-preload/sink"
	"github.com/stpalmer21/deltafs-vpic-preload/transport"
)

type params struct {
	world         int
	nodes         int
	records       int
	epochs        int
	payloadSize   int
	threehop      bool
	virtualFactor int
}

func parseFlags() params {
	var p params
	flag.IntVar(&p.world, "world", 16, "simulated world size")
	flag.IntVar(&p.nodes, "nodes", 4, "node count for the 3H nexus (ignored for -threehop=false)")
	flag.IntVar(&p.records, "records", 1000, "records written per rank per epoch")
	flag.IntVar(&p.epochs, "epochs", 4, "epochs to run")
	flag.IntVar(&p.payloadSize, "payload", 32, "payload size in bytes per record")
	flag.BoolVar(&p.threehop, "threehop", false, "use the 3H topology instead of NN")
	flag.IntVar(&p.virtualFactor, "virtual-factor", 1024, "ring virtual factor")
	flag.Parse()
	return p
}

func main() {
	p := parseFlags()
	if err := run(p); err != nil {
		fmt.Fprintf(os.Stderr, "shuffle-bench: %v\n", err)
		os.Exit(1)
	}
}

func run(p params) error {
	root, err := os.MkdirTemp("", "shuffle-bench-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(root)

	topology := cmn.NN
	if p.threehop {
		topology = cmn.ThreeHop
	}

	fabric := transport.NewFabric()
	var nexus *dispatch.Nexus
	if p.threehop {
		nexus = dispatch.EvenNexus(p.world, p.nodes)
	}

	ctxs := make([]*shuffle.ShuffleCtx, p.world)
	for r := 0; r < p.world; r++ {
		cfg := &cmn.Config{
			Topology:           topology,
			VirtualFactor:      p.virtualFactor,
			PlacementProtocol:  "ring",
			ForceSync:          true,
			FlushIntervalMS:    20,
			OutboxAgeThreshold: 50,
			PLFSDirRoot:        filepath.Join(root, strconv.Itoa(r)),
		}
		sc, err := shuffle.New(cfg, shuffle.Deps{
			SelfRank:  r,
			WorldSize: p.world,
			Transport: fabric.NewLoopback(r, 128),
			Writer:    sink.PosixWriter{},
			Nexus:     nexus,
		})
		if err != nil {
			return fmt.Errorf("rank %d: %w", r, err)
		}
		ctxs[r] = sc
	}

	payload := make([]byte, p.payloadSize)
	ctx := context.Background()

	start := time.Now()
	for e := 0; e < p.epochs; e++ {
		epoch := uint16(e)
		for r := 0; r < p.world; r++ {
			if err := ctxs[r].EpochStart(ctx, epoch); err != nil {
				return fmt.Errorf("rank %d epoch_start(%d): %w", r, e, err)
			}
		}
		for r := 0; r < p.world; r++ {
			for i := 0; i < p.records; i++ {
				name := fmt.Sprintf("e%d.r%d.%d", e, r, i)
				if err := ctxs[r].Write(ctx, name, payload, epoch); err != nil {
					return fmt.Errorf("rank %d write(%s): %w", r, name, err)
				}
			}
		}
		dispatchers := make([]dispatch.Dispatcher, p.world)
		for r := 0; r < p.world; r++ {
			dispatchers[r] = ctxs[r]
		}
		if err := dispatch.DrainEpochEnd(ctx, epoch, dispatchers); err != nil {
			return fmt.Errorf("epoch_end(%d): %w", e, err)
		}
	}
	elapsed := time.Since(start)

	for r := 0; r < p.world; r++ {
		if err := ctxs[r].Finalize(ctx); err != nil {
			return fmt.Errorf("rank %d finalize: %w", r, err)
		}
	}

	totalRecords := p.world * p.records * p.epochs
	var totalNPS int64
	for r := 0; r < p.world; r++ {
		totalNPS += ctxs[r].Stats().NPS
	}

	fmt.Printf("topology=%s world=%d nodes=%d epochs=%d records/epoch/rank=%d payload=%dB\n",
		topology, p.world, p.nodes, p.epochs, p.records, p.payloadSize)
	fmt.Printf("elapsed=%s total_records=%d records/sec=%.0f total_physical_sends=%d\n",
		elapsed, totalRecords, float64(totalRecords)/elapsed.Seconds(), totalNPS)
	return nil
}

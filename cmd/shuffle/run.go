package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn"
	"github.com/stpalmer21/deltafs-vpic-preload/dispatch"
	"github.com/stpalmer21/deltafs-vpic-preload/shuffle"
	"github.com/stpalmer21/deltafs-vpic-preload/sink"
	"github.com/stpalmer21/deltafs-vpic-preload/stats"
	"github.com/stpalmer21/deltafs-vpic-preload/transport"
)

var runCommand = cli.Command{
	Name:  "run",
	Usage: "simulate a single job end to end against the resolved SHUFFLE_* config, as a config smoke test",
	Flags: []cli.Flag{
		cli.IntFlag{Name: "world", Value: 4, Usage: "simulated world size"},
		cli.IntFlag{Name: "records", Value: 64, Usage: "records written per rank per epoch"},
		cli.IntFlag{Name: "epochs", Value: 2, Usage: "epochs to run"},
		cli.StringFlag{Name: "root", Value: "", Usage: "plfsdir root override (defaults to a temp dir)"},
		cli.StringFlag{Name: "stats-file", Value: defaultStatsFile, Usage: "path to write the final per-rank stats snapshot to"},
	},
	Action: runAction,
}

func runAction(c *cli.Context) error {
	cfg, err := cmn.LoadConfig()
	if err != nil {
		return err
	}

	world := c.Int("world")
	records := c.Int("records")
	epochs := c.Int("epochs")

	root := c.String("root")
	if root == "" {
		root, err = os.MkdirTemp("", "shuffle-run-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(root)
	}

	fabric := transport.NewFabric()
	var nexus *dispatch.Nexus
	if cfg.Topology == cmn.ThreeHop {
		nodeCount := world
		for nodeCount*nodeCount > world && nodeCount > 1 {
			nodeCount--
		}
		nexus = dispatch.EvenNexus(world, nodeCount)
	}

	ctxs := make([]*shuffle.ShuffleCtx, world)
	for r := 0; r < world; r++ {
		rankCfg := *cfg
		rankCfg.PLFSDirRoot = filepath.Join(root, strconv.Itoa(r))
		sc, err := shuffle.New(&rankCfg, shuffle.Deps{
			SelfRank:  r,
			WorldSize: world,
			Transport: fabric.NewLoopback(r, 64),
			Writer:    sink.PosixWriter{},
			Nexus:     nexus,
		})
		if err != nil {
			return fmt.Errorf("rank %d: %w", r, err)
		}
		ctxs[r] = sc
	}

	ctx := context.Background()
	for e := 0; e < epochs; e++ {
		epoch := uint16(e)
		for r := 0; r < world; r++ {
			if err := ctxs[r].EpochStart(ctx, epoch); err != nil {
				return fmt.Errorf("rank %d epoch_start(%d): %w", r, e, err)
			}
		}
		for r := 0; r < world; r++ {
			for i := 0; i < records; i++ {
				name := fmt.Sprintf("r%d.%d", r, i)
				if err := ctxs[r].Write(ctx, name, []byte{byte(r), byte(i)}, epoch); err != nil {
					return fmt.Errorf("rank %d write(%s): %w", r, name, err)
				}
			}
		}
		dispatchers := make([]dispatch.Dispatcher, world)
		for r := 0; r < world; r++ {
			dispatchers[r] = ctxs[r]
		}
		if err := dispatch.DrainEpochEnd(ctx, epoch, dispatchers); err != nil {
			return fmt.Errorf("epoch_end(%d): %w", e, err)
		}
	}

	for r := 0; r < world; r++ {
		if err := ctxs[r].Finalize(ctx); err != nil {
			return fmt.Errorf("rank %d finalize: %w", r, err)
		}
	}

	fmt.Printf("shuffle run ok: world=%d topology=%s epochs=%d records/epoch/rank=%d\n",
		world, cfg.Topology, epochs, records)
	ranks := make([]stats.RankSnapshot, world)
	for r := 0; r < world; r++ {
		snap := ctxs[r].Stats()
		ranks[r] = stats.RankSnapshot{Rank: r, Snapshot: snap}
		fmt.Printf("  rank %-3d nms=%-6d nmd=%-6d nmr=%-6d nps=%-6d\n", r, snap.NMS, snap.NMD, snap.NMR, snap.NPS)
	}

	statsFile := c.String("stats-file")
	if err := stats.WriteSnapshotFile(statsFile, ranks); err != nil {
		return fmt.Errorf("writing stats file %s: %w", statsFile, err)
	}
	fmt.Printf("stats snapshot written to %s\n", statsFile)
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn"
	"github.com/stpalmer21/deltafs-vpic-preload/stats"
)

// statsCommand prints the last snapshot a `run` invocation left behind in
// --stats-file. If no such file exists yet (no job has run against this
// stats file), it falls back to resolving and printing the SHUFFLE_*
// environment table instead, so the command is still useful against a
// freshly provisioned environment.
var statsCommand = cli.Command{
	Name:  "stats",
	Usage: "print the last stats snapshot written by `run`, or the resolved SHUFFLE_* config if none exists yet",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "stats-file", Value: defaultStatsFile, Usage: "path to read the per-rank stats snapshot from"},
	},
	Action: func(c *cli.Context) error {
		statsFile := c.String("stats-file")
		ranks, err := stats.ReadSnapshotFile(statsFile)
		if err == nil {
			return printStatsSnapshot(statsFile, ranks)
		}
		if !os.IsNotExist(err) {
			return err
		}
		return printResolvedConfig()
	},
}

func printStatsSnapshot(path string, ranks []stats.RankSnapshot) error {
	fmt.Printf("stats snapshot (%s):\n", path)
	for _, r := range ranks {
		fmt.Printf("  rank %-3d nms=%-6d nmd=%-6d nmr=%-6d nps=%-6d accqsz=%-8d minfill=%-6d maxfill=%-6d\n",
			r.Rank, r.NMS, r.NMD, r.NMR, r.NPS, r.AccQSZ, r.MinFill, r.MaxFill)
	}
	return nil
}

func printResolvedConfig() error {
	cfg, err := cmn.LoadConfig()
	if err != nil {
		return err
	}
	fmt.Println("no stats file found yet; printing resolved SHUFFLE_* config instead")
	fmt.Printf("topology            %s\n", cfg.Topology)
	fmt.Printf("placement_protocol  %s\n", cfg.PlacementProtocol)
	fmt.Printf("virtual_factor      %d\n", cfg.VirtualFactor)
	fmt.Printf("subnet              %q\n", cfg.Subnet)
	fmt.Printf("mercury_proto       %q\n", cfg.MercuryProto)
	fmt.Printf("paranoid_barrier    %v\n", cfg.ParanoidBarrier)
	fmt.Printf("force_sync          %v\n", cfg.ForceSync)
	fmt.Printf("test_mode           %v\n", cfg.TestMode)
	fmt.Printf("trace_log_path      %q\n", cfg.TraceLogPath)
	fmt.Printf("plfsdir_root        %q\n", cfg.PLFSDirRoot)
	fmt.Printf("flush_interval_ms   %d\n", cfg.FlushIntervalMS)
	fmt.Printf("outbox_age_ms       %d\n", cfg.OutboxAgeThreshold)
	return nil
}

// Package main is the control CLI for the shuffle dispatch subsystem:
// `shuffle stats` dry-runs the SHUFFLE_* environment table through
// cmn.LoadConfig so a job script can validate it before launch, and
// `shuffle run` drives a simulated in-process job end to end, the
// single-process analogue of the MPI-resident shim this core is embedded
// in, for smoke-testing a config against real dispatch code.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var (
	build     string
	buildtime string
)

// defaultStatsFile is the path `run` writes its final per-rank snapshot to
// and `stats` reads back from, when neither command is given --stats-file.
const defaultStatsFile = "shuffle-stats.json"

func main() {
	app := cli.NewApp()
	app.Name = "shuffle"
	app.Usage = "control CLI for the shuffle dispatch subsystem"
	app.Version = "0.1.0." + build
	app.HideHelp = false
	app.Commands = []cli.Command{
		runCommand,
		statsCommand,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "shuffle: %v\n", err)
		os.Exit(1)
	}
}

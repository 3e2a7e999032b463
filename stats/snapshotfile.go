package stats

import (
	"os"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn/cos"
)

// RankSnapshot pairs a Snapshot with the rank it was taken from, the unit
// of the stats file a running job leaves behind for `cmd/shuffle stats` to
// read back.
type RankSnapshot struct {
	Rank int `json:"rank"`
	Snapshot
}

// WriteSnapshotFile persists one snapshot per rank as a JSON array at path,
// overwriting any prior contents. Called at epoch_end/finalize boundaries
// by a running job so a separate `stats` invocation can observe the
// counters of spec §6 without attaching to the process.
func WriteSnapshotFile(path string, ranks []RankSnapshot) error {
	b, err := cos.JSON.MarshalIndent(ranks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ReadSnapshotFile reads back a stats file written by WriteSnapshotFile.
func ReadSnapshotFile(path string) ([]RankSnapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ranks []RankSnapshot
	if err := cos.JSON.Unmarshal(b, &ranks); err != nil {
		return nil, err
	}
	return ranks, nil
}

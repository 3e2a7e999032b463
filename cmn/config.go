// Package cmn provides the low-level configuration and error-handling types
// shared by every shuffle subsystem, mirroring the role of aistore's own
// cmn package: one Config struct parsed once at process start and handed
// down by pointer to every subsystem that needs it.
package cmn

import (
	"os"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn/cos"
)

// Topology selects which dispatcher implementation a ShuffleCtx builds.
type Topology int

const (
	NN Topology = iota
	ThreeHop
)

func (t Topology) String() string {
	if t == ThreeHop {
		return "3hop"
	}
	return "nn"
}

// Config is the parsed, validated form of the SHUFFLE_* environment table.
// Immutable once returned by LoadConfig.
type Config struct {
	Topology           Topology
	Bypass             bool
	VirtualFactor      int
	PlacementProtocol  string
	Subnet             string
	MercuryProto       string
	ParanoidBarrier    bool
	ForceSync          bool
	TestMode           bool
	TraceLogPath       string
	PLFSDirRoot        string
	FlushIntervalMS    int
	OutboxAgeThreshold int
}

const (
	envUse3Hop     = "SHUFFLE_Use_3hop"
	envBypass      = "SHUFFLE_Bypass_placement"
	envVF          = "SHUFFLE_Virtual_factor"
	envProtocol    = "SHUFFLE_Placement_protocol"
	envSubnet      = "SHUFFLE_Subnet"
	envMercury     = "SHUFFLE_Mercury_proto"
	envParanoid    = "SHUFFLE_Paranoid_barrier"
	envForceSync   = "SHUFFLE_Force_sync"
	envTestMode    = "SHUFFLE_Testmode"
	envTraceLog    = "SHUFFLE_Trace_log"
	envPLFSRoot    = "SHUFFLE_Plfsdir_root"
	envFlushMS     = "SHUFFLE_Flush_interval_ms"
	envOutboxAgeMS = "SHUFFLE_Outbox_age_ms"

	defaultVirtualFactor      = 1024
	defaultPlacementProtocol  = "ring"
	defaultFlushIntervalMS    = 20
	defaultOutboxAgeThreshold = 50
)

// LoadConfig reads the SHUFFLE_* environment table, validates it, and
// returns an immutable Config. Any unparsable numeric value or unknown
// placement protocol is a configuration error: this function returns a
// non-nil error rather than defaulting silently, per the error-handling
// policy's "fatal at init" rule for configuration errors.
func LoadConfig() (*Config, error) {
	c := &Config{
		Topology:           NN,
		VirtualFactor:      defaultVirtualFactor,
		PlacementProtocol:  defaultPlacementProtocol,
		FlushIntervalMS:    defaultFlushIntervalMS,
		OutboxAgeThreshold: defaultOutboxAgeThreshold,
		// ForceSync defaults to false: epoch_end waits for transport
		// quiescence after the bulk flush-and-await unless force_sync is
		// explicitly set, per spec §9's stated default of "synchronous".
		ForceSync: false,
	}

	if cos.IsTruthy(os.Getenv(envUse3Hop)) {
		c.Topology = ThreeHop
	}
	c.Bypass = cos.IsTruthy(os.Getenv(envBypass))

	if v := os.Getenv(envVF); v != "" {
		n, err := cos.ParseUint(v, 0)
		if err != nil || n == 0 {
			return nil, newConfigError(envVF, v)
		}
		c.VirtualFactor = int(n)
	}

	if p := os.Getenv(envProtocol); p != "" {
		c.PlacementProtocol = p
	}
	if c.PlacementProtocol != "ring" {
		return nil, newConfigError(envProtocol, c.PlacementProtocol)
	}

	c.Subnet = os.Getenv(envSubnet)
	c.MercuryProto = os.Getenv(envMercury)
	c.ParanoidBarrier = cos.IsTruthy(os.Getenv(envParanoid))
	c.TestMode = cos.IsTruthy(os.Getenv(envTestMode))
	c.TraceLogPath = os.Getenv(envTraceLog)
	c.PLFSDirRoot = os.Getenv(envPLFSRoot)

	if v := os.Getenv(envForceSync); v != "" {
		c.ForceSync = cos.IsTruthy(v)
	}
	if v := os.Getenv(envFlushMS); v != "" {
		n, err := cos.ParseUint(v, 0)
		if err != nil || n == 0 {
			return nil, newConfigError(envFlushMS, v)
		}
		c.FlushIntervalMS = int(n)
	}
	if v := os.Getenv(envOutboxAgeMS); v != "" {
		n, err := cos.ParseUint(v, 0)
		if err != nil || n == 0 {
			return nil, newConfigError(envOutboxAgeMS, v)
		}
		c.OutboxAgeThreshold = int(n)
	}

	return c, nil
}

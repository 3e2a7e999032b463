package cmn

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Topology != NN {
		t.Fatalf("default topology = %v, want NN", cfg.Topology)
	}
	if cfg.VirtualFactor != defaultVirtualFactor {
		t.Fatalf("default virtual factor = %d, want %d", cfg.VirtualFactor, defaultVirtualFactor)
	}
	if cfg.ForceSync {
		t.Fatal("default force_sync should be false: epoch_end waits for transport quiescence by default, per spec §9")
	}
	if cfg.PlacementProtocol != "ring" {
		t.Fatalf("default placement protocol = %q, want ring", cfg.PlacementProtocol)
	}
}

func TestLoadConfigUse3Hop(t *testing.T) {
	t.Setenv(envUse3Hop, "1")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Topology != ThreeHop {
		t.Fatalf("topology = %v, want ThreeHop", cfg.Topology)
	}
}

func TestLoadConfigVirtualFactorOverride(t *testing.T) {
	t.Setenv(envVF, "64")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.VirtualFactor != 64 {
		t.Fatalf("virtual factor = %d, want 64", cfg.VirtualFactor)
	}
}

func TestLoadConfigRejectsUnparsableVirtualFactor(t *testing.T) {
	t.Setenv(envVF, "not-a-number")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected a configuration error")
	}
}

func TestLoadConfigRejectsUnknownProtocol(t *testing.T) {
	t.Setenv(envProtocol, "rendezvous")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected a configuration error for an unknown placement protocol")
	}
}

func TestLoadConfigBypassOverride(t *testing.T) {
	t.Setenv(envBypass, "1")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Bypass {
		t.Fatal("expected Bypass=true when SHUFFLE_Bypass_placement=1")
	}
}

func TestLoadConfigForceSyncOverride(t *testing.T) {
	t.Setenv(envForceSync, "0")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ForceSync {
		t.Fatal("expected force_sync=false when SHUFFLE_Force_sync=0")
	}
}

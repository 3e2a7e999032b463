package stats

import "testing"

func TestObserveFillTracksMinMax(t *testing.T) {
	s := New()
	s.ObserveFill(10)
	s.ObserveFill(3)
	s.ObserveFill(7)

	snap := s.Snapshot()
	if snap.MinFill != 3 {
		t.Fatalf("MinFill = %d, want 3", snap.MinFill)
	}
	if snap.MaxFill != 10 {
		t.Fatalf("MaxFill = %d, want 10", snap.MaxFill)
	}
	if snap.AccQSZ != 20 {
		t.Fatalf("AccQSZ = %d, want 20", snap.AccQSZ)
	}
}

// TestEpochDrainLaw checks law #6 of spec §8 at the counter level: once a
// sender's nms and a receiver's nmr/nmd agree, the domain is drained.
func TestEpochDrainLaw(t *testing.T) {
	sender := New()
	receiver := New()

	sender.IncSent(5)
	receiver.IncReceived(5)
	receiver.IncDelivered(5)

	if sender.Snapshot().NMS != receiver.Snapshot().NMR {
		t.Fatalf("nms != nmr: %d != %d", sender.Snapshot().NMS, receiver.Snapshot().NMR)
	}
	if receiver.Snapshot().NMR != receiver.Snapshot().NMD {
		t.Fatalf("nmr != nmd: %d != %d", receiver.Snapshot().NMR, receiver.Snapshot().NMD)
	}
}

package subscription

import "testing"

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// TestSubscribeIdempotent verifies R3: sub s; sub s leaves exactly one
// edge; unsub s removes it; a second unsub s is a no-op.
func TestSubscribeIdempotent(t *testing.T) {
	idx := NewIndex()

	idx.Subscribe("10.0.0.2", "fft")
	idx.Subscribe("10.0.0.2", "fft")

	streams := idx.StreamsOf("10.0.0.2")
	if len(streams) != 1 {
		t.Fatalf("StreamsOf = %v, want exactly one edge", streams)
	}

	idx.Unsubscribe("10.0.0.2", "fft")
	if streams := idx.StreamsOf("10.0.0.2"); len(streams) != 0 {
		t.Fatalf("StreamsOf after unsub = %v, want empty", streams)
	}

	// Second unsub is a no-op, not an error.
	idx.Unsubscribe("10.0.0.2", "fft")
	if streams := idx.StreamsOf("10.0.0.2"); len(streams) != 0 {
		t.Fatalf("StreamsOf after second unsub = %v, want empty", streams)
	}
}

// TestBiIndexConsistency verifies P3: every edge enumerates from both
// sides.
func TestBiIndexConsistency(t *testing.T) {
	idx := NewIndex()
	idx.Subscribe("10.0.0.2", "fft")
	idx.Subscribe("10.0.0.3", "fft")
	idx.Subscribe("10.0.0.2", "osc")

	if !containsString(idx.SubscribersOf("fft"), "10.0.0.2") {
		t.Error("10.0.0.2 missing from SubscribersOf(fft)")
	}
	if !containsString(idx.SubscribersOf("fft"), "10.0.0.3") {
		t.Error("10.0.0.3 missing from SubscribersOf(fft)")
	}
	if !containsString(idx.StreamsOf("10.0.0.2"), "fft") {
		t.Error("fft missing from StreamsOf(10.0.0.2)")
	}
	if !containsString(idx.StreamsOf("10.0.0.2"), "osc") {
		t.Error("osc missing from StreamsOf(10.0.0.2)")
	}
}

// TestHasStreamReflectsNonEmptySubscriberSet verifies P2: a Stream
// exists iff it has at least one subscriber.
func TestHasStreamReflectsNonEmptySubscriberSet(t *testing.T) {
	idx := NewIndex()
	if idx.HasStream("fft") {
		t.Fatal("HasStream true before any subscriber")
	}

	idx.Subscribe("10.0.0.2", "fft")
	if !idx.HasStream("fft") {
		t.Fatal("HasStream false with a subscriber present")
	}

	idx.Unsubscribe("10.0.0.2", "fft")
	if idx.HasStream("fft") {
		t.Fatal("HasStream true after last subscriber left")
	}
}

// TestRemoveIPCascadesAndReportsStreams covers monitor eviction: all
// of a monitor's edges disappear, every stream it followed is
// reported, and any stream left without subscribers is pruned.
func TestRemoveIPCascadesAndReportsStreams(t *testing.T) {
	idx := NewIndex()
	idx.Subscribe("10.0.0.2", "fft")
	idx.Subscribe("10.0.0.2", "osc")
	idx.Subscribe("10.0.0.3", "fft")

	removed := idx.RemoveIP("10.0.0.2")
	if len(removed) != 2 {
		t.Fatalf("RemoveIP returned %v, want 2 stream ids", removed)
	}

	if len(idx.StreamsOf("10.0.0.2")) != 0 {
		t.Error("10.0.0.2 still has edges after RemoveIP")
	}
	// fft still has 10.0.0.3 as a subscriber.
	if !idx.HasStream("fft") {
		t.Error("fft should still exist via 10.0.0.3")
	}
	// osc had only 10.0.0.2; it must now be gone.
	if idx.HasStream("osc") {
		t.Error("osc should have been removed, no subscribers left")
	}
}

func TestRemoveIPUnknownIsNoop(t *testing.T) {
	idx := NewIndex()
	if removed := idx.RemoveIP("9.9.9.9"); removed != nil {
		t.Errorf("RemoveIP on unknown ip = %v, want nil", removed)
	}
}

package registry

import (
	"sync"
	"testing"
	"time"
)

// fakeChild is a Child that records Kill calls without touching any
// real OS process.
type fakeChild struct {
	mu     sync.Mutex
	killed bool
}

func (c *fakeChild) Kill(time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.killed = true
}

func (c *fakeChild) wasKilled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.killed
}

func newTestSupervisor(profiles []DeviceProfile) (*Supervisor, *[]*fakeChild, *sync.Mutex) {
	var mu sync.Mutex
	var spawned []*fakeChild

	spawner := func(commandLine string) (Child, error) {
		mu.Lock()
		defer mu.Unlock()
		c := &fakeChild{}
		spawned = append(spawned, c)
		return c, nil
	}

	s := NewSupervisor(profiles, WithSpawner(spawner), WithGracePeriod(10*time.Millisecond))
	return s, &spawned, &mu
}

func TestLaunchForUnknownDeviceIsNoop(t *testing.T) {
	s, spawned, mu := newTestSupervisor(nil)
	s.LaunchFor("ghost", "1.2.3.4", 60000)

	mu.Lock()
	defer mu.Unlock()
	if len(*spawned) != 0 {
		t.Errorf("spawned %d processes, want 0", len(*spawned))
	}
	if s.Has("1.2.3.4") {
		t.Error("Has(1.2.3.4) = true, want false")
	}
}

func TestLaunchForSpawnsAndRecordsProcess(t *testing.T) {
	profiles := []DeviceProfile{{DeviceID: "some_device", CommandTemplate: "some command {ip_address} {port}"}}
	s, spawned, mu := newTestSupervisor(profiles)

	// Scenario 1.
	s.LaunchFor("some_device", "1.2.3.4", 60000)

	mu.Lock()
	n := len(*spawned)
	mu.Unlock()
	if n != 1 {
		t.Fatalf("spawned %d processes, want 1", n)
	}
	if !s.Has("1.2.3.4") {
		t.Error("Has(1.2.3.4) = false, want true")
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestLaunchForBadTemplateIsNoop(t *testing.T) {
	profiles := []DeviceProfile{{DeviceID: "bad_device", CommandTemplate: "cmd {nonsense}"}}
	s, spawned, mu := newTestSupervisor(profiles)

	s.LaunchFor("bad_device", "1.2.3.4", 1)

	mu.Lock()
	defer mu.Unlock()
	if len(*spawned) != 0 {
		t.Errorf("spawned %d processes, want 0", len(*spawned))
	}
}

// TestLaunchForReplacesExisting covers scenario 6: re-registering the
// same IP kills the old process before spawning a new one, and P1
// still holds (exactly one RegisteredProcess for that IP).
func TestLaunchForReplacesExisting(t *testing.T) {
	profiles := []DeviceProfile{{DeviceID: "some_device", CommandTemplate: "some command {ip_address} {port}"}}
	s, spawned, mu := newTestSupervisor(profiles)

	s.LaunchFor("some_device", "1.2.3.4", 60000)
	mu.Lock()
	first := (*spawned)[0]
	mu.Unlock()

	s.LaunchFor("some_device", "1.2.3.4", 256)

	mu.Lock()
	n := len(*spawned)
	mu.Unlock()
	if n != 2 {
		t.Fatalf("spawned %d processes, want 2", n)
	}
	if !first.wasKilled() {
		t.Error("first process was not killed on re-registration")
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1 (P1)", s.Count())
	}
}

// TestPurgeProcessesEvictsStaleEntries exercises scenario 2 / P4: a
// process with a keepalive inside the timeout window survives one
// purge pass, and is evicted once the gap exceeds device_timeout.
func TestPurgeProcessesEvictsStaleEntries(t *testing.T) {
	profiles := []DeviceProfile{{DeviceID: "some_device", CommandTemplate: "cmd {ip_address} {port}"}}
	s, spawned, mu := newTestSupervisor(profiles)

	s.LaunchFor("some_device", "1.2.3.4", 60000)

	timeout := 3 * time.Second

	// t = T+1s: keepalive refresh.
	mu.Lock()
	child := (*spawned)[0]
	mu.Unlock()
	s.ResponseFrom("1.2.3.4")

	// t = T+3s from the refresh: 2s elapsed, under timeout, survives.
	s.mu.Lock()
	s.processes["1.2.3.4"].LastResponseEpoch = time.Now().Add(-2 * time.Second)
	s.mu.Unlock()
	s.PurgeProcesses(timeout)
	if !s.Has("1.2.3.4") {
		t.Fatal("process purged too early")
	}
	if child.wasKilled() {
		t.Fatal("process killed too early")
	}

	// t = T+5s: 4s elapsed, at/over timeout, evicted.
	s.mu.Lock()
	s.processes["1.2.3.4"].LastResponseEpoch = time.Now().Add(-4 * time.Second)
	s.mu.Unlock()
	s.PurgeProcesses(timeout)
	if s.Has("1.2.3.4") {
		t.Fatal("process not purged after timeout elapsed")
	}
	if !child.wasKilled() {
		t.Fatal("process not killed on purge")
	}
}

func TestResponseFromUnknownIPIsNoop(t *testing.T) {
	s, _, _ := newTestSupervisor(nil)
	s.ResponseFrom("9.9.9.9")
	if s.Has("9.9.9.9") {
		t.Error("ResponseFrom created a process for an unknown IP")
	}
}

func TestCleanupKillsAllSurvivors(t *testing.T) {
	profiles := []DeviceProfile{{DeviceID: "a", CommandTemplate: "cmd {ip_address} {port}"}, {DeviceID: "b", CommandTemplate: "cmd {ip_address} {port}"}}
	s, spawned, mu := newTestSupervisor(profiles)

	s.LaunchFor("a", "1.1.1.1", 1)
	s.LaunchFor("b", "2.2.2.2", 2)

	s.Cleanup()

	mu.Lock()
	defer mu.Unlock()
	for i, c := range *spawned {
		if !c.wasKilled() {
			t.Errorf("process %d not killed by Cleanup", i)
		}
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d after Cleanup, want 0", s.Count())
	}
}

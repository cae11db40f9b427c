// Package registry implements the Device Registry and Process
// Supervisor: per-IP renderer lifecycle, launched from a device's
// registration and evicted on keepalive timeout.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/airpixel-go/pixeld/pkg/log"
)

// DeviceProfile is an immutable, startup-loaded device definition: an
// identifier and the argv template used to launch its renderer.
type DeviceProfile struct {
	DeviceID        string
	CommandTemplate string
}

// RegisteredProcess is the server-side record of a live renderer. At
// most one exists per IP address at any time (P1).
type RegisteredProcess struct {
	child             Child
	IPAddress         string
	DeviceID          string
	LastResponseEpoch time.Time
}

// defaultGracePeriod bounds how long Kill waits for SIGTERM before
// escalating to an unconditional kill.
const defaultGracePeriod = 2 * time.Second

// Supervisor owns the RegisteredProcess table, keyed by device IP.
// It is safe for concurrent use: a goroutine-per-socket translation of
// the single-threaded cooperative reference model, guarded by one
// mutex held for the duration of each map mutation.
type Supervisor struct {
	mu          sync.Mutex
	profiles    map[string]DeviceProfile
	processes   map[string]*RegisteredProcess
	spawn       Spawner
	gracePeriod time.Duration
	logger      log.Logger
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithSpawner overrides the default process spawner. Tests use this to
// inject a fake Child without starting a real OS process.
func WithSpawner(spawn Spawner) Option {
	return func(s *Supervisor) { s.spawn = spawn }
}

// WithGracePeriod overrides how long Kill waits for graceful exit
// before escalating.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Supervisor) { s.gracePeriod = d }
}

// WithLogger overrides the event logger. Defaults to log.NoopLogger.
func WithLogger(l log.Logger) Option {
	return func(s *Supervisor) { s.logger = l }
}

// NewSupervisor builds a Supervisor over the given device profiles.
func NewSupervisor(profiles []DeviceProfile, opts ...Option) *Supervisor {
	byID := make(map[string]DeviceProfile, len(profiles))
	for _, p := range profiles {
		byID[p.DeviceID] = p
	}

	s := &Supervisor{
		profiles:    byID,
		processes:   make(map[string]*RegisteredProcess),
		spawn:       SpawnProcess,
		gracePeriod: defaultGracePeriod,
		logger:      log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LaunchFor starts (or replaces) the renderer for deviceID at ip,
// targeting the device's UDP frame port. It fails open: an unknown
// device_id, a bad template, or a spawn failure is warn-logged and
// otherwise silent, per §4.3.
func (s *Supervisor) LaunchFor(deviceID, ip string, port uint16) {
	s.mu.Lock()
	profile, ok := s.profiles[deviceID]
	if !ok {
		s.mu.Unlock()
		s.logger.Log(log.Event{
			Timestamp: time.Now(),
			Component: log.ComponentSupervisor,
			Category:  log.CategoryRejected,
			Level:     log.LevelWarn,
			DeviceID:  deviceID,
			RemoteAddr: ip,
			Message:   "unknown device_id",
		})
		return
	}

	commandLine, err := formatCommandLine(profile.CommandTemplate, ip, port)
	if err != nil {
		s.mu.Unlock()
		s.logger.Log(log.Event{
			Timestamp: time.Now(),
			Component: log.ComponentSupervisor,
			Category:  log.CategoryRejected,
			Level:     log.LevelWarn,
			DeviceID:  deviceID,
			RemoteAddr: ip,
			Err:       err.Error(),
		})
		return
	}

	existing := s.processes[ip]
	delete(s.processes, ip)
	s.mu.Unlock()

	if existing != nil {
		existing.child.Kill(s.gracePeriod)
		s.logger.Log(log.Event{
			Timestamp: time.Now(),
			Component: log.ComponentSupervisor,
			Category:  log.CategoryKilled,
			Level:     log.LevelInfo,
			DeviceID:  existing.DeviceID,
			RemoteAddr: ip,
			Message:   "replaced by re-registration",
		})
	}

	child, err := s.spawn(commandLine)
	if err != nil {
		s.logger.Log(log.Event{
			Timestamp: time.Now(),
			Component: log.ComponentSupervisor,
			Category:  log.CategoryRejected,
			Level:     log.LevelWarn,
			DeviceID:  deviceID,
			RemoteAddr: ip,
			Err:       fmt.Sprintf("spawn failed: %v", err),
		})
		return
	}

	s.mu.Lock()
	s.processes[ip] = &RegisteredProcess{
		child:             child,
		IPAddress:         ip,
		DeviceID:          deviceID,
		LastResponseEpoch: time.Now(),
	}
	s.mu.Unlock()

	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentSupervisor,
		Category:  log.CategoryLaunched,
		Level:     log.LevelInfo,
		DeviceID:  deviceID,
		RemoteAddr: ip,
		Message:   commandLine,
	})
}

// ResponseFrom records a fresh keepalive from ip. A no-op if ip has no
// RegisteredProcess.
func (s *Supervisor) ResponseFrom(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.processes[ip]; ok {
		p.LastResponseEpoch = time.Now()
	}
}

// Count returns the number of live RegisteredProcess entries. Exposed
// for tests asserting P1 and purge behavior.
func (s *Supervisor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processes)
}

// Has reports whether ip currently has a RegisteredProcess.
func (s *Supervisor) Has(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processes[ip]
	return ok
}

// PurgeProcesses evicts every RegisteredProcess whose last response is
// at least timeout old.
func (s *Supervisor) PurgeProcesses(timeout time.Duration) {
	cutoff := time.Now().Add(-timeout)

	s.mu.Lock()
	var stale []*RegisteredProcess
	for ip, p := range s.processes {
		if !p.LastResponseEpoch.After(cutoff) {
			stale = append(stale, p)
			delete(s.processes, ip)
		}
	}
	s.mu.Unlock()

	for _, p := range stale {
		p.child.Kill(s.gracePeriod)
		s.logger.Log(log.Event{
			Timestamp: time.Now(),
			Component: log.ComponentSupervisor,
			Category:  log.CategoryPurged,
			Level:     log.LevelInfo,
			DeviceID:  p.DeviceID,
			RemoteAddr: p.IPAddress,
			Message:   "device_timeout exceeded",
		})
	}
}

// RunPurgeLoop runs PurgeProcesses every timeout/4 until ctx is
// cancelled, giving each RegisteredProcess up to two missed heartbeats
// before eviction.
func (s *Supervisor) RunPurgeLoop(ctx context.Context, timeout time.Duration) {
	ticker := time.NewTicker(timeout / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PurgeProcesses(timeout)
		}
	}
}

// Cleanup kills every surviving child. Must be registered as an exit
// hook so no renderer outlives the server process.
func (s *Supervisor) Cleanup() {
	s.mu.Lock()
	procs := make([]*RegisteredProcess, 0, len(s.processes))
	for _, p := range s.processes {
		procs = append(procs, p)
	}
	s.processes = make(map[string]*RegisteredProcess)
	s.mu.Unlock()

	for _, p := range procs {
		p.child.Kill(s.gracePeriod)
	}
}

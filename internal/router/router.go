// Package router implements the Monitoring Ingest & Router: the
// pub/sub fan-out between renderer-published monitoring packages and
// subscribed GUI monitor clients.
package router

import (
	"context"
	"sync"
	"time"

	"github.com/airpixel-go/pixeld/internal/wire"
	"github.com/airpixel-go/pixeld/pkg/log"
	"github.com/airpixel-go/pixeld/pkg/subscription"
)

// MonitorClient is the server-side record of a subscribed external
// observer. One exists per IP address; created on the first conn
// command, refreshed by monitor keepalive, evicted after
// subscription_timeout with no heartbeat.
type MonitorClient struct {
	IPAddress        string
	UDPPort          uint16
	LastMessageEpoch time.Time
}

// Router owns the MonitorClient table and the Subscription index. It
// is the only subsystem that mutates either.
type Router struct {
	mu       sync.Mutex
	monitors map[string]*MonitorClient
	subs     *subscription.Index
	sender   Sender
	logger   log.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger overrides the event logger. Defaults to log.NoopLogger.
func WithLogger(l log.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// NewRouter builds a Router that fans datagrams out over sender.
func NewRouter(sender Sender, opts ...Option) *Router {
	r := &Router{
		monitors: make(map[string]*MonitorClient),
		subs:     subscription.NewIndex(),
		sender:   sender,
		logger:   log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Conn registers or refreshes a MonitorClient for ip, targeting port
// for fan-out datagrams.
func (r *Router) Conn(ip string, port uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.monitors[ip]; ok {
		m.UDPPort = port
		m.LastMessageEpoch = time.Now()
		return
	}
	r.monitors[ip] = &MonitorClient{
		IPAddress:        ip,
		UDPPort:          port,
		LastMessageEpoch: time.Now(),
	}
	r.logger.Log(log.Event{
		Timestamp:  time.Now(),
		Component:  log.ComponentSubscriptionControl,
		Category:   log.CategoryAccepted,
		Level:      log.LevelInfo,
		RemoteAddr: ip,
	})
}

// Sub adds the (ip, streamID) edge. Requires a prior conn; silently
// does nothing otherwise (§4.4).
func (r *Router) Sub(ip, streamID string) {
	r.mu.Lock()
	_, known := r.monitors[ip]
	r.mu.Unlock()
	if !known {
		return
	}

	r.subs.Subscribe(ip, streamID)
	r.logger.Log(log.Event{
		Timestamp:  time.Now(),
		Component:  log.ComponentSubscriptionControl,
		Category:   log.CategorySubscribed,
		Level:      log.LevelInfo,
		RemoteAddr: ip,
		StreamID:   streamID,
	})
}

// Unsub removes the (ip, streamID) edge. A no-op if absent.
func (r *Router) Unsub(ip, streamID string) {
	r.subs.Unsubscribe(ip, streamID)
	r.logger.Log(log.Event{
		Timestamp:  time.Now(),
		Component:  log.ComponentSubscriptionControl,
		Category:   log.CategoryUnsubscribed,
		Level:      log.LevelInfo,
		RemoteAddr: ip,
		StreamID:   streamID,
	})
}

// MonitorKeepalive refreshes the LastMessageEpoch of the MonitorClient
// at ip. It never creates one: a keepalive from a peer that never
// issued conn is dropped (§9 Open Question).
func (r *Router) MonitorKeepalive(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.monitors[ip]; ok {
		m.LastMessageEpoch = time.Now()
	}
}

// Ingest parses raw as a monitoring Package and fans the original
// datagram out to every subscriber of its stream. Malformed packages
// and unknown streams are dropped.
func (r *Router) Ingest(raw []byte) {
	pkg, err := wire.ParsePackage(raw)
	if err != nil {
		r.logger.Log(log.Event{
			Timestamp: time.Now(),
			Component: log.ComponentMonitoringIngest,
			Category:  log.CategoryDropped,
			Level:     log.LevelDebug,
			Err:       err.Error(),
		})
		return
	}

	if !r.subs.HasStream(pkg.StreamID) {
		return
	}

	for _, ip := range r.subs.SubscribersOf(pkg.StreamID) {
		r.mu.Lock()
		m, ok := r.monitors[ip]
		r.mu.Unlock()
		if !ok {
			continue
		}
		// Per-datagram send errors are swallowed: the monitor will be
		// evicted via its own keepalive timeout if it is really gone.
		_ = r.sender.SendTo(m.IPAddress, m.UDPPort, pkg.Raw)
		r.logger.Log(log.Event{
			Timestamp:  time.Now(),
			Component:  log.ComponentRouter,
			Category:   log.CategoryFanout,
			Level:      log.LevelDebug,
			RemoteAddr: m.IPAddress,
			StreamID:   pkg.StreamID,
		})
	}
}

// PurgeMonitors evicts every MonitorClient whose keepalive lapsed more
// than timeout ago, cascading removal of its subscriptions and any
// stream left without a subscriber.
func (r *Router) PurgeMonitors(timeout time.Duration) {
	cutoff := time.Now().Add(-timeout)

	r.mu.Lock()
	var stale []string
	for ip, m := range r.monitors {
		if m.LastMessageEpoch.Before(cutoff) {
			stale = append(stale, ip)
			delete(r.monitors, ip)
		}
	}
	r.mu.Unlock()

	for _, ip := range stale {
		r.subs.RemoveIP(ip)
		r.logger.Log(log.Event{
			Timestamp:  time.Now(),
			Component:  log.ComponentSubscriptionControl,
			Category:   log.CategoryPurged,
			Level:      log.LevelInfo,
			RemoteAddr: ip,
			Message:    "subscription_timeout exceeded",
		})
	}
}

// RunPurgeLoop runs PurgeMonitors every timeout/4 until ctx is
// cancelled.
func (r *Router) RunPurgeLoop(ctx context.Context, timeout time.Duration) {
	ticker := time.NewTicker(timeout / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.PurgeMonitors(timeout)
		}
	}
}

// HasMonitor reports whether ip currently has a MonitorClient. Exposed
// for tests.
func (r *Router) HasMonitor(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.monitors[ip]
	return ok
}

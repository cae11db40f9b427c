// Package discovery advertises the coordination server over mDNS so
// devices and monitors on the local network can locate it without a
// hardcoded address.
package discovery

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// ServiceType is the mDNS service type devices browse for.
const ServiceType = "_airpixel._udp"

// Domain is the mDNS domain advertised in.
const Domain = "local."

// Advertiser registers and retracts the server's mDNS presence.
type Advertiser struct {
	mu     sync.Mutex
	server *zeroconf.Server
}

// Ports carries the endpoints a browsing client needs, published as
// TXT records alongside the advertised registration port.
type Ports struct {
	Registration         int
	DeviceKeepalive       int
	Subscription          int
	MonitorKeepalive      int
}

// Advertise registers instanceName under ServiceType, publishing ports
// as TXT records. Calling Advertise again replaces any prior
// registration.
func (a *Advertiser) Advertise(instanceName string, ports Ports) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	txt := []string{
		"udp_port=" + strconv.Itoa(ports.DeviceKeepalive),
		"subscription_port=" + strconv.Itoa(ports.Subscription),
		"monitor_keepalive_port=" + strconv.Itoa(ports.MonitorKeepalive),
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		Domain,
		ports.Registration,
		txt,
		nil,
	)
	if err != nil {
		return fmt.Errorf("discovery: register %s: %w", instanceName, err)
	}

	a.server = server
	return nil
}

// Stop retracts the advertisement, if any.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

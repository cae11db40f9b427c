package server

import (
	"fmt"
	"net"
	"time"

	"github.com/airpixel-go/pixeld/internal/registry"
	"github.com/airpixel-go/pixeld/internal/wire"
	"github.com/airpixel-go/pixeld/pkg/log"
)

// deviceDatagramBufferSize bounds a single device keepalive datagram;
// the wire format is two short decimal integers so this is generous.
const deviceDatagramBufferSize = 512

// DeviceKeepaliveListener receives periodic liveness reports from
// registered devices and refreshes their RegisteredProcess.
type DeviceKeepaliveListener struct {
	conn       *net.UDPConn
	supervisor *registry.Supervisor
	logger     log.Logger
	done       chan struct{}
}

// NewDeviceKeepaliveListener binds addr for device keepalive
// datagrams.
func NewDeviceKeepaliveListener(addr string, supervisor *registry.Supervisor, logger log.Logger) (*DeviceKeepaliveListener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &DeviceKeepaliveListener{
		conn:       conn,
		supervisor: supervisor,
		logger:     logger,
		done:       make(chan struct{}),
	}, nil
}

// Addr returns the bound UDP address.
func (l *DeviceKeepaliveListener) Addr() net.Addr { return l.conn.LocalAddr() }

// Start runs the receive loop in the background until Stop is called.
func (l *DeviceKeepaliveListener) Start() {
	go l.receiveLoop()
}

// Stop closes the socket, unblocking the receive loop.
func (l *DeviceKeepaliveListener) Stop() error {
	err := l.conn.Close()
	<-l.done
	return err
}

func (l *DeviceKeepaliveListener) receiveLoop() {
	defer close(l.done)
	buf := make([]byte, deviceDatagramBufferSize)
	for {
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		l.handle(addr.IP.String(), buf[:n])
	}
}

func (l *DeviceKeepaliveListener) handle(ip string, data []byte) {
	keepalive, err := wire.ParseDeviceKeepalive(data)
	if err != nil {
		return
	}

	l.supervisor.ResponseFrom(ip)

	if keepalive.Frames > 0 {
		l.logger.Log(log.Event{
			Timestamp:  time.Now(),
			Component:  log.ComponentKeepalive,
			Category:   log.CategoryAccepted,
			Level:      log.LevelDebug,
			RemoteAddr: ip,
			Message:    fmt.Sprintf("render rate %.4f", keepalive.Rate()),
		})
	}
}

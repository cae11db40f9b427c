package server

import (
	"net"

	"github.com/airpixel-go/pixeld/internal/router"
)

// monitorDatagramBufferSize can be small since keepalive contents are
// ignored entirely (§6.7).
const monitorDatagramBufferSize = 64

// MonitorKeepaliveListener receives heartbeats from monitor clients.
// Datagram contents are ignored; only the sender's address matters.
type MonitorKeepaliveListener struct {
	conn   *net.UDPConn
	router *router.Router
	done   chan struct{}
}

// NewMonitorKeepaliveListener binds addr for monitor keepalive
// datagrams.
func NewMonitorKeepaliveListener(addr string, r *router.Router) (*MonitorKeepaliveListener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return nil, err
	}
	return &MonitorKeepaliveListener{conn: conn, router: r, done: make(chan struct{})}, nil
}

// Addr returns the bound UDP address.
func (l *MonitorKeepaliveListener) Addr() net.Addr { return l.conn.LocalAddr() }

// Start runs the receive loop in the background until Stop is called.
func (l *MonitorKeepaliveListener) Start() {
	go l.receiveLoop()
}

// Stop closes the socket, unblocking the receive loop.
func (l *MonitorKeepaliveListener) Stop() error {
	err := l.conn.Close()
	<-l.done
	return err
}

func (l *MonitorKeepaliveListener) receiveLoop() {
	defer close(l.done)
	buf := make([]byte, monitorDatagramBufferSize)
	for {
		_, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		l.router.MonitorKeepalive(addr.IP.String())
	}
}

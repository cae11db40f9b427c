package server

import (
	"net"
	"os"

	"github.com/airpixel-go/pixeld/internal/router"
)

// ingestDatagramBufferSize bounds a single monitoring package. Renderer
// payloads (FFT buffers, intermediate signals) are small relative to
// this.
const ingestDatagramBufferSize = 65536

// IngestListener receives monitoring packages on a local datagram
// socket and hands each one to the Router for fan-out.
type IngestListener struct {
	conn       net.PacketConn
	socketPath string // non-empty if this is a filesystem unix socket, for cleanup
	router     *router.Router
	done       chan struct{}
}

// NewUnixIngestListener binds a unix datagram socket at path, per the
// monitoring ingest design (§9): the ingest path is a filesystem-named
// datagram socket.
func NewUnixIngestListener(path string, r *router.Router) (*IngestListener, error) {
	_ = os.Remove(path) // stale socket file from a prior run
	conn, err := net.ListenPacket("unixgram", path)
	if err != nil {
		return nil, err
	}
	return &IngestListener{conn: conn, socketPath: path, router: r, done: make(chan struct{})}, nil
}

// NewUDPIngestListener binds a loopback UDP port instead of a unix
// socket, the substitute §9 names for platforms without unix datagram
// sockets.
func NewUDPIngestListener(addr string, r *router.Router) (*IngestListener, error) {
	conn, err := net.ListenPacket("udp4", addr)
	if err != nil {
		return nil, err
	}
	return &IngestListener{conn: conn, router: r, done: make(chan struct{})}, nil
}

// Addr returns the bound local address.
func (l *IngestListener) Addr() net.Addr { return l.conn.LocalAddr() }

// Start runs the receive loop in the background until Stop is called.
func (l *IngestListener) Start() {
	go l.receiveLoop()
}

// Stop closes the socket and removes any backing unix socket file.
func (l *IngestListener) Stop() error {
	err := l.conn.Close()
	<-l.done
	if l.socketPath != "" {
		_ = os.Remove(l.socketPath)
	}
	return err
}

func (l *IngestListener) receiveLoop() {
	defer close(l.done)
	buf := make([]byte, ingestDatagramBufferSize)
	for {
		n, _, err := l.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])
		l.router.Ingest(raw)
	}
}

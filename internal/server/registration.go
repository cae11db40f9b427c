// Package server wires the wire framing, the supervisor, and the
// router to live sockets: the five network endpoints described in the
// system overview. Each listener follows the same accept-loop shape —
// Start spawns a goroutine, Stop cancels and waits — translating the
// single-threaded cooperative reference model into goroutine-per-
// socket plus the shared mutexes the supervisor and router already
// hold internally.
package server

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/airpixel-go/pixeld/internal/registry"
	"github.com/airpixel-go/pixeld/internal/wire"
	"github.com/airpixel-go/pixeld/pkg/log"
)

// RegistrationListener accepts device registration connections and
// launches or replaces the corresponding renderer.
type RegistrationListener struct {
	listener         net.Listener
	supervisor       *registry.Supervisor
	keepaliveUDPPort uint16
	logger           log.Logger
	wg               sync.WaitGroup
}

// NewRegistrationListener binds addr and returns a listener ready to
// Start. keepaliveUDPPort is advertised to every device in the
// registration ack.
func NewRegistrationListener(addr string, supervisor *registry.Supervisor, keepaliveUDPPort uint16, logger log.Logger) (*RegistrationListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &RegistrationListener{
		listener:         ln,
		supervisor:       supervisor,
		keepaliveUDPPort: keepaliveUDPPort,
		logger:           logger,
	}, nil
}

// Addr returns the bound listen address.
func (l *RegistrationListener) Addr() net.Addr { return l.listener.Addr() }

// Start runs the accept loop in the background until Stop is called.
func (l *RegistrationListener) Start() {
	l.wg.Add(1)
	go l.acceptLoop()
}

// Stop closes the listener and waits for in-flight connections to
// finish.
func (l *RegistrationListener) Stop() error {
	err := l.listener.Close()
	l.wg.Wait()
	return err
}

func (l *RegistrationListener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			return
		}
		l.wg.Add(1)
		go l.handle(conn)
	}
}

func (l *RegistrationListener) handle(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	connID := uuid.New().String()

	frame, err := wire.ReadRegistrationFrame(bufio.NewReader(conn))
	if err != nil {
		l.logger.Log(log.Event{
			Timestamp:    time.Now(),
			Component:    log.ComponentRegistration,
			Category:     log.CategoryDropped,
			Level:        log.LevelWarn,
			RemoteAddr:   conn.RemoteAddr().String(),
			ConnectionID: connID,
			Err:          err.Error(),
		})
		return
	}

	ip := peerIP(conn.RemoteAddr())
	l.logger.Log(log.Event{
		Timestamp:    time.Now(),
		Component:    log.ComponentRegistration,
		Category:     log.CategoryAccepted,
		Level:        log.LevelInfo,
		RemoteAddr:   conn.RemoteAddr().String(),
		ConnectionID: connID,
		DeviceID:     frame.DeviceID,
	})
	l.supervisor.LaunchFor(frame.DeviceID, ip, frame.Port)

	_, _ = conn.Write(wire.EncodeRegistrationAck(l.keepaliveUDPPort))
}

// peerIP strips the port from a net.Addr's string form.
func peerIP(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return strings.TrimSpace(addr.String())
	}
	return host
}

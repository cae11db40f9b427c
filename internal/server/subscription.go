package server

import (
	"bufio"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/airpixel-go/pixeld/internal/router"
	"github.com/airpixel-go/pixeld/internal/wire"
	"github.com/airpixel-go/pixeld/pkg/log"
)

// SubscriptionListener accepts one subscription-control command per
// connection: conn, sub, or unsub.
type SubscriptionListener struct {
	listener                net.Listener
	router                  *router.Router
	monitorKeepaliveUDPPort uint16
	logger                  log.Logger
	wg                      sync.WaitGroup
}

// NewSubscriptionListener binds addr. monitorKeepaliveUDPPort is the
// port advertised in a successful conn response.
func NewSubscriptionListener(addr string, r *router.Router, monitorKeepaliveUDPPort uint16, logger log.Logger) (*SubscriptionListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &SubscriptionListener{listener: ln, router: r, monitorKeepaliveUDPPort: monitorKeepaliveUDPPort, logger: logger}, nil
}

// Addr returns the bound listen address.
func (l *SubscriptionListener) Addr() net.Addr { return l.listener.Addr() }

// Start runs the accept loop in the background until Stop is called.
func (l *SubscriptionListener) Start() {
	l.wg.Add(1)
	go l.acceptLoop()
}

// Stop closes the listener and waits for in-flight connections to
// finish.
func (l *SubscriptionListener) Stop() error {
	err := l.listener.Close()
	l.wg.Wait()
	return err
}

func (l *SubscriptionListener) acceptLoop() {
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

func (l *SubscriptionListener) handle(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	connID := uuid.New().String()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		// Peer closed without sending anything; nothing to respond to.
		return
	}

	cmd, err := wire.ParseCommand(line)
	if err != nil {
		l.logRejected(conn, connID, "malformed command")
		_, _ = conn.Write(wire.EncodeError("malformed command"))
		return
	}

	ip := peerIP(conn.RemoteAddr())

	switch cmd.Verb {
	case wire.VerbConn:
		port, err := cmd.ConnPort()
		if err != nil {
			l.logRejected(conn, connID, wire.ErrPortNotInt)
			_, _ = conn.Write(wire.EncodeError(wire.ErrPortNotInt))
			return
		}
		l.router.Conn(ip, port)
		_, _ = conn.Write(wire.EncodeAccepted(strconv.Itoa(int(l.monitorKeepaliveUDPPort))))

	case wire.VerbSub:
		l.router.Sub(ip, cmd.Arg)
		_, _ = conn.Write(wire.EncodeAccepted("acc"))

	case wire.VerbUnsub:
		l.router.Unsub(ip, cmd.Arg)
		_, _ = conn.Write(wire.EncodeAccepted("acc"))

	default:
		l.logRejected(conn, connID, wire.ErrUnrecognizedVerb)
		_, _ = conn.Write(wire.EncodeError(wire.ErrUnrecognizedVerb))
	}
}

func (l *SubscriptionListener) logRejected(conn net.Conn, connID, reason string) {
	l.logger.Log(log.Event{
		Timestamp:    time.Now(),
		Component:    log.ComponentSubscriptionControl,
		Category:     log.CategoryRejected,
		Level:        log.LevelWarn,
		RemoteAddr:   conn.RemoteAddr().String(),
		ConnectionID: connID,
		Err:          reason,
	})
}

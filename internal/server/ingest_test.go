package server

import (
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/airpixel-go/pixeld/internal/router"
	"github.com/stretchr/testify/require"
)

// TestUDPIngestListenerFansOut covers scenario 4's ingest step using
// the loopback-UDP substitute for the unix datagram socket.
func TestUDPIngestListenerFansOut(t *testing.T) {
	sender := &recordingSender{}
	r := router.NewRouter(sender)
	r.Conn("10.0.0.2", 54321)
	r.Sub("10.0.0.2", "fft")

	ln, err := NewUDPIngestListener("127.0.0.1:0", r)
	require.NoError(t, err)
	ln.Start()
	defer ln.Stop()

	conn, err := net.Dial("udp4", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("fft\x00\x01\x02\x03"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sender.count() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestUnixIngestListenerFansOut(t *testing.T) {
	sender := &recordingSender{}
	r := router.NewRouter(sender)
	r.Conn("10.0.0.2", 54321)
	r.Sub("10.0.0.2", "fft")

	socketPath := filepath.Join(t.TempDir(), "ingest.sock")
	ln, err := NewUnixIngestListener(socketPath, r)
	require.NoError(t, err)
	ln.Start()
	defer ln.Stop()

	conn, err := net.Dial("unixgram", socketPath)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("fft\x00\x01\x02\x03"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sender.count() == 1
	}, time.Second, 10*time.Millisecond)
}

type recordingSender struct {
	mu sync.Mutex
	n  int
}

func (s *recordingSender) SendTo(string, uint16, []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

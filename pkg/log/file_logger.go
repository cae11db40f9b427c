package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends Events to a .plog file, one CBOR item per Log
// call, so the file pixel-log reads back is exactly the stream pixeld
// wrote while running. Safe for concurrent use: every logging listener
// and purge loop in the server shares one FileLogger instance.
type FileLogger struct {
	file    *os.File
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewFileLogger opens path for appending, creating it with mode 0644
// if it doesn't already exist. A server restarted against the same
// path resumes the same event stream rather than truncating history.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Log appends event. A post-Close call is silently dropped rather than
// returning an error, since Logger.Log has no error return for
// implementations to surface one through.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	_ = l.encoder.Encode(event)
}

// Close flushes and closes the underlying file. Idempotent: a second
// Close is a no-op, and every Log call after the first Close is
// dropped.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)

package wire

import (
	"bytes"
	"errors"
)

// streamSeparator terminates the stream ID in a monitoring Package.
const streamSeparator = 0x00

// ErrEmptyStreamID indicates a Package had a zero-length stream identifier.
var ErrEmptyStreamID = errors.New("wire: package has empty stream id")

// ErrNoSeparator indicates a Package had no 0x00 byte at all.
var ErrNoSeparator = errors.New("wire: package missing stream id separator")

// Package is a monitoring datagram: a named stream identifier and its
// payload. Raw holds the complete original datagram bytes, since the
// router forwards packages to subscribers verbatim rather than
// re-encoding the payload alone (§6.4).
type Package struct {
	StreamID string
	Payload  []byte
	Raw      []byte
}

// ParsePackage parses a monitoring ingest datagram:
// [stream_id bytes][0x00][payload bytes...].
// An empty stream identifier is invalid.
func ParsePackage(raw []byte) (Package, error) {
	idx := bytes.IndexByte(raw, streamSeparator)
	if idx < 0 {
		return Package{}, ErrNoSeparator
	}
	if idx == 0 {
		return Package{}, ErrEmptyStreamID
	}
	return Package{
		StreamID: string(raw[:idx]),
		Payload:  raw[idx+1:],
		Raw:      raw,
	}, nil
}

// SerializePackage renders a Package to its wire form. Used by tests and
// by renderer-side helpers; the router itself never needs to
// re-serialize since it forwards Raw bytes directly.
func SerializePackage(streamID string, payload []byte) ([]byte, error) {
	if streamID == "" {
		return nil, ErrEmptyStreamID
	}
	buf := make([]byte, 0, len(streamID)+1+len(payload))
	buf = append(buf, streamID...)
	buf = append(buf, streamSeparator)
	buf = append(buf, payload...)
	return buf, nil
}

// Package wire implements the small binary and text framings that bind
// devices, renderers, and monitor clients to the coordination server:
// the device registration frame, the registration response, the device
// keepalive text line, the monitoring Package envelope, and the monitor
// subscription command/response lines.
//
// All multi-byte integers are big-endian, per the wire convention.
package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
)

// PortSize is the width, in bytes, of the big-endian port field that
// leads a registration frame.
const PortSize = 2

// Separator terminates a registration frame.
const Separator = '\n'

// ErrFrameTooShort indicates a registration frame had fewer bytes than
// the fixed port field requires.
var ErrFrameTooShort = errors.New("wire: registration frame shorter than port field")

// RegistrationFrame is the parsed device registration request: the UDP
// port on the device that should receive rendered frames, and the
// device's configured identifier.
type RegistrationFrame struct {
	Port     uint16
	DeviceID string
}

// ReadRegistrationFrame reads bytes from r up to and including the first
// 0x0A byte and parses them as a RegistrationFrame. Bytes arriving in
// multiple reads (a split TCP write) are transparently reassembled,
// since bufio.Reader buffers across Read calls.
func ReadRegistrationFrame(r *bufio.Reader) (RegistrationFrame, error) {
	line, err := r.ReadBytes(Separator)
	if err != nil {
		return RegistrationFrame{}, err
	}
	// Drop the trailing separator before parsing the fixed layout.
	body := line[:len(line)-1]
	return ParseRegistrationFrame(body)
}

// ParseRegistrationFrame parses a pre-separator registration frame body:
// [u16 port][UTF-8 device_id].
func ParseRegistrationFrame(body []byte) (RegistrationFrame, error) {
	if len(body) < PortSize {
		return RegistrationFrame{}, ErrFrameTooShort
	}
	port := binary.BigEndian.Uint16(body[:PortSize])
	return RegistrationFrame{
		Port:     port,
		DeviceID: string(body[PortSize:]),
	}, nil
}

// EncodeRegistrationAck encodes the registration response: the UDP port
// of the device keepalive listener, as 2 bytes big-endian.
func EncodeRegistrationAck(keepaliveUDPPort uint16) []byte {
	buf := make([]byte, PortSize)
	binary.BigEndian.PutUint16(buf, keepaliveUDPPort)
	return buf
}

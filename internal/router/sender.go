package router

import "net"

// Sender delivers a fan-out datagram to a monitor's UDP destination.
// Per-datagram errors are the caller's to swallow (§7: "drop, no log,
// no subscription removal").
type Sender interface {
	SendTo(ip string, port uint16, data []byte) error
}

// UDPSender is the default Sender: one outbound UDP socket, owned by
// the router and written to only from its own task.
type UDPSender struct {
	conn *net.UDPConn
}

// NewUDPSender opens an unconnected UDP socket for sending fan-out
// datagrams to arbitrary monitor destinations.
func NewUDPSender() (*UDPSender, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, err
	}
	return &UDPSender{conn: conn}, nil
}

// SendTo writes data to (ip, port).
func (s *UDPSender) SendTo(ip string, port uint16, data []byte) error {
	addr := &net.UDPAddr{IP: net.ParseIP(ip), Port: int(port)}
	_, err := s.conn.WriteToUDP(data, addr)
	return err
}

// Close releases the outbound socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}

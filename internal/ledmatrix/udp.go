package ledmatrix

import (
	"fmt"
	"net"

	"starfinder/internal/pipeline"
)

type udpConn interface {
	Write(p []byte) (int, error)
	Close() error
}

// UDPEmitter sends one frame datagram per sample to a fixed destination,
// typically a matrix simulator on the LAN.
type UDPEmitter struct {
	dest string
	conn udpConn
}

func OpenUDP(dest string) (*UDPEmitter, error) {
	addr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("ledmatrix: resolve %s: %w", dest, err)
	}
	// DialUDP selects a suitable local address automatically.
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("ledmatrix: dial udp %s: %w", dest, err)
	}
	return &UDPEmitter{dest: dest, conn: conn}, nil
}

func newUDPEmitter(dest string, conn udpConn) *UDPEmitter {
	return &UDPEmitter{dest: dest, conn: conn}
}

func (e *UDPEmitter) Emit(out pipeline.Output) error {
	b, err := marshalFrame(out)
	if err != nil {
		return err
	}
	if _, err := e.conn.Write(b); err != nil {
		return fmt.Errorf("ledmatrix: send to %s: %w", e.dest, err)
	}
	return nil
}

func (e *UDPEmitter) Close() error {
	if e.conn == nil {
		return nil
	}
	return e.conn.Close()
}

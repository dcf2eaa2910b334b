// Package ledmatrix emits rendered frames to the matrix hardware and to
// network consumers (MQTT, UDP simulators).
package ledmatrix

import (
	"fmt"
	"io"
	"strings"

	"github.com/jacobsa/go-serial/serial"

	"starfinder/internal/pipeline"
)

// SerialEmitter drives the matrix controller over its line protocol:
// star-field frames as packed row words ("T,..." for the top row group,
// "B,..." for the bottom), seek frames as a single bearing command
// "A,<angle>,<distance>,<in_view>" that the controller turns into an arrow.
type SerialEmitter struct {
	w io.WriteCloser
}

func OpenSerial(port string, baudRate uint) (*SerialEmitter, error) {
	conn, err := serial.Open(serial.OpenOptions{
		PortName:        port,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		ParityMode:      serial.PARITY_NONE,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("ledmatrix: open %s: %w", port, err)
	}
	return NewSerialEmitter(conn), nil
}

// NewSerialEmitter wraps an already-open port (or a test writer).
func NewSerialEmitter(w io.WriteCloser) *SerialEmitter {
	return &SerialEmitter{w: w}
}

func (e *SerialEmitter) Emit(out pipeline.Output) error {
	var b strings.Builder
	if out.Mode == pipeline.ModeSeek {
		inView := 0
		if out.Seek.InView {
			inView = 1
		}
		fmt.Fprintf(&b, "A,%.1f,%.1f,%d\n", out.Seek.AngleDeg, out.Seek.DistanceDeg, inView)
	} else {
		writeRowLine(&b, 'T', out.Packet.Top)
		writeRowLine(&b, 'B', out.Packet.Bottom)
	}
	if _, err := io.WriteString(e.w, b.String()); err != nil {
		return fmt.Errorf("ledmatrix: serial write: %w", err)
	}
	return nil
}

func writeRowLine(b *strings.Builder, tag byte, rows []uint16) {
	b.WriteByte(tag)
	for _, r := range rows {
		fmt.Fprintf(b, ",%d", r)
	}
	b.WriteByte('\n')
}

func (e *SerialEmitter) Close() error {
	return e.w.Close()
}

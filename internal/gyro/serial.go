package gyro

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
)

// SerialSource reads the sensor board's line protocol from a serial port.
// The board pushes "G,<gx>,<gy>,<gz>" at a roughly periodic rate; any other
// line types on the wire are ignored here.
type SerialSource struct {
	port   io.ReadWriteCloser
	reader *bufio.Reader
	now    func() time.Time
}

// OpenSerial opens the sensor serial port.
func OpenSerial(portName string, baudRate uint) (*SerialSource, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return nil, fmt.Errorf("gyro: open %s: %w", portName, err)
	}
	log.Printf("gyro: serial port opened on %s at %d baud", portName, baudRate)
	return NewSerialSource(port), nil
}

// NewSerialSource wraps an already-open stream; split out for tests.
func NewSerialSource(port io.ReadWriteCloser) *SerialSource {
	return &SerialSource{
		port:   port,
		reader: bufio.NewReader(port),
		now:    time.Now,
	}
}

// Next returns the next well-formed gyro sample, skipping unrelated and
// malformed lines. It returns an error only when the port itself fails.
func (s *SerialSource) Next() (Sample, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return Sample{}, fmt.Errorf("gyro: serial read: %w", err)
		}
		sample, ok, err := ParseLine(line, s.now())
		if err != nil {
			// Noisy wire or partial line: drop the sample, keep reading.
			log.Printf("gyro: dropping sample: %v", err)
			continue
		}
		if !ok {
			continue
		}
		return sample, nil
	}
}

func (s *SerialSource) Close() error {
	return s.port.Close()
}

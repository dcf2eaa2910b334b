// Package button wires the enclosure push buttons to pipeline actions: one
// button starts a calibration, one zeros the orientation.
package button

import "context"

// Controller is the subset of pipeline actions the buttons can trigger.
type Controller interface {
	Calibrate(ctx context.Context) error
	Reset(ctx context.Context) error
}

// Config names the BCM pins. A zero ResetPin leaves that button unwired.
type Config struct {
	CalibratePin int
	ResetPin     int
}

package gyro

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sample is one instantaneous angular-velocity reading in deg/s. It is not
// retained beyond a single integration step.
type Sample struct {
	GX float64
	GY float64
	GZ float64
	At time.Time
}

// Source is anything that can deliver gyroscope samples over time: the
// serial sensor board, a scripted replay, or a test stub. Next blocks until
// a sample is available and returns a non-nil error only when the source is
// exhausted or broken.
type Source interface {
	Next() (Sample, error)
}

// ParseLine parses one sensor-board line of the form "G,<gx>,<gy>,<gz>".
// Lines with a different prefix are not gyro lines and return ok=false with
// no error; malformed gyro lines return an error so the caller can drop them.
func ParseLine(line string, at time.Time) (Sample, bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "G,") {
		return Sample{}, false, nil
	}
	fields := strings.Split(line, ",")
	if len(fields) != 4 {
		return Sample{}, false, fmt.Errorf("gyro: malformed line %q", line)
	}
	var rates [3]float64
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Sample{}, false, fmt.Errorf("gyro: malformed line %q: %w", line, err)
		}
		rates[i] = v
	}
	return Sample{GX: rates[0], GY: rates[1], GZ: rates[2], At: at}, true, nil
}

package orientation

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DeadZoneDegPerSec is the rate magnitude below which a corrected gyro
// reading is treated as exactly zero. Test vectors depend on this value.
const DeadZoneDegPerSec = 0.5

// ErrInvalidSample is returned for NaN/Inf rates; the sample is dropped and
// the previous orientation is retained.
var ErrInvalidSample = errors.New("orientation: invalid sample")

// Pose is the absolute pointing direction in degrees.
// Yaw wraps into [0,360), pitch clamps into [-90,90], roll wraps into (-180,180].
type Pose struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// Axis selects which gyro body axis drives an orientation angle.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ParseAxis parses "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("orientation: unknown axis %q", s)
}

// AxisMap assigns gyro body axes (and signs) to yaw/pitch/roll rates.
// The mapping depends on how the sensor board is mounted in the enclosure
// and is fixed at construction.
type AxisMap struct {
	Yaw       Axis
	Pitch     Axis
	Roll      Axis
	YawSign   float64
	PitchSign float64
	RollSign  float64
}

// DefaultAxisMap matches the reference enclosure: panning drives gyro z,
// tilting drives gyro x, in-hand rotation drives gyro y.
func DefaultAxisMap() AxisMap {
	return AxisMap{
		Yaw:       AxisZ,
		Pitch:     AxisX,
		Roll:      AxisY,
		YawSign:   1,
		PitchSign: 1,
		RollSign:  1,
	}
}

// Tracker integrates angular velocity (deg/s) into an absolute Pose.
//
// A gyroscope reports a small nonzero rate even when perfectly still, so
// uncorrected integration drifts. The only defenses here are the calibration
// bias (mean resting rate, subtracted every update) and the dead-zone.
// There is deliberately no accelerometer or magnetometer correction.
//
// Tracker is not safe for concurrent use; it is owned by the single
// sample-processing loop.
type Tracker struct {
	axes AxisMap

	pose Pose

	biasX float64
	biasY float64
	biasZ float64

	calibrated bool
	lastUpdate time.Time
	anchored   bool
}

func NewTracker(axes AxisMap) *Tracker {
	return &Tracker{axes: axes}
}

// Calibrated reports whether a calibration bias has been installed.
func (t *Tracker) Calibrated() bool { return t.calibrated }

// Bias returns the current per-axis calibration bias in deg/s.
func (t *Tracker) Bias() (bx, by, bz float64) { return t.biasX, t.biasY, t.biasZ }

// Pose returns the current orientation by value.
func (t *Tracker) Pose() Pose { return t.pose }

// SetCalibration installs the measured resting bias, marks the tracker
// calibrated and re-anchors the integration clock. The bias is the
// arithmetic mean of samples collected over the calibration window; the
// window itself is driven by the caller, which owns the sample stream.
func (t *Tracker) SetCalibration(bx, by, bz float64, now time.Time) {
	t.biasX = bx
	t.biasY = by
	t.biasZ = bz
	t.calibrated = true
	t.lastUpdate = now
	t.anchored = true
}

// Reset zeros all three angles and re-anchors the integration clock.
// The calibration bias is retained.
func (t *Tracker) Reset(now time.Time) {
	t.pose = Pose{}
	t.lastUpdate = now
	t.anchored = true
}

// Update integrates one angular-velocity sample (deg/s) into the pose and
// returns the new pose by value. The first call only anchors the clock and
// returns the current (zero) pose. Rates that are NaN or Inf return
// ErrInvalidSample and leave the pose untouched.
func (t *Tracker) Update(gx, gy, gz float64, now time.Time) (Pose, error) {
	if !valid(gx) || !valid(gy) || !valid(gz) {
		return t.pose, fmt.Errorf("%w: (%v, %v, %v)", ErrInvalidSample, gx, gy, gz)
	}

	if !t.anchored {
		t.lastUpdate = now
		t.anchored = true
		return t.pose, nil
	}

	dt := now.Sub(t.lastUpdate).Seconds()
	t.lastUpdate = now
	if dt <= 0 {
		return t.pose, nil
	}

	gx -= t.biasX
	gy -= t.biasY
	gz -= t.biasZ

	gx = deadZone(gx)
	gy = deadZone(gy)
	gz = deadZone(gz)

	rate := func(a Axis) float64 {
		switch a {
		case AxisX:
			return gx
		case AxisY:
			return gy
		default:
			return gz
		}
	}

	t.pose.Yaw += t.axes.YawSign * rate(t.axes.Yaw) * dt
	t.pose.Pitch += t.axes.PitchSign * rate(t.axes.Pitch) * dt
	t.pose.Roll += t.axes.RollSign * rate(t.axes.Roll) * dt

	t.pose.Yaw = wrapYaw(t.pose.Yaw)
	t.pose.Pitch = clampPitch(t.pose.Pitch)
	t.pose.Roll = wrapRoll(t.pose.Roll)

	return t.pose, nil
}

func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func deadZone(rate float64) float64 {
	if math.Abs(rate) < DeadZoneDegPerSec {
		return 0
	}
	return rate
}

func wrapYaw(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func clampPitch(deg float64) float64 {
	if deg > 90 {
		return 90
	}
	if deg < -90 {
		return -90
	}
	return deg
}

func wrapRoll(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	}
	if deg <= -180 {
		deg += 360
	}
	return deg
}

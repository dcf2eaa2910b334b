package seek

import (
	"errors"
	"math"

	"starfinder/internal/rotation"
)

// ErrZeroDirection rejects a lock request whose target direction cannot be
// normalized.
var ErrZeroDirection = errors.New("seek: zero-norm target direction")

// Bearing describes where a target sits relative to the current pointing
// direction.
type Bearing struct {
	// AngleDeg is the arrow direction in the camera plane, math convention
	// (0 = right, 90 = up).
	AngleDeg float64 `json:"angle"`
	// DistanceDeg is the angular separation between the camera forward axis
	// and the target. It is valid for any target position, in front or
	// behind, and drives urgency scaling independent of InView.
	DistanceDeg float64 `json:"distance"`
	// InView is true when the target is in front of the camera and inside
	// the seek cone.
	InView bool `json:"in_view"`
}

// BearingTo rotates a world-space target direction by the current rotation
// matrix and reports its bearing. fovDeg is the seek cone, which is
// deliberately independent of the star-field FOV: seek mode typically uses a
// narrower cone so the target must be closer to center before it counts as
// found.
func BearingTo(target [3]float64, m rotation.Matrix, fovDeg float64) Bearing {
	unit, ok := rotation.Unit(target)
	if !ok {
		return Bearing{}
	}
	cam := m.Apply(unit)
	x, y, z := cam[0], cam[1], cam[2]

	dot := math.Max(-1, math.Min(1, z))
	distance := math.Acos(dot) * 180 / math.Pi
	angle := math.Atan2(y, x) * 180 / math.Pi

	inView := false
	if z > 0 {
		half := math.Tan(fovDeg / 2 * math.Pi / 180)
		inView = math.Abs(x/z) <= half && math.Abs(y/z) <= half
	}

	return Bearing{AngleDeg: angle, DistanceDeg: distance, InView: inView}
}

// Lock is the single optional target lock, modeled as an explicit
// Idle/Seeking state machine rather than nullable fields so the one-shot
// found transition is unambiguous.
//
// Lock is owned by the sample-processing loop and is not safe for concurrent
// use.
type Lock struct {
	seeking bool
	dir     [3]float64
	name    string
}

// Seeking reports whether a target is active.
func (l *Lock) Seeking() bool { return l.seeking }

// Target returns the active target direction and name.
func (l *Lock) Target() ([3]float64, string) { return l.dir, l.name }

// Request arms the lock with a target. The direction is normalized here so
// stale or malformed requests can never make it into the seeking state.
// Re-issuing a request replaces the current target.
func (l *Lock) Request(dir [3]float64, name string) error {
	unit, ok := rotation.Unit(dir)
	if !ok {
		return ErrZeroDirection
	}
	l.seeking = true
	l.dir = unit
	l.name = name
	return nil
}

// Cancel returns the lock to idle. Safe to call repeatedly.
func (l *Lock) Cancel() {
	l.seeking = false
	l.dir = [3]float64{}
	l.name = ""
}

// Observe feeds the bearing computed for the current sample. When the target
// enters view the lock is consumed exactly once: it reports found=true with
// the target name and returns to idle, so the same lock can never produce a
// second found event.
func (l *Lock) Observe(b Bearing) (found bool, name string) {
	if !l.seeking || !b.InView {
		return false, ""
	}
	name = l.name
	l.Cancel()
	return true, name
}

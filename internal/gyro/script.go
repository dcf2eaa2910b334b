package gyro

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Script is a deterministic, keyframe-driven angular-velocity timeline used
// for development without the sensor board and for replaying motions.
//
// Time is expressed as Go duration strings. Rates between keyframes are
// linearly interpolated; before the first keyframe the first one holds, after
// the last the last one holds. If duration is zero it is derived from the
// latest keyframe time.
//
// YAML schema (v1):
//
//	version: 1
//	rate_hz: 50
//	duration: 10s
//	loop: false
//	keyframes:
//	  - t: 0s
//	    gx: 0
//	    gy: 0
//	    gz: 12.5
type Script struct {
	Version   int            `yaml:"version"`
	RateHz    float64        `yaml:"rate_hz"`
	Duration  time.Duration  `yaml:"duration"`
	Loop      bool           `yaml:"loop"`
	Keyframes []RateKeyframe `yaml:"keyframes"`
}

// RateKeyframe is a time-stamped angular-velocity state in deg/s.
type RateKeyframe struct {
	T  time.Duration `yaml:"t"`
	GX float64       `yaml:"gx"`
	GY float64       `yaml:"gy"`
	GZ float64       `yaml:"gz"`
}

// LoadScript reads and validates a YAML rate script from path.
func LoadScript(path string) (Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	return ParseScriptYAML(b)
}

// ParseScriptYAML unmarshals and validates a rate script.
func ParseScriptYAML(b []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Script{}, fmt.Errorf("gyro: parse script: %w", err)
	}
	if s.Version != 1 {
		return Script{}, fmt.Errorf("gyro: unsupported script version %d", s.Version)
	}
	if len(s.Keyframes) == 0 {
		return Script{}, fmt.Errorf("gyro: script has no keyframes")
	}
	// Strictly increasing: equal timestamps would make interpolation divide
	// by a zero interval.
	for i := 1; i < len(s.Keyframes); i++ {
		if s.Keyframes[i].T <= s.Keyframes[i-1].T {
			return Script{}, fmt.Errorf("gyro: keyframe times must be strictly increasing (keyframe %d)", i)
		}
	}
	if s.RateHz <= 0 {
		s.RateHz = 50
	}
	if s.Duration <= 0 {
		s.Duration = s.Keyframes[len(s.Keyframes)-1].T
	}
	if s.Duration <= 0 {
		return Script{}, fmt.Errorf("gyro: script duration is zero")
	}
	return s, nil
}

// RatesAt returns the interpolated angular velocity at an elapsed offset.
func (s Script) RatesAt(elapsed time.Duration) (gx, gy, gz float64) {
	kf := s.Keyframes
	if elapsed <= kf[0].T {
		return kf[0].GX, kf[0].GY, kf[0].GZ
	}
	last := kf[len(kf)-1]
	if elapsed >= last.T {
		return last.GX, last.GY, last.GZ
	}
	i := sort.Search(len(kf), func(i int) bool { return kf[i].T > elapsed })
	a, b := kf[i-1], kf[i]
	f := float64(elapsed-a.T) / float64(b.T-a.T)
	return a.GX + f*(b.GX-a.GX), a.GY + f*(b.GY-a.GY), a.GZ + f*(b.GZ-a.GZ)
}

// ScriptSource paces a Script at its configured sample rate.
type ScriptSource struct {
	script  Script
	step    time.Duration
	elapsed time.Duration
	// total keeps sample timestamps monotonic across loop restarts.
	total   time.Duration
	started time.Time
	now     func() time.Time
	sleep   func(time.Duration)
}

func NewScriptSource(s Script) *ScriptSource {
	return &ScriptSource{
		script: s,
		step:   time.Duration(float64(time.Second) / s.RateHz),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Next returns the next scripted sample, sleeping one sample period between
// calls. It returns io.EOF when a non-looping script runs out.
func (s *ScriptSource) Next() (Sample, error) {
	if s.started.IsZero() {
		s.started = s.now()
	} else {
		s.sleep(s.step)
		s.elapsed += s.step
		s.total += s.step
	}
	if s.elapsed > s.script.Duration {
		if !s.script.Loop {
			return Sample{}, io.EOF
		}
		s.elapsed = 0
	}
	gx, gy, gz := s.script.RatesAt(s.elapsed)
	return Sample{GX: gx, GY: gy, GZ: gz, At: s.started.Add(s.total)}, nil
}

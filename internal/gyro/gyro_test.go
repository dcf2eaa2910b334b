package gyro

import (
	"errors"
	"io"
	"math"
	"testing"
	"time"
)

var at = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func TestParseLine(t *testing.T) {
	s, ok, err := ParseLine("G,1.5,-2.25,0.125\n", at)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if s.GX != 1.5 || s.GY != -2.25 || s.GZ != 0.125 || !s.At.Equal(at) {
		t.Fatalf("sample=%+v", s)
	}

	// Non-gyro lines are skipped without error.
	if _, ok, err := ParseLine("A,1,2,3", at); ok || err != nil {
		t.Fatalf("ok=%v err=%v want skip", ok, err)
	}
	if _, ok, err := ParseLine("", at); ok || err != nil {
		t.Fatalf("ok=%v err=%v want skip", ok, err)
	}

	// Malformed gyro lines error so they can be dropped.
	if _, _, err := ParseLine("G,1,2", at); err == nil {
		t.Fatalf("expected error for short line")
	}
	if _, _, err := ParseLine("G,x,2,3", at); err == nil {
		t.Fatalf("expected error for non-numeric field")
	}
}

func TestParseScriptYAML(t *testing.T) {
	s, err := ParseScriptYAML([]byte(`
version: 1
rate_hz: 100
keyframes:
  - t: 0s
    gz: 0
  - t: 2s
    gz: 10
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.RateHz != 100 {
		t.Fatalf("rate=%v", s.RateHz)
	}
	// Duration derived from the last keyframe.
	if s.Duration != 2*time.Second {
		t.Fatalf("duration=%v want 2s", s.Duration)
	}

	// Interpolation between keyframes, holds past the end.
	if _, _, gz := s.RatesAt(1 * time.Second); math.Abs(gz-5) > 1e-12 {
		t.Fatalf("gz@1s=%v want 5", gz)
	}
	if _, _, gz := s.RatesAt(10 * time.Second); gz != 10 {
		t.Fatalf("gz@10s=%v want 10", gz)
	}
	if _, _, gz := s.RatesAt(0); gz != 0 {
		t.Fatalf("gz@0=%v want 0", gz)
	}
}

func TestParseScriptYAML_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad version":     "version: 2\nkeyframes: [{t: 0s}]",
		"no keyframes":    "version: 1\nkeyframes: []",
		"unsorted":        "version: 1\nkeyframes: [{t: 2s}, {t: 1s}]",
		"duplicate times": "version: 1\nkeyframes: [{t: 1s, gz: 1}, {t: 1s, gz: 2}]",
		"zero length":     "version: 1\nkeyframes: [{t: 0s}]",
	}
	for name, doc := range cases {
		if _, err := ParseScriptYAML([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestScriptSource_PacedAndFinite(t *testing.T) {
	s, err := ParseScriptYAML([]byte(`
version: 1
rate_hz: 10
keyframes:
  - {t: 0s, gz: 4}
  - {t: 300ms, gz: 4}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	src := NewScriptSource(s)
	var slept time.Duration
	src.now = func() time.Time { return at }
	src.sleep = func(d time.Duration) { slept += d }

	n := 0
	for {
		sample, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if sample.GZ != 4 {
			t.Fatalf("gz=%v want 4", sample.GZ)
		}
		n++
		if n > 100 {
			t.Fatalf("script did not terminate")
		}
	}
	// 10 Hz over 300 ms: samples at 0,100,200,300 ms.
	if n != 4 {
		t.Fatalf("n=%d want 4", n)
	}
	if slept != 400*time.Millisecond {
		t.Fatalf("slept=%v want 400ms", slept)
	}
}

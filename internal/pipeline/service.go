package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"
	"time"

	"starfinder/internal/catalog"
	"starfinder/internal/gyro"
	"starfinder/internal/orientation"
	"starfinder/internal/projection"
	"starfinder/internal/render"
	"starfinder/internal/rotation"
	"starfinder/internal/seek"
)

type Config struct {
	// FOVDeg is the LED star-field field of view.
	FOVDeg float64
	// FrontendFOVDeg is the wider cone used for the display star list.
	FrontendFOVDeg float64
	// SeekFOVDeg is the cone that counts as "found" in seek mode.
	SeekFOVDeg float64

	GridCols int
	GridRows int

	// Calibration is the bias-measurement window length.
	Calibration time.Duration
}

// Mode says which renderer produced the frame.
type Mode int

const (
	ModeStarField Mode = iota
	ModeSeek
)

func (m Mode) String() string {
	if m == ModeSeek {
		return "seek"
	}
	return "starfield"
}

// Output is everything one sample produces. It is handed to every emitter;
// emitters must not retain or mutate the slices.
type Output struct {
	Pose orientation.Pose
	Mode Mode

	Grid   render.Grid
	Packet render.Packet

	// Seek fields are meaningful only in ModeSeek.
	Seek     seek.Bearing
	SeekName string
	// Found is the one-shot acquisition event for the active lock.
	Found     bool
	FoundName string

	Stars          []StarPoint
	Constellations []catalog.Constellation
}

// Emitter consumes per-sample outputs: the web hub, the LED serial link,
// MQTT, UDP, the local OLED. Emission is best-effort; errors are counted and
// logged by the pipeline but never affect orientation state.
type Emitter interface {
	Emit(Output) error
}

// Snapshot is the externally visible pipeline state.
type Snapshot struct {
	Pose        orientation.Pose
	Calibrated  bool
	Calibrating bool
	Seeking     bool
	SeekName    string

	SamplesTotal    uint64
	DroppedTotal    uint64
	EmitErrorsTotal uint64
	LastUpdateAt    time.Time
}

// Service drives the whole orientation-and-projection pipeline from a single
// stream of gyro samples. One sample produces exactly one orientation update
// and at most one frame, synchronously; tracker and lock are only ever
// touched from the run loop, so no partial update is observable between
// sample ingestion and frame emission.
type Service struct {
	cfg      Config
	cat      *catalog.Catalog
	cons     []catalog.Constellation
	tracker  *orientation.Tracker
	lock     seek.Lock
	emitters []Emitter

	calCh  chan chan error
	ctrlCh chan ctrlReq

	mu   sync.RWMutex
	snap Snapshot
}

type ctrlKind int

const (
	ctrlReset ctrlKind = iota
	ctrlLock
	ctrlCancel
)

type ctrlReq struct {
	kind ctrlKind
	dir  [3]float64
	name string
	done chan error
}

func New(cfg Config, cat *catalog.Catalog, cons []catalog.Constellation, axes orientation.AxisMap, emitters ...Emitter) *Service {
	if cfg.GridCols == 0 {
		cfg.GridCols = 12
	}
	if cfg.GridRows == 0 {
		cfg.GridRows = 8
	}
	if cfg.FOVDeg == 0 {
		cfg.FOVDeg = 30
	}
	if cfg.FrontendFOVDeg == 0 {
		cfg.FrontendFOVDeg = 60
	}
	if cfg.SeekFOVDeg == 0 {
		cfg.SeekFOVDeg = cfg.FOVDeg / 2
	}
	if cfg.Calibration <= 0 {
		cfg.Calibration = 1500 * time.Millisecond
	}
	return &Service{
		cfg:      cfg,
		cat:      cat,
		cons:     cons,
		tracker:  orientation.NewTracker(axes),
		emitters: emitters,
		calCh:    make(chan chan error, 1),
		ctrlCh:   make(chan ctrlReq),
	}
}

func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Calibrate measures the gyro resting bias over the configured window and
// installs it. The device must be held still; samples seen during the window
// are consumed by the measurement, not integrated.
func (s *Service) Calibrate(ctx context.Context) error {
	done := make(chan error, 1)
	select {
	case s.calCh <- done:
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("pipeline: calibration already in progress")
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset zeros the orientation; the calibration bias survives.
func (s *Service) Reset(ctx context.Context) error {
	return s.control(ctx, ctrlReq{kind: ctrlReset})
}

// LockTarget arms seek mode on a catalog star. The returned name is what the
// "found" event will carry. An unknown id rejects the request without
// touching any state.
func (s *Service) LockTarget(ctx context.Context, hip int) (string, error) {
	star, err := s.cat.ByHIP(hip)
	if err != nil {
		return "", err
	}
	name := star.Name
	if name == "" {
		name = strconv.Itoa(star.HIP)
	}
	if err := s.control(ctx, ctrlReq{kind: ctrlLock, dir: star.Dir, name: name}); err != nil {
		return "", err
	}
	return name, nil
}

// CancelLock returns seek mode to idle. Safe to call when already idle.
func (s *Service) CancelLock(ctx context.Context) error {
	return s.control(ctx, ctrlReq{kind: ctrlCancel})
}

func (s *Service) control(ctx context.Context, req ctrlReq) error {
	req.done = make(chan error, 1)
	select {
	case s.ctrlCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// calWindow accumulates per-axis sums for one calibration run.
type calWindow struct {
	done    chan error
	start   time.Time
	sumX    float64
	sumY    float64
	sumZ    float64
	n       int
	started bool
}

// Run drains the source until it is exhausted or the context ends. Control
// requests are serialized through the same loop as samples, so tracker and
// lock mutations are atomic with respect to a sample step.
func (s *Service) Run(ctx context.Context, src gyro.Source) error {
	samples := make(chan gyro.Sample)
	readErr := make(chan error, 1)
	go func() {
		for {
			sample, err := src.Next()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case samples <- sample:
			case <-ctx.Done():
				return
			}
		}
	}()

	var cal *calWindow
	for {
		select {
		case <-ctx.Done():
			if cal != nil {
				cal.done <- ctx.Err()
			}
			return ctx.Err()
		case err := <-readErr:
			if cal != nil {
				cal.done <- fmt.Errorf("pipeline: source ended during calibration")
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case done := <-s.calCh:
			// A window is already accumulating: reject rather than restart,
			// which would abandon the first caller's done channel.
			if cal != nil {
				done <- fmt.Errorf("pipeline: calibration already in progress")
				continue
			}
			cal = &calWindow{done: done}
			s.setCalibrating(true)
		case req := <-s.ctrlCh:
			req.done <- s.handleControl(req)
		case sample := <-samples:
			if cal != nil {
				cal = s.calibrateStep(cal, sample)
				continue
			}
			s.step(sample)
		}
	}
}

func (s *Service) handleControl(req ctrlReq) error {
	switch req.kind {
	case ctrlReset:
		s.tracker.Reset(time.Now())
	case ctrlLock:
		if err := s.lock.Request(req.dir, req.name); err != nil {
			return err
		}
	case ctrlCancel:
		s.lock.Cancel()
	}
	s.mu.Lock()
	s.snap.Pose = s.tracker.Pose()
	s.snap.Seeking = s.lock.Seeking()
	_, s.snap.SeekName = s.lock.Target()
	s.mu.Unlock()
	return nil
}

// calibrateStep feeds one sample into the measurement window and closes the
// window once it spans the configured duration.
func (s *Service) calibrateStep(cal *calWindow, sample gyro.Sample) *calWindow {
	if !cal.started {
		cal.start = sample.At
		cal.started = true
	}
	cal.sumX += sample.GX
	cal.sumY += sample.GY
	cal.sumZ += sample.GZ
	cal.n++
	if sample.At.Sub(cal.start) < s.cfg.Calibration {
		return cal
	}

	n := float64(cal.n)
	bx, by, bz := cal.sumX/n, cal.sumY/n, cal.sumZ/n
	s.tracker.SetCalibration(bx, by, bz, sample.At)
	log.Printf("pipeline: calibration complete, bias x=%.4f y=%.4f z=%.4f (%d samples)", bx, by, bz, cal.n)

	s.mu.Lock()
	s.snap.Calibrated = true
	s.mu.Unlock()
	s.setCalibrating(false)
	cal.done <- nil
	return nil
}

// step runs the full per-sample pipeline: integrate, rotate the catalog
// once, then hand the shared camera frame to whichever renderer is active.
func (s *Service) step(sample gyro.Sample) {
	pose, err := s.tracker.Update(sample.GX, sample.GY, sample.GZ, sample.At)
	if err != nil {
		s.mu.Lock()
		s.snap.DroppedTotal++
		s.mu.Unlock()
		log.Printf("pipeline: dropping sample: %v", err)
		return
	}

	m := rotation.Build(pose.Yaw, pose.Pitch, pose.Roll)
	camera := rotation.RotateAll(s.cat.Directions(), m)

	out := Output{Pose: pose}
	if s.lock.Seeking() {
		dir, name := s.lock.Target()
		bearing := seek.BearingTo(dir, m, s.cfg.SeekFOVDeg)
		out.Mode = ModeSeek
		out.Seek = bearing
		out.SeekName = name
		out.Grid = render.DirectionArrow(bearing.AngleDeg, s.cfg.GridCols, s.cfg.GridRows)
		if found, foundName := s.lock.Observe(bearing); found {
			out.Found = true
			out.FoundName = foundName
		}
	} else {
		points := projection.Project(camera, s.cfg.FOVDeg)
		pixels := projection.ToPixels(points, s.cfg.GridCols, s.cfg.GridRows)
		out.Grid = render.StarField(pixels, s.cfg.GridCols, s.cfg.GridRows)
	}
	out.Packet = render.Pack(out.Grid)

	// The display consumer shares the same camera frame with its own, wider
	// cone.
	frontendPoints := projection.Project(camera, s.cfg.FrontendFOVDeg)
	out.Stars = frontendStars(frontendPoints, s.cat)
	if len(s.cons) > 0 {
		visible := make(map[int]bool, len(out.Stars))
		for _, sp := range out.Stars {
			visible[sp.HIP] = true
		}
		out.Constellations = catalog.Visible(s.cons, visible)
	}

	s.mu.Lock()
	s.snap.Pose = pose
	s.snap.Seeking = s.lock.Seeking()
	_, s.snap.SeekName = s.lock.Target()
	s.snap.SamplesTotal++
	s.snap.LastUpdateAt = sample.At
	s.mu.Unlock()

	s.emit(out)
}

// emit fans the output to every consumer. A failed emission must not corrupt
// or roll back the orientation state that produced it, so errors stop here.
func (s *Service) emit(out Output) {
	for _, e := range s.emitters {
		if err := e.Emit(out); err != nil {
			s.mu.Lock()
			s.snap.EmitErrorsTotal++
			s.mu.Unlock()
			log.Printf("pipeline: emit: %v", err)
		}
	}
}

func (s *Service) setCalibrating(v bool) {
	s.mu.Lock()
	s.snap.Calibrating = v
	s.mu.Unlock()
}

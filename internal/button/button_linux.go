//go:build linux

package button

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const (
	consumer     = "starfinder-buttons"
	debounce     = 20 * time.Millisecond
	pressTimeout = 10 * time.Second
)

type Buttons struct {
	chips []*gpiocdev.Chip
	lines []*gpiocdev.Line
}

// Open claims the configured pins as pulled-up inputs with falling-edge
// events. Buttons short the line to ground when pressed.
func Open(cfg Config, ctl Controller) (*Buttons, error) {
	b := &Buttons{}

	if err := b.request(cfg.CalibratePin, pressHandler("calibrate", ctl.Calibrate)); err != nil {
		_ = b.Close()
		return nil, err
	}
	if cfg.ResetPin > 0 {
		if err := b.request(cfg.ResetPin, pressHandler("reset", ctl.Reset)); err != nil {
			_ = b.Close()
			return nil, err
		}
	}
	return b, nil
}

// pressHandler runs the action off the event goroutine so a slow action
// (calibration takes the full window) cannot back up the event stream.
func pressHandler(name string, action func(context.Context) error) func(gpiocdev.LineEvent) {
	return func(gpiocdev.LineEvent) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), pressTimeout)
			defer cancel()
			if err := action(ctx); err != nil {
				log.Printf("button: %s: %v", name, err)
				return
			}
			log.Printf("button: %s done", name)
		}()
	}
}

func (b *Buttons) request(pin int, handler func(gpiocdev.LineEvent)) error {
	if pin <= 0 {
		return fmt.Errorf("button: invalid gpio pin %d", pin)
	}

	// On Pi, line names are commonly "GPIO17", etc.
	lineName := fmt.Sprintf("GPIO%d", pin)

	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithDebounce(debounce),
			gpiocdev.WithEventHandler(handler),
			gpiocdev.WithConsumer(consumer),
		)
		if err != nil {
			_ = chip.Close()
			continue
		}
		b.chips = append(b.chips, chip)
		b.lines = append(b.lines, line)
		return nil
	}

	return fmt.Errorf("button: gpio line %q not found (or busy)", lineName)
}

func (b *Buttons) Close() error {
	var first error
	for _, line := range b.lines {
		if err := line.Close(); err != nil && first == nil {
			first = err
		}
	}
	for _, chip := range b.chips {
		_ = chip.Close()
	}
	b.lines = nil
	b.chips = nil
	return first
}

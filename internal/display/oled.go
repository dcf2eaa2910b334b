// Package display mirrors the LED frame and pose onto a small SSD1306 OLED
// for bench use.
package display

import (
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"starfinder/internal/pipeline"
)

const (
	screenW = 128
	screenH = 64

	// The gyro stream runs far faster than the I2C bus can repaint; extra
	// frames are skipped.
	minRedrawInterval = 100 * time.Millisecond
)

type OLED struct {
	dev  *ssd1306.Dev
	bus  i2c.BusCloser
	last time.Time
}

// Open initializes periph, opens the named I2C bus (empty selects the first
// one) and probes the display at its fixed 0x3C address.
func Open(busName string) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("display: periph init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("display: open i2c bus %q: %w", busName, err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("display: ssd1306: %w", err)
	}
	log.Printf("display: ssd1306 on bus %q", bus)
	return &OLED{dev: dev, bus: bus}, nil
}

func (o *OLED) Emit(out pipeline.Output) error {
	now := time.Now()
	if now.Sub(o.last) < minRedrawInterval {
		return nil
	}
	o.last = now

	img := drawFrame(out)
	if err := o.dev.Draw(o.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("display: draw: %w", err)
	}
	return nil
}

func (o *OLED) Close() error {
	return o.bus.Close()
}

// drawFrame paints the LED grid scaled up on the left and a pose readout on
// the right.
func drawFrame(out pipeline.Output) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, screenW, screenH))

	g := out.Grid
	if g.Cols > 0 && g.Rows > 0 {
		const gridW, gridH = 56, 56
		cell := gridW / g.Cols
		if h := gridH / g.Rows; h < cell {
			cell = h
		}
		if cell < 1 {
			cell = 1
		}
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				if !g.On(col, row) {
					continue
				}
				fillCell(img, 2+col*cell, 4+row*cell, cell)
			}
		}
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	drawer.Dot = fixed.P(64, 13)
	drawer.DrawBytes([]byte(fmt.Sprintf("Y %6.1f", out.Pose.Yaw)))
	drawer.Dot = fixed.P(64, 26)
	drawer.DrawBytes([]byte(fmt.Sprintf("P %6.1f", out.Pose.Pitch)))
	drawer.Dot = fixed.P(64, 39)
	drawer.DrawBytes([]byte(fmt.Sprintf("R %6.1f", out.Pose.Roll)))
	if out.Mode == pipeline.ModeSeek {
		drawer.Dot = fixed.P(64, 52)
		drawer.DrawBytes([]byte(fmt.Sprintf("> %s", out.SeekName)))
	}
	return img
}

func fillCell(img *image1bit.VerticalLSB, x, y, size int) {
	// Leave a 1px gutter between cells when there is room.
	w := size
	if w > 1 {
		w--
	}
	for dy := 0; dy < w; dy++ {
		for dx := 0; dx < w; dx++ {
			img.SetBit(x+dx, y+dy, image1bit.On)
		}
	}
}

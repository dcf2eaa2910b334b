package display

import (
	"image"
	"testing"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"starfinder/internal/orientation"
	"starfinder/internal/pipeline"
	"starfinder/internal/render"
)

func litPixels(img *image1bit.VerticalLSB, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.BitAt(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestDrawFrame_GridAndPose(t *testing.T) {
	grid := render.NewGrid(12, 8)
	grid.Set(0, 0)
	grid.Set(11, 7)
	out := pipeline.Output{
		Grid: grid,
		Pose: orientation.Pose{Yaw: 123.4, Pitch: -5.6, Roll: 0.1},
	}

	img := drawFrame(out)
	if img.Bounds() != image.Rect(0, 0, 128, 64) {
		t.Fatalf("bounds=%v", img.Bounds())
	}
	// Grid cells land left of the text column, the pose readout right of it.
	if litPixels(img, image.Rect(0, 0, 64, 64)) == 0 {
		t.Fatalf("no grid cells drawn")
	}
	if litPixels(img, image.Rect(64, 0, 128, 64)) == 0 {
		t.Fatalf("no pose readout drawn")
	}
}

func TestDrawFrame_SeekNameLine(t *testing.T) {
	base := pipeline.Output{Grid: render.NewGrid(12, 8)}
	plain := litPixels(drawFrame(base), image.Rect(0, 0, 128, 64))

	seeking := base
	seeking.Mode = pipeline.ModeSeek
	seeking.SeekName = "Vega"
	withName := litPixels(drawFrame(seeking), image.Rect(0, 0, 128, 64))
	if withName <= plain {
		t.Fatalf("seek line not drawn: %d <= %d", withName, plain)
	}
}

func TestDrawFrame_EmptyGridSafe(t *testing.T) {
	// A zero-value output must not panic.
	if img := drawFrame(pipeline.Output{}); img == nil {
		t.Fatalf("nil image")
	}
}

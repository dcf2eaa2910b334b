package ledmatrix

import (
	"encoding/json"

	"starfinder/internal/pipeline"
)

// frameMessage is the JSON shape shared by the MQTT and UDP emitters: the
// packed row words plus the seek bearing when an arrow is on screen.
type frameMessage struct {
	Mode   string   `json:"mode"`
	Top    []uint16 `json:"top"`
	Bottom []uint16 `json:"bottom"`

	Angle    *float64 `json:"angle,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
	InView   *bool    `json:"in_view,omitempty"`
}

func marshalFrame(out pipeline.Output) ([]byte, error) {
	msg := frameMessage{
		Mode:   out.Mode.String(),
		Top:    out.Packet.Top,
		Bottom: out.Packet.Bottom,
	}
	if out.Mode == pipeline.ModeSeek {
		angle, distance, inView := out.Seek.AngleDeg, out.Seek.DistanceDeg, out.Seek.InView
		msg.Angle = &angle
		msg.Distance = &distance
		msg.InView = &inView
	}
	return json.Marshal(msg)
}

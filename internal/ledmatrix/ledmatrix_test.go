package ledmatrix

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"starfinder/internal/orientation"
	"starfinder/internal/pipeline"
	"starfinder/internal/render"
	"starfinder/internal/seek"
)

func starFieldOutput() pipeline.Output {
	return pipeline.Output{
		Mode:   pipeline.ModeStarField,
		Packet: render.Packet{Top: []uint16{0x8001, 0, 2, 3}, Bottom: []uint16{4, 5, 6, 7}},
		Pose:   orientation.Pose{Yaw: 10, Pitch: 20, Roll: 30},
	}
}

func seekOutput() pipeline.Output {
	return pipeline.Output{
		Mode:     pipeline.ModeSeek,
		Packet:   render.Packet{Top: []uint16{1, 0, 0, 0}, Bottom: []uint16{0, 0, 0, 0}},
		Seek:     seek.Bearing{AngleDeg: 90, DistanceDeg: 30.5, InView: true},
		SeekName: "Vega",
	}
}

type fakePort struct {
	buf      bytes.Buffer
	writeErr error
	closed   bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.buf.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestSerialEmitter_StarFieldFrame(t *testing.T) {
	port := &fakePort{}
	e := NewSerialEmitter(port)

	if err := e.Emit(starFieldOutput()); err != nil {
		t.Fatalf("emit: %v", err)
	}
	want := "T,32769,0,2,3\nB,4,5,6,7\n"
	if got := port.buf.String(); got != want {
		t.Fatalf("frame=%q want %q", got, want)
	}

	if err := e.Close(); err != nil || !port.closed {
		t.Fatalf("close: err=%v closed=%v", err, port.closed)
	}
}

func TestSerialEmitter_SeekFrame(t *testing.T) {
	port := &fakePort{}
	e := NewSerialEmitter(port)

	if err := e.Emit(seekOutput()); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got := port.buf.String(); got != "A,90.0,30.5,1\n" {
		t.Fatalf("frame=%q", got)
	}
}

func TestSerialEmitter_WriteError(t *testing.T) {
	port := &fakePort{writeErr: errors.New("unplugged")}
	e := NewSerialEmitter(port)

	if err := e.Emit(starFieldOutput()); err == nil {
		t.Fatalf("expected error")
	}
}

type fakeToken struct {
	err error
}

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Error() error                   { return t.err }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeClient struct {
	mqtt.Client
	published map[string][][]byte
	err       error
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	if c.err != nil {
		return fakeToken{err: c.err}
	}
	b := payload.([]byte)
	if c.published == nil {
		c.published = make(map[string][][]byte)
	}
	c.published[topic] = append(c.published[topic], append([]byte(nil), b...))
	return fakeToken{}
}

func TestMQTTEmitter_PublishesPointingAndFrame(t *testing.T) {
	client := &fakeClient{}
	e := NewMQTTEmitter(client)

	if err := e.Emit(starFieldOutput()); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(client.published[topicPointing]) != 1 || len(client.published[topicFrame]) != 1 {
		t.Fatalf("published=%v", client.published)
	}

	var pose orientation.Pose
	if err := json.Unmarshal(client.published[topicPointing][0], &pose); err != nil {
		t.Fatalf("pointing payload: %v", err)
	}
	if pose.Yaw != 10 || pose.Pitch != 20 || pose.Roll != 30 {
		t.Fatalf("pose=%+v", pose)
	}

	var frame frameMessage
	if err := json.Unmarshal(client.published[topicFrame][0], &frame); err != nil {
		t.Fatalf("frame payload: %v", err)
	}
	if frame.Mode != "starfield" || frame.Top[0] != 0x8001 || frame.Angle != nil {
		t.Fatalf("frame=%+v", frame)
	}
}

func TestMQTTEmitter_PublishError(t *testing.T) {
	e := NewMQTTEmitter(&fakeClient{err: errors.New("broker gone")})
	if err := e.Emit(starFieldOutput()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUDPEmitter_SendsFrameDatagram(t *testing.T) {
	port := &fakePort{}
	e := newUDPEmitter("127.0.0.1:4000", port)

	if err := e.Emit(seekOutput()); err != nil {
		t.Fatalf("emit: %v", err)
	}
	var frame frameMessage
	if err := json.Unmarshal(port.buf.Bytes(), &frame); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if frame.Mode != "seek" {
		t.Fatalf("mode=%q", frame.Mode)
	}
	if frame.Angle == nil || *frame.Angle != 90 || frame.InView == nil || !*frame.InView {
		t.Fatalf("frame=%+v", frame)
	}
}

func TestUDPEmitter_WriteError(t *testing.T) {
	e := newUDPEmitter("127.0.0.1:4000", &fakePort{writeErr: errors.New("no route")})
	if err := e.Emit(starFieldOutput()); err == nil {
		t.Fatalf("expected error")
	}
}

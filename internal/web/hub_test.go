package web

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"starfinder/internal/orientation"
	"starfinder/internal/pipeline"
	"starfinder/internal/seek"
)

func recvFrame(t *testing.T, ch <-chan []byte) map[string]any {
	t.Helper()
	select {
	case b, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed")
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("unmarshal %q: %v", b, err)
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame")
		return nil
	}
}

func TestHub_EmitFanout(t *testing.T) {
	hub := NewHub()
	id, ch := hub.Subscribe(16)
	defer hub.Unsubscribe(id)

	out := pipeline.Output{
		Pose:  orientation.Pose{Yaw: 45, Pitch: 5, Roll: -1},
		Stars: []pipeline.StarPoint{{X: 0.1, Y: 0.2, HIP: 91262}},
	}
	if err := hub.Emit(out); err != nil {
		t.Fatalf("emit: %v", err)
	}

	m := recvFrame(t, ch)
	if m["type"] != "pointing" || m["yaw"].(float64) != 45 {
		t.Fatalf("frame=%v", m)
	}
	m = recvFrame(t, ch)
	if m["type"] != "stars" {
		t.Fatalf("frame=%v", m)
	}
	stars := m["stars"].([]any)
	if len(stars) != 1 {
		t.Fatalf("stars=%v", stars)
	}
}

func TestHub_SeekFrames(t *testing.T) {
	hub := NewHub()
	id, ch := hub.Subscribe(16)
	defer hub.Unsubscribe(id)

	out := pipeline.Output{
		Mode:      pipeline.ModeSeek,
		Seek:      seek.Bearing{AngleDeg: 90, DistanceDeg: 30, InView: true},
		SeekName:  "Vega",
		Found:     true,
		FoundName: "Vega",
	}
	if err := hub.Emit(out); err != nil {
		t.Fatalf("emit: %v", err)
	}

	recvFrame(t, ch) // pointing
	recvFrame(t, ch) // stars
	m := recvFrame(t, ch)
	if m["type"] != "find_star_status" || m["name"] != "Vega" || m["in_view"] != true {
		t.Fatalf("frame=%v", m)
	}
	m = recvFrame(t, ch)
	if m["type"] != "star_found" || m["name"] != "Vega" {
		t.Fatalf("frame=%v", m)
	}
}

func TestHub_LateSubscriberGetsLastFrames(t *testing.T) {
	hub := NewHub()
	if err := hub.Emit(pipeline.Output{Pose: orientation.Pose{Yaw: 7}}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	id, ch := hub.Subscribe(16)
	defer hub.Unsubscribe(id)
	m := recvFrame(t, ch)
	if m["type"] != "pointing" || m["yaw"].(float64) != 7 {
		t.Fatalf("frame=%v", m)
	}
	if m := recvFrame(t, ch); m["type"] != "stars" {
		t.Fatalf("frame=%v", m)
	}
}

func TestHub_Announce(t *testing.T) {
	hub := NewHub()
	id, ch := hub.Subscribe(4)
	defer hub.Unsubscribe(id)

	hub.Announce("calibration_done")
	if m := recvFrame(t, ch); m["type"] != "calibration_done" {
		t.Fatalf("frame=%v", m)
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	id, ch := hub.Subscribe(4)
	hub.Unsubscribe(id)
	// Idempotent.
	hub.Unsubscribe(id)

	if err := hub.Emit(pipeline.Output{Pose: orientation.Pose{Yaw: 3}}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	hub.Announce("calibration_done")
	select {
	case b := <-ch:
		t.Fatalf("frame after unsubscribe: %s", b)
	default:
	}
}

func TestHub_EmitDuringChurn(t *testing.T) {
	// Clients connecting and dropping mid-broadcast must never disturb the
	// emitting pipeline.
	hub := NewHub()
	stop := make(chan struct{})
	churned := make(chan struct{})
	go func() {
		defer close(churned)
		for {
			select {
			case <-stop:
				return
			default:
			}
			id, _ := hub.Subscribe(1)
			hub.Unsubscribe(id)
		}
	}()

	out := pipeline.Output{Pose: orientation.Pose{Yaw: 1}}
	for i := 0; i < 500; i++ {
		if err := hub.Emit(out); err != nil {
			t.Fatalf("emit: %v", err)
		}
		hub.Announce("calibration_done")
	}
	close(stop)
	<-churned
}

func TestHub_Websocket(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	if err := hub.Emit(pipeline.Output{Pose: orientation.Pose{Yaw: 12}}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["type"] != "pointing" || m["yaw"].(float64) != 12 {
		t.Fatalf("frame=%v", m)
	}
}

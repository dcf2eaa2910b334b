package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"starfinder/internal/catalog"
	"starfinder/internal/pipeline"
)

// Wire messages pushed over the websocket. Every message carries a type tag
// so the frontend can dispatch without peeking at fields.
type pointingMsg struct {
	Type  string  `json:"type"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

type starsMsg struct {
	Type           string                  `json:"type"`
	Stars          []pipeline.StarPoint    `json:"stars"`
	Constellations []catalog.Constellation `json:"constellations"`
}

type seekStatusMsg struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Angle    float64 `json:"angle"`
	Distance float64 `json:"distance"`
	InView   bool    `json:"in_view"`
}

type starFoundMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type eventMsg struct {
	Type string `json:"type"`
}

// Hub fans pipeline outputs out to websocket clients. It keeps the most
// recent pointing and stars frames so a new subscriber paints immediately
// instead of waiting for the next gyro sample.
type Hub struct {
	upgrader websocket.Upgrader

	mu         sync.RWMutex
	subs       map[int]*subscriber
	nextID     int
	lastFrames [][]byte
	haveFrames bool
}

// subscriber's frame channel is never closed: broadcasts run outside the hub
// lock, so a close racing a send would panic the emitting pipeline. Shutdown
// is signalled through done instead.
type subscriber struct {
	ch   chan []byte
	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The UI is served from the same box over the hotspot; no origin
			// policy to enforce.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[int]*subscriber),
	}
}

// Emit implements pipeline.Emitter: one output becomes a pointing message, a
// stars message, and in seek mode the bearing status plus the one-shot found
// event.
func (h *Hub) Emit(out pipeline.Output) error {
	frames := make([][]byte, 0, 4)

	b, err := json.Marshal(pointingMsg{
		Type:  "pointing",
		Yaw:   out.Pose.Yaw,
		Pitch: out.Pose.Pitch,
		Roll:  out.Pose.Roll,
	})
	if err != nil {
		return err
	}
	frames = append(frames, b)

	stars := out.Stars
	if stars == nil {
		stars = []pipeline.StarPoint{}
	}
	cons := out.Constellations
	if cons == nil {
		cons = []catalog.Constellation{}
	}
	b, err = json.Marshal(starsMsg{Type: "stars", Stars: stars, Constellations: cons})
	if err != nil {
		return err
	}
	frames = append(frames, b)

	if out.Mode == pipeline.ModeSeek {
		b, err = json.Marshal(seekStatusMsg{
			Type:     "find_star_status",
			Name:     out.SeekName,
			Angle:    out.Seek.AngleDeg,
			Distance: out.Seek.DistanceDeg,
			InView:   out.Seek.InView,
		})
		if err != nil {
			return err
		}
		frames = append(frames, b)
	}
	if out.Found {
		b, err = json.Marshal(starFoundMsg{Type: "star_found", Name: out.FoundName})
		if err != nil {
			return err
		}
		frames = append(frames, b)
	}

	h.mu.Lock()
	h.lastFrames = frames[:2]
	h.haveFrames = true
	subs := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		for _, frame := range frames {
			select {
			case sub.ch <- frame:
			default:
			}
		}
	}
	return nil
}

// Announce pushes a standalone event (calibration_done, find_star_cancelled)
// outside the per-sample stream.
func (h *Hub) Announce(typ string) {
	b, err := json.Marshal(eventMsg{Type: typ})
	if err != nil {
		return
	}
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()
	for _, sub := range subs {
		select {
		case sub.ch <- b:
		default:
		}
	}
}

// Subscribe registers a listener. Slow listeners lose frames rather than
// stalling the publisher.
func (h *Hub) Subscribe(buffer int) (int, <-chan []byte) {
	id, sub := h.subscribe(buffer)
	return id, sub.ch
}

func (h *Hub) subscribe(buffer int) (int, *subscriber) {
	if buffer <= 0 {
		buffer = 8
	}
	sub := &subscriber{
		ch:   make(chan []byte, buffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	var replay [][]byte
	if h.haveFrames {
		replay = h.lastFrames
	}
	h.mu.Unlock()
	for _, frame := range replay {
		select {
		case sub.ch <- frame:
		default:
		}
	}
	return id, sub
}

// Unsubscribe removes a listener. The frame channel stays open so a
// broadcast that snapshotted the map before the removal can still complete
// its non-blocking sends; only done is closed, exactly once.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(sub.done)
	}
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams hub frames until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	id, sub := h.subscribe(16)

	// Drain client frames purely to notice the close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.Unsubscribe(id)
				return
			}
		}
	}()

loop:
	for {
		select {
		case frame := <-sub.ch:
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.Unsubscribe(id)
				break loop
			}
		case <-sub.done:
			break loop
		}
	}
	_ = conn.Close()
}

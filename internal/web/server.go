package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"starfinder/internal/catalog"
	"starfinder/internal/pipeline"
)

// Controller exposes the pipeline actions the Web UI needs.
// Implementations must be safe to call concurrently.
type Controller interface {
	Snapshot() pipeline.Snapshot
	Calibrate(ctx context.Context) error
	Reset(ctx context.Context) error
	LockTarget(ctx context.Context, hip int) (string, error)
	CancelLock(ctx context.Context) error
}

func Handler(ctl Controller, cat *catalog.Catalog, cons []catalog.Constellation, hub *Hub, calWindow time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/pointing", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, ctl.Snapshot().Pose)
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := ctl.Snapshot()
		resp := struct {
			Yaw             float64 `json:"yaw"`
			Pitch           float64 `json:"pitch"`
			Roll            float64 `json:"roll"`
			Calibrated      bool    `json:"calibrated"`
			Calibrating     bool    `json:"calibrating"`
			Seeking         bool    `json:"seeking"`
			SeekName        string  `json:"seek_name,omitempty"`
			SamplesTotal    uint64  `json:"samples_total"`
			DroppedTotal    uint64  `json:"dropped_total"`
			EmitErrorsTotal uint64  `json:"emit_errors_total"`
			LastUpdateUTC   string  `json:"last_update_utc,omitempty"`
		}{
			Yaw:             snap.Pose.Yaw,
			Pitch:           snap.Pose.Pitch,
			Roll:            snap.Pose.Roll,
			Calibrated:      snap.Calibrated,
			Calibrating:     snap.Calibrating,
			Seeking:         snap.Seeking,
			SeekName:        snap.SeekName,
			SamplesTotal:    snap.SamplesTotal,
			DroppedTotal:    snap.DroppedTotal,
			EmitErrorsTotal: snap.EmitErrorsTotal,
		}
		if !snap.LastUpdateAt.IsZero() {
			resp.LastUpdateUTC = snap.LastUpdateAt.UTC().Format(time.RFC3339Nano)
		}
		writeJSON(w, resp)
	})

	// Full catalog metadata.
	mux.HandleFunc("/api/stars", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		type starEntry struct {
			HIP  int        `json:"hip"`
			Name string     `json:"name,omitempty"`
			Mag  float64    `json:"mag"`
			Dir  [3]float64 `json:"dir"`
		}
		stars := make([]starEntry, 0, cat.Len())
		for i := 0; i < cat.Len(); i++ {
			s := cat.Star(i)
			stars = append(stars, starEntry{HIP: s.HIP, Name: s.Name, Mag: s.Mag, Dir: s.Dir})
		}
		resp := struct {
			Stars []starEntry `json:"stars"`
		}{Stars: stars}
		writeJSON(w, resp)
	})

	// Star list for the find-star picker.
	mux.HandleFunc("/api/star-names", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		resp := struct {
			Stars []catalog.NamedStar `json:"stars"`
		}{Stars: cat.Names()}
		writeJSON(w, resp)
	})

	mux.HandleFunc("/api/constellations", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		list := cons
		if list == nil {
			list = []catalog.Constellation{}
		}
		resp := struct {
			Constellations []catalog.Constellation `json:"constellations"`
		}{Constellations: list}
		writeJSON(w, resp)
	})

	mux.HandleFunc("/api/calibrate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		// The window is driven by sample timestamps; give the stream slack.
		ctx, cancel := context.WithTimeout(r.Context(), calWindow+5*time.Second)
		defer cancel()
		if err := ctl.Calibrate(ctx); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if hub != nil {
			hub.Announce("calibration_done")
		}
		writeOK(w)
	})

	mux.HandleFunc("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := ctl.Reset(ctx); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeOK(w)
	})

	mux.HandleFunc("/api/find-star", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			HIP int `json:"hip"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		name, err := ctl.LockTarget(ctx, req.HIP)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := struct {
			OK   bool   `json:"ok"`
			Name string `json:"name"`
		}{OK: true, Name: name}
		writeJSON(w, resp)
	})

	mux.HandleFunc("/api/cancel-find-star", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := ctl.CancelLock(ctx); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if hub != nil {
			hub.Announce("find_star_cancelled")
		}
		writeOK(w)
	})

	if hub != nil {
		mux.Handle("/ws", hub)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		snap := ctl.Snapshot()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<!doctype html><html><head><meta charset=\"utf-8\"><title>Starfinder</title></head><body>")
		_, _ = fmt.Fprintf(w, "<h1>Starfinder</h1>")
		_, _ = fmt.Fprintf(w, "<p>Live stream on <code>/ws</code>. Status on <a href=\"/api/status\">/api/status</a>.</p>")
		_, _ = fmt.Fprintf(w, "<pre>yaw=%.2f pitch=%.2f roll=%.2f\ncalibrated=%v\nsamples_total=%d</pre>",
			snap.Pose.Yaw, snap.Pose.Pitch, snap.Pose.Roll, snap.Calibrated, snap.SamplesTotal,
		)
		_, _ = fmt.Fprintf(w, "</body></html>")
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("{\"ok\":true}\n"))
}

func Serve(ctx context.Context, listenAddr string, handler http.Handler) error {
	// No WriteTimeout: /ws connections are long-lived.
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

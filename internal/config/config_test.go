package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"starfinder/internal/orientation"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(write(t, "{}"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("listen=%q", cfg.ListenAddr)
	}
	if cfg.View.FOVDeg != 30 || cfg.View.FrontendFOVDeg != 60 {
		t.Fatalf("view=%+v", cfg.View)
	}
	// Seek cone defaults to half the LED FOV.
	if cfg.View.SeekFOVDeg != 15 {
		t.Fatalf("seek=%v want 15", cfg.View.SeekFOVDeg)
	}
	if cfg.View.GridCols != 12 || cfg.View.GridRows != 8 {
		t.Fatalf("grid=%dx%d", cfg.View.GridCols, cfg.View.GridRows)
	}
	if cfg.Tracker.Calibration != 1500*time.Millisecond {
		t.Fatalf("calibration=%v", cfg.Tracker.Calibration)
	}
	if cfg.Gyro.Source != "serial" || cfg.Gyro.Port != "/dev/ttyACM0" || cfg.Gyro.BaudRate != 115200 {
		t.Fatalf("gyro=%+v", cfg.Gyro)
	}

	m, err := cfg.Tracker.AxisMap()
	if err != nil {
		t.Fatalf("axis map: %v", err)
	}
	if m != orientation.DefaultAxisMap() {
		t.Fatalf("axes=%+v want default", m)
	}
}

func TestLoad_FullDocument(t *testing.T) {
	cfg, err := Load(write(t, `
listen_addr: ":9090"
view:
  fov_deg: 40
  seek_fov_deg: 10
  grid_cols: 13
tracker:
  calibration: 2s
  yaw_axis: y
  yaw_sign: -1
gyro:
  source: script
  script_path: ./pan.yaml
led:
  enable: true
  port: /dev/ttyUSB1
mqtt:
  enable: true
udp:
  enable: true
  dest: "192.168.10.255:4000"
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.View.SeekFOVDeg != 10 || cfg.View.GridCols != 13 {
		t.Fatalf("view=%+v", cfg.View)
	}
	m, err := cfg.Tracker.AxisMap()
	if err != nil {
		t.Fatalf("axis map: %v", err)
	}
	if m.Yaw != orientation.AxisY || m.YawSign != -1 {
		t.Fatalf("axes=%+v", m)
	}
	if cfg.LED.BaudRate != 115200 {
		t.Fatalf("led baud=%v", cfg.LED.BaudRate)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" || cfg.MQTT.ClientID != "starfinder" {
		t.Fatalf("mqtt=%+v", cfg.MQTT)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"fov out of range":      "view: {fov_deg: 200}",
		"bad sign":              "tracker: {yaw_sign: 2}",
		"bad axis":              "tracker: {pitch_axis: q}",
		"script without path":   "gyro: {source: script}",
		"unknown source":        "gyro: {source: i2c}",
		"led without port":      "led: {enable: true}",
		"udp without dest":      "udp: {enable: true}",
		"buttons without pin":   "buttons: {enable: true}",
		"grid too wide to pack": "view: {grid_cols: 20}",
	}
	for name, doc := range cases {
		if _, err := Load(write(t, doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

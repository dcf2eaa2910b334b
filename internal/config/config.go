package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"starfinder/internal/orientation"
)

type Config struct {
	ListenAddr string        `yaml:"listen_addr"`
	Catalog    CatalogConfig `yaml:"catalog"`
	View       ViewConfig    `yaml:"view"`
	Tracker    TrackerConfig `yaml:"tracker"`
	Gyro       GyroConfig    `yaml:"gyro"`
	LED        LEDConfig     `yaml:"led"`
	MQTT       MQTTConfig    `yaml:"mqtt"`
	UDP        UDPConfig     `yaml:"udp"`
	Display    DisplayConfig `yaml:"display"`
	Buttons    ButtonConfig  `yaml:"buttons"`
}

type CatalogConfig struct {
	StarsCSV          string `yaml:"stars_csv"`
	ConstellationsCSV string `yaml:"constellations_csv"`
}

type ViewConfig struct {
	FOVDeg         float64 `yaml:"fov_deg"`
	FrontendFOVDeg float64 `yaml:"frontend_fov_deg"`
	// SeekFOVDeg is the cone that counts as "found" in seek mode. The
	// observed devices disagree on this value, so it is a knob; zero means
	// half the LED FOV.
	SeekFOVDeg float64 `yaml:"seek_fov_deg"`
	GridCols   int     `yaml:"grid_cols"`
	GridRows   int     `yaml:"grid_rows"`
}

type TrackerConfig struct {
	Calibration time.Duration `yaml:"calibration"`
	YawAxis     string        `yaml:"yaw_axis"`
	PitchAxis   string        `yaml:"pitch_axis"`
	RollAxis    string        `yaml:"roll_axis"`
	YawSign     int           `yaml:"yaw_sign"`
	PitchSign   int           `yaml:"pitch_sign"`
	RollSign    int           `yaml:"roll_sign"`
}

type GyroConfig struct {
	// Source is "serial" or "script".
	Source     string `yaml:"source"`
	Port       string `yaml:"port"`
	BaudRate   uint   `yaml:"baud_rate"`
	ScriptPath string `yaml:"script_path"`
}

type LEDConfig struct {
	Enable   bool   `yaml:"enable"`
	Port     string `yaml:"port"`
	BaudRate uint   `yaml:"baud_rate"`
}

type MQTTConfig struct {
	Enable   bool   `yaml:"enable"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

type UDPConfig struct {
	Enable bool   `yaml:"enable"`
	Dest   string `yaml:"dest"`
}

// DisplayConfig selects the I2C bus for the SSD1306 monitor; empty means the
// first bus periph finds. The controller address is the part's fixed 0x3C.
type DisplayConfig struct {
	Enable bool   `yaml:"enable"`
	Bus    string `yaml:"bus"`
}

type ButtonConfig struct {
	Enable       bool `yaml:"enable"`
	CalibratePin int  `yaml:"calibrate_pin"`
	ResetPin     int  `yaml:"reset_pin"`
}

// AxisMap converts the tracker section into the orientation package's
// immutable construction config.
func (t TrackerConfig) AxisMap() (orientation.AxisMap, error) {
	m := orientation.DefaultAxisMap()
	var err error
	if t.YawAxis != "" {
		if m.Yaw, err = orientation.ParseAxis(t.YawAxis); err != nil {
			return m, fmt.Errorf("tracker.yaw_axis: %w", err)
		}
	}
	if t.PitchAxis != "" {
		if m.Pitch, err = orientation.ParseAxis(t.PitchAxis); err != nil {
			return m, fmt.Errorf("tracker.pitch_axis: %w", err)
		}
	}
	if t.RollAxis != "" {
		if m.Roll, err = orientation.ParseAxis(t.RollAxis); err != nil {
			return m, fmt.Errorf("tracker.roll_axis: %w", err)
		}
	}
	m.YawSign = float64(t.YawSign)
	m.PitchSign = float64(t.PitchSign)
	m.RollSign = float64(t.RollSign)
	return m, nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	if cfg.View.FOVDeg == 0 {
		cfg.View.FOVDeg = 30
	}
	if cfg.View.FOVDeg <= 0 || cfg.View.FOVDeg >= 180 {
		return Config{}, fmt.Errorf("view.fov_deg must be in (0,180)")
	}
	if cfg.View.FrontendFOVDeg == 0 {
		cfg.View.FrontendFOVDeg = 60
	}
	if cfg.View.FrontendFOVDeg <= 0 || cfg.View.FrontendFOVDeg >= 180 {
		return Config{}, fmt.Errorf("view.frontend_fov_deg must be in (0,180)")
	}
	if cfg.View.SeekFOVDeg == 0 {
		cfg.View.SeekFOVDeg = cfg.View.FOVDeg / 2
	}
	if cfg.View.SeekFOVDeg < 0 || cfg.View.SeekFOVDeg >= 180 {
		return Config{}, fmt.Errorf("view.seek_fov_deg must be in (0,180)")
	}
	if cfg.View.GridCols == 0 {
		cfg.View.GridCols = 12
	}
	if cfg.View.GridRows == 0 {
		cfg.View.GridRows = 8
	}
	if cfg.View.GridCols < 3 || cfg.View.GridCols > 16 || cfg.View.GridRows < 3 {
		return Config{}, fmt.Errorf("view grid %dx%d out of range", cfg.View.GridCols, cfg.View.GridRows)
	}

	if cfg.Tracker.Calibration <= 0 {
		cfg.Tracker.Calibration = 1500 * time.Millisecond
	}
	if cfg.Tracker.YawSign == 0 {
		cfg.Tracker.YawSign = 1
	}
	if cfg.Tracker.PitchSign == 0 {
		cfg.Tracker.PitchSign = 1
	}
	if cfg.Tracker.RollSign == 0 {
		cfg.Tracker.RollSign = 1
	}
	for name, sign := range map[string]int{
		"yaw_sign":   cfg.Tracker.YawSign,
		"pitch_sign": cfg.Tracker.PitchSign,
		"roll_sign":  cfg.Tracker.RollSign,
	} {
		if sign != 1 && sign != -1 {
			return Config{}, fmt.Errorf("tracker.%s must be 1 or -1", name)
		}
	}
	if _, err := cfg.Tracker.AxisMap(); err != nil {
		return Config{}, err
	}

	if cfg.Gyro.Source == "" {
		cfg.Gyro.Source = "serial"
	}
	switch cfg.Gyro.Source {
	case "serial":
		if cfg.Gyro.Port == "" {
			cfg.Gyro.Port = "/dev/ttyACM0"
		}
		if cfg.Gyro.BaudRate == 0 {
			cfg.Gyro.BaudRate = 115200
		}
	case "script":
		if cfg.Gyro.ScriptPath == "" {
			return Config{}, fmt.Errorf("gyro.script_path is required when gyro.source is script")
		}
	default:
		return Config{}, fmt.Errorf("gyro.source must be serial or script")
	}

	if cfg.LED.Enable {
		if cfg.LED.Port == "" {
			return Config{}, fmt.Errorf("led.port is required when led.enable is true")
		}
		if cfg.LED.BaudRate == 0 {
			cfg.LED.BaudRate = 115200
		}
	}
	if cfg.MQTT.Enable {
		if cfg.MQTT.Broker == "" {
			cfg.MQTT.Broker = "tcp://localhost:1883"
		}
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = "starfinder"
		}
	}
	if cfg.UDP.Enable && cfg.UDP.Dest == "" {
		return Config{}, fmt.Errorf("udp.dest is required when udp.enable is true")
	}
	if cfg.Buttons.Enable && cfg.Buttons.CalibratePin <= 0 {
		return Config{}, fmt.Errorf("buttons.calibrate_pin is required when buttons.enable is true")
	}

	return cfg, nil
}

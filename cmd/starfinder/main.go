package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"starfinder/internal/button"
	"starfinder/internal/catalog"
	"starfinder/internal/config"
	"starfinder/internal/display"
	"starfinder/internal/gyro"
	"starfinder/internal/ledmatrix"
	"starfinder/internal/pipeline"
	"starfinder/internal/web"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./dev.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cat := catalog.Default()
	if cfg.Catalog.StarsCSV != "" {
		cat, err = catalog.LoadCSV(cfg.Catalog.StarsCSV)
		if err != nil {
			log.Fatalf("catalog load failed: %v", err)
		}
	}
	var cons []catalog.Constellation
	if cfg.Catalog.ConstellationsCSV != "" {
		cons, err = catalog.LoadConstellationsCSV(cfg.Catalog.ConstellationsCSV)
		if err != nil {
			log.Fatalf("constellations load failed: %v", err)
		}
	}
	log.Printf("catalog: %d stars, %d constellations", cat.Len(), len(cons))

	axes, err := cfg.Tracker.AxisMap()
	if err != nil {
		log.Fatalf("tracker config invalid: %v", err)
	}

	hub := web.NewHub()
	emitters := []pipeline.Emitter{hub}

	if cfg.LED.Enable {
		led, err := ledmatrix.OpenSerial(cfg.LED.Port, cfg.LED.BaudRate)
		if err != nil {
			log.Fatalf("led matrix init failed: %v", err)
		}
		defer led.Close()
		emitters = append(emitters, led)
		log.Printf("led matrix on %s", cfg.LED.Port)
	}
	if cfg.MQTT.Enable {
		m, err := ledmatrix.ConnectMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		if err != nil {
			log.Fatalf("mqtt init failed: %v", err)
		}
		defer m.Close()
		emitters = append(emitters, m)
		log.Printf("mqtt broker %s", cfg.MQTT.Broker)
	}
	if cfg.UDP.Enable {
		u, err := ledmatrix.OpenUDP(cfg.UDP.Dest)
		if err != nil {
			log.Fatalf("udp init failed: %v", err)
		}
		defer u.Close()
		emitters = append(emitters, u)
		log.Printf("udp frames to %s", cfg.UDP.Dest)
	}
	if cfg.Display.Enable {
		oled, err := display.Open(cfg.Display.Bus)
		if err != nil {
			log.Fatalf("oled init failed: %v", err)
		}
		defer oled.Close()
		emitters = append(emitters, oled)
	}

	svc := pipeline.New(pipeline.Config{
		FOVDeg:         cfg.View.FOVDeg,
		FrontendFOVDeg: cfg.View.FrontendFOVDeg,
		SeekFOVDeg:     cfg.View.SeekFOVDeg,
		GridCols:       cfg.View.GridCols,
		GridRows:       cfg.View.GridRows,
		Calibration:    cfg.Tracker.Calibration,
	}, cat, cons, axes, emitters...)

	var src gyro.Source
	switch cfg.Gyro.Source {
	case "script":
		script, err := gyro.LoadScript(cfg.Gyro.ScriptPath)
		if err != nil {
			log.Fatalf("gyro script load failed: %v", err)
		}
		src = gyro.NewScriptSource(script)
		log.Printf("gyro source: script %s", cfg.Gyro.ScriptPath)
	default:
		serialSrc, err := gyro.OpenSerial(cfg.Gyro.Port, cfg.Gyro.BaudRate)
		if err != nil {
			log.Fatalf("gyro serial init failed: %v", err)
		}
		defer serialSrc.Close()
		src = serialSrc
		log.Printf("gyro source: serial %s @ %d", cfg.Gyro.Port, cfg.Gyro.BaudRate)
	}

	if cfg.Buttons.Enable {
		buttons, err := button.Open(button.Config{
			CalibratePin: cfg.Buttons.CalibratePin,
			ResetPin:     cfg.Buttons.ResetPin,
		}, svc)
		if err != nil {
			log.Fatalf("buttons init failed: %v", err)
		}
		defer buttons.Close()
	}

	log.Printf("starfinder starting")
	log.Printf("listen=%s fov=%.0f grid=%dx%d", cfg.ListenAddr, cfg.View.FOVDeg, cfg.View.GridCols, cfg.View.GridRows)

	go func() {
		err := svc.Run(ctx, src)
		if err != nil && ctx.Err() == nil {
			log.Printf("pipeline stopped: %v", err)
		}
		// A finished script source also ends the process.
		cancel()
	}()

	go func() {
		handler := web.Handler(svc, cat, cons, hub, cfg.Tracker.Calibration)
		err := web.Serve(ctx, cfg.ListenAddr, handler)
		if err != nil && ctx.Err() == nil {
			log.Printf("web server stopped: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Printf("starfinder stopping")
}

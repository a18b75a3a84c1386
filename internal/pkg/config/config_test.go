package config

import (
	"os"
	"strings"
	"testing"
)

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Database:  DatabaseConfig{Host: "localhost", Port: 5432, User: "propfinder", DBName: "propfinder"},
		NATS:      NATSConfig{URL: "nats://localhost:4222"},
		Valkey:    ValkeyConfig{Addr: "localhost:6379"},
		Temporal:  TemporalConfig{TaskQueue: "proximity-alerts", Enabled: true},
		Radar:     RadarConfig{RadiusMeters: 500, Step: 0.0005, Zoom: 1, Mode: "simulated", StartLat: 10.315, StartLon: 123.9175},
		Viewports: DefaultViewports(),
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Radar.Mode = "gps"
	cfg.Viewports = append(cfg.Viewports, ViewportConfig{ID: "map", South: 2, North: 1, West: 0, East: 1})

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"server.port", "radar.mode", "duplicated", "south < north"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestValidate_NoViewports(t *testing.T) {
	cfg := validConfig()
	cfg.Viewports = nil
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "viewport") {
		t.Fatalf("expected viewport error, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Radar.RadiusMeters != 500 || cfg.Radar.Step != 0.0005 {
		t.Errorf("unexpected radar defaults: %+v", cfg.Radar)
	}
	if len(cfg.Viewports) != 2 || cfg.Viewports[1].ID != "radar" {
		t.Errorf("unexpected viewports: %+v", cfg.Viewports)
	}
	if cfg.Telemetry.ServiceName != "test" {
		t.Errorf("expected service name test, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PROPFINDER_RADAR_RADIUS_METERS", "250")
	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Radar.RadiusMeters != 250 {
		t.Errorf("expected radius 250, got %v", cfg.Radar.RadiusMeters)
	}
}

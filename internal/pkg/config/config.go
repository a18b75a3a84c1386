package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	NATS      NATSConfig       `mapstructure:"nats"`
	Valkey    ValkeyConfig     `mapstructure:"valkey"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
	Temporal  TemporalConfig   `mapstructure:"temporal"`
	Radar     RadarConfig      `mapstructure:"radar"`
	Viewports []ViewportConfig `mapstructure:"viewports"`
	Log       LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
	// LocateTimeout bounds one-shot position requests, in milliseconds.
	LocateTimeout int `mapstructure:"locate_timeout"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	Enabled   bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RadarConfig holds the engine defaults shared by every viewport.
type RadarConfig struct {
	RadiusMeters float64 `mapstructure:"radius_meters"`
	Step         float64 `mapstructure:"step"`
	Zoom         float64 `mapstructure:"zoom"`
	Mode         string  `mapstructure:"mode"`
	StartLat     float64 `mapstructure:"start_lat"`
	StartLon     float64 `mapstructure:"start_lon"`
}

// ViewportConfig declares one engine instance. Zero radius or zoom inherit from radar.
type ViewportConfig struct {
	ID           string  `mapstructure:"id"`
	South        float64 `mapstructure:"south"`
	North        float64 `mapstructure:"north"`
	West         float64 `mapstructure:"west"`
	East         float64 `mapstructure:"east"`
	RadiusMeters float64 `mapstructure:"radius_meters"`
	Zoom         float64 `mapstructure:"zoom"`
}

// Load reads configuration from .env, file and environment variables.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "propfinder")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "propfinder")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.locate_timeout", 3000)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "proximity-alerts")
	v.SetDefault("temporal.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("radar.radius_meters", 500)
	v.SetDefault("radar.step", 0.0005)
	v.SetDefault("radar.zoom", 1.0)
	v.SetDefault("radar.mode", "simulated")
	v.SetDefault("radar.start_lat", 10.315)
	v.SetDefault("radar.start_lon", 123.9175)
	v.SetDefault("viewports", DefaultViewports())

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: PROPFINDER_DATABASE_HOST → database.host
	v.SetEnvPrefix("PROPFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultViewports reproduces the two views of the listing site: the street map
// and the radar.
func DefaultViewports() []ViewportConfig {
	return []ViewportConfig{
		{ID: "map", South: 10.314, North: 10.324, West: 123.916, East: 123.926},
		{ID: "radar", South: 10.31, North: 10.32, West: 123.91, East: 123.925},
	}
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Temporal.Enabled && c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required when temporal is enabled")
	}
	if c.Radar.RadiusMeters < 0 {
		errs = append(errs, fmt.Sprintf("radar.radius_meters must not be negative, got %v", c.Radar.RadiusMeters))
	}
	if c.Radar.Step <= 0 {
		errs = append(errs, fmt.Sprintf("radar.step must be positive, got %v", c.Radar.Step))
	}
	if c.Radar.Zoom <= 0 {
		errs = append(errs, fmt.Sprintf("radar.zoom must be positive, got %v", c.Radar.Zoom))
	}
	if m := strings.ToLower(c.Radar.Mode); m != "simulated" && m != "live" {
		errs = append(errs, fmt.Sprintf("radar.mode must be simulated or live, got %q", c.Radar.Mode))
	}
	if c.Radar.StartLat < -90 || c.Radar.StartLat > 90 || c.Radar.StartLon < -180 || c.Radar.StartLon > 180 {
		errs = append(errs, "radar.start_lat/start_lon out of range")
	}

	if len(c.Viewports) == 0 {
		errs = append(errs, "at least one viewport is required")
	}
	seen := make(map[string]bool, len(c.Viewports))
	for i, vp := range c.Viewports {
		if vp.ID == "" {
			errs = append(errs, fmt.Sprintf("viewports[%d].id is required", i))
			continue
		}
		if seen[vp.ID] {
			errs = append(errs, fmt.Sprintf("viewports[%d].id %q is duplicated", i, vp.ID))
		}
		seen[vp.ID] = true
		if !(vp.South < vp.North) || !(vp.West < vp.East) {
			errs = append(errs, fmt.Sprintf("viewport %q needs south < north and west < east", vp.ID))
		}
		if vp.RadiusMeters < 0 {
			errs = append(errs, fmt.Sprintf("viewport %q radius_meters must not be negative", vp.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// BackupConfig controls periodic copies of the SQLite database.
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// Interval returns the backup period, one day by default.
func (b BackupConfig) Interval() time.Duration {
	if b.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(b.IntervalHours) * time.Hour
}

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup BackupConfig `yaml:"backup"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	API struct {
		Port           int      `yaml:"port"`
		APIKeys        []string `yaml:"api_keys"`
		RateLimitRPS   float64  `yaml:"rate_limit_rps"`
		RateLimitBurst int      `yaml:"rate_limit_burst"`
	} `yaml:"api"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Doctors struct {
		ConfigPath            string `yaml:"config_path"`
		ReloadIntervalSeconds int    `yaml:"reload_interval_seconds"`
	} `yaml:"doctors"`

	Timeslot struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"timeslot"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if _, err = cfg.Location(); err != nil {
		return nil, err
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "data/appointment.db"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.RateLimitRPS <= 0 {
		c.API.RateLimitRPS = 10
	}
	if c.API.RateLimitBurst <= 0 {
		c.API.RateLimitBurst = 20
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Doctors.ConfigPath == "" {
		c.Doctors.ConfigPath = "configs/doctors.yaml"
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "backups"
	}
	if c.Backup.RetentionDays <= 0 {
		c.Backup.RetentionDays = 14
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Location resolves timeslot.timezone; empty means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timeslot.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timeslot.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timeslot.timezone: %w", err)
	}
	return loc, nil
}

func (c *Config) DoctorsReloadInterval() time.Duration {
	if c.Doctors.ReloadIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Doctors.ReloadIntervalSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

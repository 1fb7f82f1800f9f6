package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type EngineConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// StreamGrace is how long a monitor waits after a broken stream before
	// declaring the job failed. One policy for every job type.
	StreamGrace time.Duration `yaml:"stream_grace"`
}

type UploadsConfig struct {
	MaxBytes    int64  `yaml:"max_bytes"`
	MaxRows     int    `yaml:"max_rows"` // 0 disables the row ceiling
	DownloadDir string `yaml:"download_dir"`
}

type AgentConfig struct {
	Listen string `yaml:"listen"`
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type JanitorConfig struct {
	Interval  time.Duration `yaml:"interval"`
	Retention time.Duration `yaml:"retention"`
}

type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Agent    AgentConfig    `yaml:"agent"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Security SecurityConfig `yaml:"security"`
	Janitor  JanitorConfig  `yaml:"janitor"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Engine.RequestTimeout <= 0 {
		cfg.Engine.RequestTimeout = 30 * time.Second
	}
	if cfg.Engine.StreamGrace <= 0 {
		cfg.Engine.StreamGrace = 5 * time.Second
	}
	if cfg.Uploads.MaxBytes <= 0 {
		cfg.Uploads.MaxBytes = 10 << 20
	}
	if cfg.Uploads.DownloadDir == "" {
		cfg.Uploads.DownloadDir = "downloads"
	}
	if cfg.Agent.Listen == "" {
		cfg.Agent.Listen = ":8090"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Janitor.Interval <= 0 {
		cfg.Janitor.Interval = time.Minute
	}
	if cfg.Janitor.Retention <= 0 {
		cfg.Janitor.Retention = 24 * time.Hour
	}

	// Minimal validation
	if cfg.Engine.BaseURL == "" {
		return nil, errors.New("engine.base_url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 12 * time.Hour
	}
	return d
}

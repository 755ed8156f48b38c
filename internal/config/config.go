package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// AppConfig carries everything the process needs at startup. Environment
// variables win; a YAML file named by CONFIG_FILE fills in what the
// environment leaves empty.
type AppConfig struct {
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	ListenAddr       string `yaml:"listen_addr"`
	NotifyWebhookURL string `yaml:"notify_webhook_url"`
	MessageDir       string `yaml:"message_dir"`

	InitialHostColor string        `yaml:"initial_host_color"`
	HostTokenTTL     time.Duration `yaml:"host_token_ttl"`
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:       ":8080",
		InitialHostColor: "white",
		HostTokenTTL:     72 * time.Hour,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("NOTIFY_WEBHOOK_URL")); v != "" {
		cfg.NotifyWebhookURL = v
	}
	if v := strings.TrimSpace(os.Getenv("MESSAGE_DIR")); v != "" {
		cfg.MessageDir = v
	}
	if v := strings.TrimSpace(os.Getenv("INITIAL_HOST_COLOR")); v != "" {
		cfg.InitialHostColor = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("HOST_TOKEN_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("bad HOST_TOKEN_TTL %q", v)
		}
		cfg.HostTokenTTL = d
	}

	switch cfg.InitialHostColor {
	case "white", "black":
	default:
		return nil, fmt.Errorf("initial host color must be white or black, got %q", cfg.InitialHostColor)
	}

	return cfg, nil
}

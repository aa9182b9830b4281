package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server's tunable settings. Values come from the yaml
// file and may be overridden per-field with environment variables.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Game struct {
		RoundLimit   int `yaml:"round_limit"`
		RoundPauseMS int `yaml:"round_pause_ms"`
	} `yaml:"game"`
	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Game.RoundLimit = 10
	cfg.Game.RoundPauseMS = 1500
	return &cfg
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Game.RoundLimit = getEnvAsInt("GAME_ROUND_LIMIT", cfg.Game.RoundLimit)
	cfg.Game.RoundPauseMS = getEnvAsInt("GAME_ROUND_PAUSE_MS", cfg.Game.RoundPauseMS)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)

	return cfg, nil
}

func (c *Config) roundPause() time.Duration {
	return time.Duration(c.Game.RoundPauseMS) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

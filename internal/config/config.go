package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
	OpsPort  int    `yaml:"ops_port"`
	PageSize int    `yaml:"page_size"` // managed-users listing page size

	ResetKeyTTL          time.Duration `yaml:"reset_key_ttl"`         // validity window of a reset key
	TokenRetention       time.Duration `yaml:"token_retention"`       // keep persistent tokens this long after last use
	UnactivatedRetention time.Duration `yaml:"unactivated_retention"` // keep unactivated accounts this long
	TokenSweepAt         string        `yaml:"token_sweep_at"`        // "HH:MM" local time
	StaleSweepAt         string        `yaml:"stale_sweep_at"`        // "HH:MM" local time
	EventDestination     string        `yaml:"event_destination"`     // task type for user-changed events
}

type Private struct {
	Pg    Pg    `yaml:"pg"`
	Redis Redis `yaml:"redis"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// applyDefaults fills zero values so a minimal public.yaml works.
func (p *Public) applyDefaults() {
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.OpsPort == 0 {
		p.OpsPort = 8081
	}
	if p.PageSize == 0 {
		p.PageSize = 20
	}
	if p.ResetKeyTTL == 0 {
		p.ResetKeyTTL = 24 * time.Hour
	}
	if p.TokenRetention == 0 {
		p.TokenRetention = 30 * 24 * time.Hour
	}
	if p.UnactivatedRetention == 0 {
		p.UnactivatedRetention = 3 * 24 * time.Hour
	}
	if p.TokenSweepAt == "" {
		p.TokenSweepAt = "00:00"
	}
	if p.StaleSweepAt == "" {
		p.StaleSweepAt = "01:00"
	}
	if p.EventDestination == "" {
		p.EventDestination = "user:updated"
	}
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.applyDefaults()

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}

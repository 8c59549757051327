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

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type BrokerConfig struct {
	Port         int    `yaml:"port"`
	DatabaseURL  string `yaml:"database_url"`
	PingInterval time.Duration `yaml:"ping_interval"` // SSE keep-alive
}

type AgentConfig struct {
	BrokerURL    string        `yaml:"broker_url"`
	AgentID      string        `yaml:"agent_id"`
	AgentName    string        `yaml:"agent_name"`
	Executor     string        `yaml:"executor"` // claude-code | codex | sdk
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Model        string        `yaml:"model"`
	MaxTurns     int           `yaml:"max_turns"`
	PollInterval time.Duration `yaml:"poll_interval"`
	JobsDir      string        `yaml:"jobs_dir"`
}

type Config struct {
	Log    LogConfig    `yaml:"log"`
	Broker BrokerConfig `yaml:"broker"`
	Agent  AgentConfig  `yaml:"agent"`

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
	cfg.ApplyDefaults()
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// ApplyDefaults fills zero values so a partial config file still works.
func (cfg *Config) ApplyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Broker.Port == 0 {
		cfg.Broker.Port = 8123
	}
	if cfg.Broker.PingInterval <= 0 {
		cfg.Broker.PingInterval = 15 * time.Second
	}
	if cfg.Agent.BrokerURL == "" {
		cfg.Agent.BrokerURL = "http://localhost:8123"
	}
	if cfg.Agent.Executor == "" {
		cfg.Agent.Executor = "claude-code"
	}
	if cfg.Agent.MaxTurns <= 0 {
		cfg.Agent.MaxTurns = 50
	}
	if cfg.Agent.PollInterval <= 0 {
		cfg.Agent.PollInterval = 5 * time.Second
	}
	if cfg.Agent.JobsDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Agent.JobsDir = home + "/.agentmarket/jobs"
		} else {
			cfg.Agent.JobsDir = "jobs"
		}
	}
}

// ValidateBroker checks the fields the broker binary needs.
func (cfg *Config) ValidateBroker() error {
	if cfg.Broker.DatabaseURL == "" {
		return errors.New("broker.database_url is required")
	}
	return nil
}

// ValidateAgent checks the fields the daemon binary needs.
func (cfg *Config) ValidateAgent() error {
	switch cfg.Agent.Executor {
	case "claude-code", "codex":
	case "sdk":
		if cfg.Agent.APIKey == "" {
			return errors.New("agent.api_key is required for the sdk executor")
		}
	default:
		return fmt.Errorf("unknown agent.executor %q", cfg.Agent.Executor)
	}
	return nil
}

package config

import (
	"time"

	"github.com/dispatchd/dispatchd/internal/core/domain"
	redisqueue "github.com/dispatchd/dispatchd/internal/infra/redis"
	"github.com/dispatchd/dispatchd/internal/retry"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server  ServerConfig      `yaml:"server"`
	Targets []TargetConfig    `yaml:"targets"`
	Retry   RetryConfig       `yaml:"retry"`
	Redis   redisqueue.Config `yaml:"redis"`
	Logging LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TargetConfig holds settings for one webhook destination.
type TargetConfig struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	Channel string        `yaml:"channel"`
	Timeout time.Duration `yaml:"timeout"`
	Retry   *RetryConfig  `yaml:"retry"` // overrides service-wide defaults
}

// Target converts the config entry to its domain form.
func (t TargetConfig) Target() domain.Target {
	return domain.Target{Name: t.Name, URL: t.URL, Channel: t.Channel}
}

// RetryConfig holds retry behavior settings.
type RetryConfig struct {
	MaxAttempts int             `yaml:"max_attempts"`
	Strategy    string          `yaml:"strategy"` // "chain" or "exponential"
	Steps       []time.Duration `yaml:"steps"`
	Initial     time.Duration   `yaml:"initial"`
	Multiplier  float64         `yaml:"multiplier"`
	MinDelay    time.Duration   `yaml:"min_delay"`
	MaxDelay    time.Duration   `yaml:"max_delay"`
}

// Policy builds the retry.Policy described by this config section.
func (rc RetryConfig) Policy() retry.Policy {
	pol := retry.DefaultPolicy()
	if rc.MaxAttempts > 0 {
		pol.MaxAttempts = rc.MaxAttempts
	}

	switch rc.Strategy {
	case "exponential":
		pol.Wait = retry.Exponential{
			Initial:    rc.Initial,
			Multiplier: rc.Multiplier,
			Min:        rc.MinDelay,
			Max:        rc.MaxDelay,
		}
	case "chain", "":
		if len(rc.Steps) > 0 {
			pol.Wait = retry.FixedChain(rc.Steps)
		}
	}
	return pol
}

// merged overlays per-target retry settings on the service-wide defaults.
func (rc RetryConfig) merged(override *RetryConfig) RetryConfig {
	if override == nil {
		return rc
	}
	out := rc
	if override.MaxAttempts > 0 {
		out.MaxAttempts = override.MaxAttempts
	}
	if override.Strategy != "" {
		out.Strategy = override.Strategy
		out.Steps = override.Steps
		out.Initial = override.Initial
		out.Multiplier = override.Multiplier
		out.MinDelay = override.MinDelay
		out.MaxDelay = override.MaxDelay
	}
	return out
}

// PolicyFor resolves the effective retry policy for a target.
func (c *AppConfig) PolicyFor(t TargetConfig) retry.Policy {
	return c.Retry.merged(t.Retry).Policy()
}

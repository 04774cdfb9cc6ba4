// Package config provides YAML-based configuration loading for Atelier.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Atelier configuration, loaded from atelier.yaml.
type Config struct {
	Studio     string          `yaml:"studio"`
	CodePrefix string          `yaml:"code_prefix"`
	Database   DatabaseConfig  `yaml:"database"`
	Linker     LinkerConfig    `yaml:"linker"`
	Notify     NotifyConfig    `yaml:"notify"`
	Dashboard  DashboardConfig `yaml:"dashboard"`
}

// DatabaseConfig holds connection settings for the entity store. SQLite is
// the default; MySQL is supported for shared deployments.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "mysql"
	Path   string `yaml:"path"`   // sqlite file path
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Name   string `yaml:"name"`
	User   string `yaml:"user"`
}

// LinkerConfig tunes the batch linker.
type LinkerConfig struct {
	BatchLimit     int      `yaml:"batch_limit"`
	GenericDomains []string `yaml:"generic_domains"`
}

// NotifyConfig holds chat-notification settings for review digests.
type NotifyConfig struct {
	DigestCron string        `yaml:"digest_cron"`
	Slack      SlackConfig   `yaml:"slack"`
	Discord    DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack bot credentials.
type SlackConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// DiscordConfig holds Discord bot credentials.
type DiscordConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// DashboardConfig holds dashboard server settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// defaultGenericDomains are mail providers whose domains never identify a
// client and are excluded from domain-pattern learning and matching.
var defaultGenericDomains = []string{
	"gmail.com",
	"googlemail.com",
	"outlook.com",
	"hotmail.com",
	"yahoo.com",
	"icloud.com",
	"me.com",
	"live.com",
	"protonmail.com",
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsGenericDomain reports whether domain belongs to a generic mail provider.
func (c *Config) IsGenericDomain(domain string) bool {
	domain = strings.ToLower(domain)
	for _, d := range c.Linker.GenericDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.CodePrefix == "" {
		c.CodePrefix = "BK"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "atelier.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "atelier"
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Linker.BatchLimit == 0 {
		c.Linker.BatchLimit = 200
	}
	if len(c.Linker.GenericDomains) == 0 {
		c.Linker.GenericDomains = append([]string(nil), defaultGenericDomains...)
	}
	for i, d := range c.Linker.GenericDomains {
		c.Linker.GenericDomains[i] = strings.ToLower(d)
	}
	if c.Notify.DigestCron == "" {
		c.Notify.DigestCron = "0 9 * * 1-5"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Studio == "" {
		errs = append(errs, "studio is required")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite or mysql, got %q", c.Database.Driver))
	}
	for _, r := range c.CodePrefix {
		if r < 'A' || r > 'Z' {
			errs = append(errs, "code_prefix must be uppercase letters")
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

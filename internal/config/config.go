// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads service configuration from an optional YAML file, an
// optional dotenv file and process environment variables, in that order of
// precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dialtonehq/callcheck/pkg/confopt"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v2"
)

type Config struct {
	ListenAddr string       `yaml:"listen_addr"`
	Switch     SwitchConfig `yaml:"switch"`
	Auth       AuthConfig   `yaml:"auth"`
	Mock       MockConfig   `yaml:"mock"`
}

type SwitchConfig struct {
	Transport string           `yaml:"transport"`
	Timeout   confopt.Duration `yaml:"timeout"`
	AMI       AMIConfig        `yaml:"ami"`
	ARI       ARIConfig        `yaml:"ari"`
}

type AMIConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type ARIConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type AuthConfig struct {
	APIKey    string `yaml:"api_key"`
	DevAPIKey string `yaml:"dev_api_key"`
}

type MockConfig struct {
	TimeoutMinutes int `yaml:"timeout_minutes"`
}

func Default() Config {
	return Config{
		ListenAddr: ":8000",
		Switch: SwitchConfig{
			Transport: "ami",
			Timeout:   confopt.Duration(time.Second * 5),
			AMI: AMIConfig{
				Host:     "host.docker.internal",
				Port:     5038,
				Username: "admin",
				Password: "amp111",
			},
			ARI: ARIConfig{
				URL: "http://127.0.0.1:8088/ari",
			},
		},
		Auth: AuthConfig{
			APIKey:    "your-secure-api-key",
			DevAPIKey: "dev-api-key",
		},
		Mock: MockConfig{
			TimeoutMinutes: 5,
		},
	}
}

// Load builds the effective configuration. configPath and envPath may be
// empty; a missing implicit ".env" is not an error, a missing explicit one is.
func Load(configPath, envPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := loadYAML(&cfg, configPath); err != nil {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
	}

	if err := loadDotEnv(envPath); err != nil {
		return Config{}, fmt.Errorf("env file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address not set")
	}
	switch c.Switch.Transport {
	case "ami", "ari":
	default:
		return fmt.Errorf("unknown switch transport '%s' (expected 'ami' or 'ari')", c.Switch.Transport)
	}
	if c.Mock.TimeoutMinutes < 1 {
		return fmt.Errorf("mock timeout must be at least 1 minute (got %d)", c.Mock.TimeoutMinutes)
	}
	return nil
}

func (c *Config) MockTTL() time.Duration {
	return time.Duration(c.Mock.TimeoutMinutes) * time.Minute
}

func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv exports KEY=VALUE pairs from a dotenv file into the process
// environment. Variables already present in the environment are kept.
func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	f, err := ini.Load(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, key := range f.Section("").Keys() {
		if _, ok := os.LookupEnv(key.Name()); !ok {
			if err := os.Setenv(key.Name(), key.Value()); err != nil {
				return err
			}
		}
	}

	return nil
}

func applyEnv(cfg *Config) error {
	envString("LISTEN_ADDR", &cfg.ListenAddr)
	envString("SWITCH_TRANSPORT", &cfg.Switch.Transport)
	envString("ASTERISK_AMI_HOST", &cfg.Switch.AMI.Host)
	envString("ASTERISK_AMI_USERNAME", &cfg.Switch.AMI.Username)
	envString("ASTERISK_AMI_PASSWORD", &cfg.Switch.AMI.Password)
	envString("ASTERISK_ARI_URL", &cfg.Switch.ARI.URL)
	envString("ASTERISK_ARI_USERNAME", &cfg.Switch.ARI.Username)
	envString("ASTERISK_ARI_PASSWORD", &cfg.Switch.ARI.Password)
	envString("API_KEY", &cfg.Auth.APIKey)
	envString("DEV_API_KEY", &cfg.Auth.DevAPIKey)

	if v, ok := os.LookupEnv("ASTERISK_AMI_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ASTERISK_AMI_PORT: invalid port '%s'", v)
		}
		cfg.Switch.AMI.Port = port
	}

	if v, ok := os.LookupEnv("MOCK_TIMEOUT_MINUTES"); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MOCK_TIMEOUT_MINUTES: invalid value '%s'", v)
		}
		cfg.Mock.TimeoutMinutes = minutes
	}

	if v, ok := os.LookupEnv("SWITCH_TIMEOUT"); ok {
		d, err := parseTimeout(v)
		if err != nil {
			return err
		}
		cfg.Switch.Timeout = confopt.Duration(d)
	}

	return nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

// parseTimeout accepts both duration strings ("5s") and bare seconds ("5").
func parseTimeout(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("SWITCH_TIMEOUT: invalid duration '%s'", v)
	}
	return time.Duration(secs) * time.Second, nil
}

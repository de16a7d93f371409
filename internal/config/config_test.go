// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dialtonehq/callcheck/pkg/confopt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "ami", cfg.Switch.Transport)
	assert.Equal(t, "host.docker.internal", cfg.Switch.AMI.Host)
	assert.Equal(t, 5038, cfg.Switch.AMI.Port)
	assert.Equal(t, 5, cfg.Mock.TimeoutMinutes)
	assert.Equal(t, 5*time.Minute, cfg.MockTTL())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callcheck.yaml")
	data := `
listen_addr: 127.0.0.1:9000
switch:
  transport: ari
  timeout: 2s
  ari:
    url: http://pbx:8088/ari
    username: asterisk
auth:
  api_key: prod-key
mock:
  timeout_minutes: 10
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path, "")

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "ari", cfg.Switch.Transport)
	assert.Equal(t, confopt.Duration(2*time.Second), cfg.Switch.Timeout)
	assert.Equal(t, "http://pbx:8088/ari", cfg.Switch.ARI.URL)
	assert.Equal(t, "asterisk", cfg.Switch.ARI.Username)
	assert.Equal(t, "prod-key", cfg.Auth.APIKey)
	assert.Equal(t, "admin", cfg.Switch.AMI.Username)
	assert.Equal(t, 10, cfg.Mock.TimeoutMinutes)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")

	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("switch:\n  ami:\n    host: from-file\n"), 0600))

	t.Setenv("ASTERISK_AMI_HOST", "from-env")
	t.Setenv("ASTERISK_AMI_PORT", "5039")
	t.Setenv("SWITCH_TIMEOUT", "3")
	t.Setenv("MOCK_TIMEOUT_MINUTES", "2")

	cfg, err := Load(path, "")

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Switch.AMI.Host)
	assert.Equal(t, 5039, cfg.Switch.AMI.Port)
	assert.Equal(t, confopt.Duration(3*time.Second), cfg.Switch.Timeout)
	assert.Equal(t, 2, cfg.Mock.TimeoutMinutes)
}

func TestLoad_DotEnv(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	data := "API_KEY=file-key\nASTERISK_AMI_PASSWORD=file-secret\n"
	require.NoError(t, os.WriteFile(envPath, []byte(data), 0600))

	t.Setenv("API_KEY", "env-key")
	t.Setenv("ASTERISK_AMI_PASSWORD", "placeholder")
	require.NoError(t, os.Unsetenv("ASTERISK_AMI_PASSWORD"))

	cfg, err := Load("", envPath)

	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Auth.APIKey)
	assert.Equal(t, "file-secret", cfg.Switch.AMI.Password)
}

func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "nope.env"))

	assert.Error(t, err)
}

func TestLoad_InvalidEnvValues(t *testing.T) {
	tests := map[string]struct {
		key   string
		value string
	}{
		"ami port":     {key: "ASTERISK_AMI_PORT", value: "not-a-port"},
		"mock timeout": {key: "MOCK_TIMEOUT_MINUTES", value: "soon"},
		"timeout":      {key: "SWITCH_TIMEOUT", value: "fast"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(test.key, test.value)

			_, err := Load("", "")

			assert.Error(t, err)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		change  func(cfg *Config)
		wantErr bool
	}{
		"defaults":          {change: func(*Config) {}},
		"ari transport":     {change: func(cfg *Config) { cfg.Switch.Transport = "ari" }},
		"unknown transport": {change: func(cfg *Config) { cfg.Switch.Transport = "sip" }, wantErr: true},
		"empty listen addr": {change: func(cfg *Config) { cfg.ListenAddr = "" }, wantErr: true},
		"zero mock timeout": {change: func(cfg *Config) { cfg.Mock.TimeoutMinutes = 0 }, wantErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			test.change(&cfg)

			if test.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("non-existent config file", func(t *testing.T) {
		cfg, err := Load("invalid/path/to/config.yml")

		assert.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Nil(t, cfg)
	})

	t.Run("invalid config file", func(t *testing.T) {
		data := `local_server:
  port: not number
api:
  base_url: http://localhost:8000`

		f := createTempFile(t, []byte(data))
		cfg, err := Load(f.Name())

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := Load("")

		assert.NoError(t, err)
		assert.NotNil(t, cfg)
		assert.Equal(t, EnvDev, cfg.Env)
		assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
		assert.Equal(t, 2*time.Second, cfg.CopiedFlagTTL)
		assert.NotEmpty(t, cfg.Credentials.Path)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "https://sh.rt")
		t.Setenv("CREDENTIALS_PATH", "/tmp/creds.db")

		cfg, err := Load("")

		assert.NoError(t, err)
		assert.NotNil(t, cfg)
		assert.Equal(t, "https://sh.rt", cfg.API.BaseURL)
		assert.Equal(t, "/tmp/creds.db", cfg.Credentials.Path)
	})

	t.Run("success", func(t *testing.T) {
		data := `api:
  base_url: https://sh.rt
  timeout: 5s
local_server:
  port: 9090
credentials:
  path: /tmp/creds.db
copied_flag_ttl: 3s`

		f := createTempFile(t, []byte(data))
		cfg, err := Load(f.Name())

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		var wantCfg Config
		setDefaults(&wantCfg)

		wantCfg.API.BaseURL = "https://sh.rt"
		wantCfg.API.Timeout = 5 * time.Second
		wantCfg.LocalServer.Port = 9090
		wantCfg.Credentials.Path = "/tmp/creds.db"
		wantCfg.CopiedFlagTTL = 3 * time.Second

		assert.Equal(t, wantCfg, *cfg)
	})
}

func createTempFile(t testing.TB, data []byte) *os.File {
	t.Helper()

	f, err := os.CreateTemp("", "config.yml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})

	if _, err := f.Write(data); err != nil {
		t.Fatalf("Failed to write to file: %v", err)
	}

	return f
}

func TestLocalServer_Addr(t *testing.T) {
	s := LocalServer{Port: 7070}

	assert.Equal(t, "127.0.0.1:7070", s.Addr())
}

func TestCredentials_MigrateDSN(t *testing.T) {
	c := Credentials{Path: "/tmp/creds.db"}

	assert.Equal(t, "sqlite:///tmp/creds.db", c.MigrateDSN())
}

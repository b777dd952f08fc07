package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type Config struct {
	Env           string        `yaml:"env"`
	CopiedFlagTTL time.Duration `yaml:"copied_flag_ttl"`
	API           `yaml:"api"`
	LocalServer   `yaml:"local_server"`
	Credentials   `yaml:"credentials"`
}

// API describes the URL shortener backend this client talks to.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

var defaultAPI = API{
	BaseURL: "http://localhost:8000",
	Timeout: 15 * time.Second,
}

// LocalServer configures the localhost dashboard server.
type LocalServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
}

var defaultLocalServer = LocalServer{
	Port:           7070,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *LocalServer) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", s.Port)
}

// Credentials configures the credential database.
type Credentials struct {
	Path           string `yaml:"path"`
	MigrationsPath string `yaml:"migrations_path"`
}

var defaultCredentials = Credentials{
	MigrationsPath: "file://migrations",
}

// DSN returns the data source name for opening the credential database.
func (c *Credentials) DSN() string {
	return c.Path
}

// MigrateDSN returns the database URL used by the migration tool.
func (c *Credentials) MigrateDSN() string {
	return "sqlite://" + c.Path
}

// Load reads the configuration from the given yaml file, applying defaults
// and environment overrides. An empty path is valid: a client app may run
// unconfigured, on defaults and environment alone.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	// A .env file next to the binary is picked up if present.
	_ = godotenv.Load()

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Credentials.Path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to resolve user config dir: %w", op, err)
		}
		cfg.Credentials.Path = filepath.Join(dir, "url-shortener-client", "credentials.db")
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.CopiedFlagTTL = 2 * time.Second
	cfg.API = defaultAPI
	cfg.LocalServer = defaultLocalServer
	cfg.Credentials = defaultCredentials
}

func applyEnv(cfg *Config) {
	cfg.API.BaseURL = getEnv("API_BASE_URL", cfg.API.BaseURL)
	cfg.Credentials.Path = getEnv("CREDENTIALS_PATH", cfg.Credentials.Path)
	cfg.Env = getEnv("APP_ENV", cfg.Env)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

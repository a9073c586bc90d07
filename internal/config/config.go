// Package config resolves server and client settings from defaults, an
// optional YAML file, a .env file and COOKSYNC_* environment variables, in
// increasing order of precedence. Command-line flags are applied on top
// by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. COOKSYNC_ADDR.
const EnvPrefix = "COOKSYNC"

// Server configures cooksync-server.
type Server struct {
	Addr           string        `mapstructure:"addr"`
	Store          string        `mapstructure:"store"`
	DataDir        string        `mapstructure:"data_dir"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTL         time.Duration `mapstructure:"jwt_ttl"`
	GoogleClientID string        `mapstructure:"google_client_id"`
	DefaultTemp    int           `mapstructure:"default_temp"`
	Seed           bool          `mapstructure:"seed"`
}

// Client configures the cooksync terminal client.
type Client struct {
	ServerURL string        `mapstructure:"server_url"`
	Token     string        `mapstructure:"token"`
	Appliance string        `mapstructure:"appliance"`
	Sound     string        `mapstructure:"sound"`
	Minute    time.Duration `mapstructure:"minute"`
	LogLevel  string        `mapstructure:"log_level"`
	LogFile   string        `mapstructure:"log_file"`
}

// Option configures loading.
type Option func(*loader)

type loader struct {
	configFile string
	envFile    string
}

// WithConfigFile reads a YAML (or any viper-supported) file first.
func WithConfigFile(path string) Option {
	return func(l *loader) { l.configFile = path }
}

// WithEnvFile loads a .env file into the environment. Defaults to ".env";
// a missing file is not an error.
func WithEnvFile(path string) Option {
	return func(l *loader) { l.envFile = path }
}

// LoadServer resolves the server settings.
func LoadServer(opts ...Option) (*Server, error) {
	v, err := newViper(opts, map[string]any{
		"addr":             ":8000",
		"store":            "memory",
		"data_dir":         ".cooksync-data",
		"log_level":        "info",
		"log_format":       "console",
		"cors_origins":     []string{"*"},
		"jwt_secret":       "",
		"jwt_ttl":          7 * 24 * time.Hour,
		"google_client_id": "",
		"default_temp":     180,
		"seed":             false,
	})
	if err != nil {
		return nil, err
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding server config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have a fixed set of values.
func (c *Server) Validate() error {
	var errs []error
	switch c.Store {
	case "memory", "badger":
	default:
		errs = append(errs, fmt.Errorf("store must be memory or badger, got %q", c.Store))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be console or json, got %q", c.LogFormat))
	}
	if c.GoogleClientID != "" && c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required when google_client_id is set"))
	}
	if c.DefaultTemp <= 0 {
		errs = append(errs, fmt.Errorf("default_temp must be positive, got %d", c.DefaultTemp))
	}
	return errors.Join(errs...)
}

// LocalMode reports whether sign-in is disabled.
func (c *Server) LocalMode() bool { return c.GoogleClientID == "" }

// LoadClient resolves the terminal client settings.
func LoadClient(opts ...Option) (*Client, error) {
	v, err := newViper(opts, map[string]any{
		"server_url": "http://localhost:8000",
		"token":      "",
		"appliance":  "Fan",
		"sound":      "tone",
		"minute":     time.Minute,
		"log_level":  "info",
		"log_file":   ".cooksync-logs/cooksync.log",
	})
	if err != nil {
		return nil, err
	}

	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding client config: %w", err)
	}
	switch cfg.Sound {
	case "tone", "bell", "off":
	default:
		return nil, fmt.Errorf("sound must be tone, bell or off, got %q", cfg.Sound)
	}
	if cfg.Minute <= 0 {
		return nil, fmt.Errorf("minute must be positive, got %s", cfg.Minute)
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	return &cfg, nil
}

func newViper(opts []Option, defaults map[string]any) (*viper.Viper, error) {
	l := loader{envFile: ".env"}
	for _, opt := range opts {
		opt(&l)
	}

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", l.envFile, err)
		}
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", l.configFile, err)
		}
	}
	return v, nil
}

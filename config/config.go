package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DefaultBaseURL         = "http://localhost:8080"
	DefaultTimeZone        = "America/New_York"
	DefaultTimeout         = 15 * time.Second
	DefaultRefreshInterval = 60 * time.Second
	DefaultSessionMaxAge   = 24 * time.Hour
	DefaultLogLevel        = "info"
	LogFileName            = "dine.log"
	DefaultLLMBaseURL      = "https://openrouter.ai/api/v1"
	DefaultLLMModel        = "deepseek/deepseek-r1-distill-llama-70b"
)

type Config struct {
	BaseURL         string        `yaml:"base_url"`
	TimeZone        string        `yaml:"time_zone"`
	Timeout         time.Duration `yaml:"timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Session         SessionConfig `yaml:"session"`
	Log             LogConfig     `yaml:"log"`
	LLM             LLMConfig     `yaml:"llm"`

	warnings []error
}

type SessionConfig struct {
	Dir    string        `yaml:"dir"`
	MaxAge time.Duration `yaml:"max_age"`
}

type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Token   string `yaml:"-"`
}

// Default returns the configuration used when no file or environment sets a value.
func Default() Config {
	dir := defaultDir()
	return Config{
		BaseURL:         DefaultBaseURL,
		TimeZone:        DefaultTimeZone,
		Timeout:         DefaultTimeout,
		RefreshInterval: DefaultRefreshInterval,
		Session: SessionConfig{
			Dir:    dir,
			MaxAge: DefaultSessionMaxAge,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		LLM: LLMConfig{
			BaseURL: DefaultLLMBaseURL,
			Model:   DefaultLLMModel,
		},
	}
}

// DefaultPath is where Load looks for the YAML file when none is given.
func DefaultPath() string {
	return filepath.Join(defaultDir(), "config.yaml")
}

// Load reads the YAML file at path (a missing file is not an error), then
// loads .env into the environment, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if err := readFile(path, &cfg); err != nil {
		return Config{}, err
	}

	// .env is optional; anything else wrong with it is reported once logging is up.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		cfg.warnings = append(cfg.warnings, fmt.Errorf("loading .env: %w", err))
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Warnings are problems Load recovered from.
func (c Config) Warnings() []error {
	return c.warnings
}

// ScreenLogFile is where logs go while the terminal UI owns the screen: the
// configured file, else LogFileName next to the session.
func (c Config) ScreenLogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.Session.Dir, LogFileName)
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshalling config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.BaseURL, "DINE_BASE_URL")
	setString(&cfg.TimeZone, "DINE_TIME_ZONE")
	setString(&cfg.Session.Dir, "DINE_SESSION_DIR")
	setString(&cfg.Log.Env, "ENV")
	setString(&cfg.Log.Level, "DINE_LOG_LEVEL")
	setString(&cfg.Log.File, "DINE_LOG_FILE")
	setString(&cfg.LLM.Model, "DINE_LLM_MODEL")
	setString(&cfg.LLM.Token, "OPENROUTER_API_KEY")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url must be set")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid time_zone %q: %w", c.TimeZone, err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval)
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("session.max_age must be positive, got %s", c.Session.MaxAge)
	}
	return nil
}

func defaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "dine")
}

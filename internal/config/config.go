package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/tinsel/internal/countdown"
	"github.com/five82/tinsel/internal/leonardo"
	"github.com/five82/tinsel/internal/scene"
)

// Generator modes.
const (
	ModeRemote      = "remote"      // call the image service directly
	ModeEndpoint    = "endpoint"    // call a tinsel server's /api/generate-element
	ModePlaceholder = "placeholder" // never call out
)

// StaggerDisabled is the Stagger value for an explicit "0s": no delay between
// additions.
const StaggerDisabled time.Duration = -1

// Config is the resolved runtime configuration.
type Config struct {
	Countdown countdown.Target

	CheckEvery time.Duration
	Interval   time.Duration
	Stagger    time.Duration
	DBPath     string

	GeneratorMode string
	EndpointURL   string
	APIBaseURL    string
	APIKey        string
	ModelID       string
	Poll          leonardo.PollPolicy

	Listen string

	LogPath  string
	LogLevel string
}

const (
	defaultConfigPath = "~/.config/tinsel/config.toml"
	defaultDBPath     = "~/.local/share/tinsel/scene.db"
	defaultLogPath    = "~/.local/share/tinsel/tinsel.log"
	defaultListen     = "127.0.0.1:8787"
	defaultCheckEvery = 60 * time.Second
	defaultLogLevel   = "info"
)

type rawConfig struct {
	Countdown struct {
		Month          *int `toml:"month"`
		Day            *int `toml:"day"`
		Hour           *int `toml:"hour"`
		CelebrateHours *int `toml:"celebrate_hours"`
	} `toml:"countdown"`
	Scene struct {
		CheckEvery string `toml:"check_every"`
		Interval   string `toml:"interval"`
		Stagger    string `toml:"stagger"`
		DBPath     string `toml:"db_path"`
	} `toml:"scene"`
	Generator struct {
		Mode         string `toml:"mode"`
		Endpoint     string `toml:"endpoint"`
		BaseURL      string `toml:"base_url"`
		APIKey       string `toml:"api_key"`
		ModelID      string `toml:"model_id"`
		PollInterval string `toml:"poll_interval"`
		PollAttempts int    `toml:"poll_attempts"`
	} `toml:"generator"`
	Server struct {
		Listen string `toml:"listen"`
	} `toml:"server"`
	Log struct {
		Path  string `toml:"path"`
		Level string `toml:"level"`
	} `toml:"log"`
}

// envOverrides are applied after the file.
type envOverrides struct {
	APIKey        string `env:"LEONARDO_API_KEY"`
	Listen        string `env:"TINSEL_LISTEN"`
	DBPath        string `env:"TINSEL_DB"`
	EndpointURL   string `env:"TINSEL_GENERATOR_URL"`
	GeneratorMode string `env:"TINSEL_GENERATOR_MODE"`
	LogLevel      string `env:"TINSEL_LOG_LEVEL"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		Countdown:     countdown.Default(),
		CheckEvery:    defaultCheckEvery,
		Interval:      scene.DefaultInterval,
		Stagger:       scene.DefaultStagger,
		DBPath:        mustExpand(defaultDBPath),
		GeneratorMode: ModeRemote,
		EndpointURL:   defaultListen,
		APIBaseURL:    leonardo.DefaultBaseURL,
		ModelID:       leonardo.DefaultModelID,
		Poll:          leonardo.DefaultPollPolicy(),
		Listen:        defaultListen,
		LogPath:       mustExpand(defaultLogPath),
		LogLevel:      defaultLogLevel,
	}
}

// Load reads the config file at path (or the default location), falling back to
// defaults when it is missing, then applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw rawConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if err := cfg.apply(raw); err != nil {
			return Config{}, err
		}
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyEnv(overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	if v := raw.Countdown.Month; v != nil {
		c.Countdown.Month = time.Month(*v)
	}
	if v := raw.Countdown.Day; v != nil {
		c.Countdown.Day = *v
	}
	if v := raw.Countdown.Hour; v != nil {
		c.Countdown.Hour = *v
	}
	if v := raw.Countdown.CelebrateHours; v != nil {
		c.Countdown.Celebrate = time.Duration(*v) * time.Hour
	}

	var err error
	if c.CheckEvery, err = durationOr(raw.Scene.CheckEvery, c.CheckEvery, "scene.check_every"); err != nil {
		return err
	}
	if c.Interval, err = durationOr(raw.Scene.Interval, c.Interval, "scene.interval"); err != nil {
		return err
	}
	if c.Stagger, err = durationOr(raw.Scene.Stagger, c.Stagger, "scene.stagger"); err != nil {
		return err
	}
	if c.Stagger == 0 {
		// scene.New reads zero as "use the default"
		c.Stagger = StaggerDisabled
	}
	if c.Poll.Interval, err = durationOr(raw.Generator.PollInterval, c.Poll.Interval, "generator.poll_interval"); err != nil {
		return err
	}
	if raw.Generator.PollAttempts > 0 {
		c.Poll.MaxAttempts = raw.Generator.PollAttempts
	}

	if v := strings.TrimSpace(raw.Scene.DBPath); v != "" {
		c.DBPath = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Generator.Mode)); v != "" {
		c.GeneratorMode = v
	}
	if v := strings.TrimSpace(raw.Generator.Endpoint); v != "" {
		c.EndpointURL = v
	}
	if v := strings.TrimSpace(raw.Generator.BaseURL); v != "" {
		c.APIBaseURL = v
	}
	c.APIKey = strings.TrimSpace(raw.Generator.APIKey)
	if v := strings.TrimSpace(raw.Generator.ModelID); v != "" {
		c.ModelID = v
	}
	if v := strings.TrimSpace(raw.Server.Listen); v != "" {
		c.Listen = v
	}
	if v := strings.TrimSpace(raw.Log.Path); v != "" {
		c.LogPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

func (c *Config) applyEnv(o envOverrides) {
	if v := strings.TrimSpace(o.APIKey); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(o.Listen); v != "" {
		c.Listen = v
	}
	if v := strings.TrimSpace(o.DBPath); v != "" {
		c.DBPath = mustExpand(v)
	}
	if v := strings.TrimSpace(o.EndpointURL); v != "" {
		c.EndpointURL = v
	}
	if v := strings.ToLower(strings.TrimSpace(o.GeneratorMode)); v != "" {
		c.GeneratorMode = v
	}
	if v := strings.ToLower(strings.TrimSpace(o.LogLevel)); v != "" {
		c.LogLevel = v
	}
}

// Validate rejects values the program cannot run with.
func (c Config) Validate() error {
	switch c.GeneratorMode {
	case ModeRemote, ModeEndpoint, ModePlaceholder:
	default:
		return fmt.Errorf("generator.mode %q: want remote, endpoint or placeholder", c.GeneratorMode)
	}
	if c.Countdown.Month < time.January || c.Countdown.Month > time.December {
		return fmt.Errorf("countdown.month %d out of range", c.Countdown.Month)
	}
	if c.Countdown.Day < 1 || c.Countdown.Day > 31 {
		return fmt.Errorf("countdown.day %d out of range", c.Countdown.Day)
	}
	if c.Countdown.Hour < 0 || c.Countdown.Hour > 23 {
		return fmt.Errorf("countdown.hour %d out of range", c.Countdown.Hour)
	}
	if c.Countdown.Celebrate < 0 {
		return fmt.Errorf("countdown.celebrate_hours %s is negative", c.Countdown.Celebrate)
	}
	if c.CheckEvery <= 0 || c.Interval <= 0 {
		return fmt.Errorf("scene.check_every and scene.interval must be positive")
	}
	if _, err := uuid.Parse(c.ModelID); err != nil {
		return fmt.Errorf("generator.model_id %q: %w", c.ModelID, err)
	}
	return nil
}

// HasAPIKey reports whether remote generation credentials are configured.
func (c Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func durationOr(raw string, fallback time.Duration, field string) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

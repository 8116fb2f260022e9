package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

// Load reads configuration from a YAML file, applies environment overrides
// and fills defaults. A missing file is not an error.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, &domain.ConfigError{Field: "file", Err: fmt.Errorf("failed to read config file: %w", err)}
		default:
			// Expand environment variables in the YAML content
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return nil, &domain.ConfigError{Field: "file", Err: fmt.Errorf("failed to parse config file: %w", err)}
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	if cfg.Notify.BodyFile != "" {
		body, err := os.ReadFile(cfg.Notify.BodyFile)
		if err != nil {
			return nil, &domain.ConfigError{Field: "notify.body_file", Err: err}
		}
		cfg.Notify.Body = string(body)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays transport settings and a few paths from the environment.
func applyEnv(cfg *AppConfig) error {
	if v := firstEnv("SMTP_HOST", "SMTP_SERVER"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := firstEnv("SMTP_USER", "EMAIL_USER"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := firstEnv("SMTP_PASS", "EMAIL_PASS"); v != "" {
		cfg.SMTP.Password = v
	}
	cfg.SMTP.From = envString("EMAIL_FROM", cfg.SMTP.From)
	cfg.SMTP.To = envString("EMAIL_TO", cfg.SMTP.To)

	port, err := envInt("SMTP_PORT", cfg.SMTP.Port)
	if err != nil {
		return &domain.ConfigError{Field: "smtp.port", Err: err}
	}
	cfg.SMTP.Port = port

	cfg.Fetch.URL = envString("RPA_FETCH_URL", cfg.Fetch.URL)
	cfg.Cache.Redis.Addr = envString("REDIS_ADDR", cfg.Cache.Redis.Addr)
	cfg.OutputDir = envString("RPA_OUTPUT_DIR", cfg.OutputDir)

	attempts, err := envInt("RPA_RETRIES", cfg.Retry.Attempts)
	if err != nil {
		return &domain.ConfigError{Field: "retry.attempts", Err: err}
	}
	cfg.Retry.Attempts = attempts

	timeout, err := envDuration("RPA_FETCH_TIMEOUT", cfg.Fetch.Timeout)
	if err != nil {
		return &domain.ConfigError{Field: "fetch.timeout", Err: err}
	}
	cfg.Fetch.Timeout = timeout
	return nil
}

func (c *AppConfig) setDefaults() {
	if c.Fetch.Mode == "" {
		c.Fetch.Mode = FetchSubprocess
	}
	if len(c.Fetch.Command) == 0 {
		c.Fetch.Command = []string{"python3"}
	}
	if c.Fetch.Script == "" && c.Fetch.Mode == FetchSubprocess {
		c.Fetch.Script = "src/day5/scraper.py"
	}
	if c.Fetch.Output == "" {
		c.Fetch.Output = "data/webdata.csv"
	}
	if c.Fetch.SettleDelay == 0 {
		c.Fetch.SettleDelay = time.Second
	}
	if c.Cache.Redis.Addr != "" && c.Cache.Redis.TTL == 0 {
		c.Cache.Redis.TTL = time.Hour
	}
	if c.Cache.Dir != "" && c.Cache.MaxAge == 0 {
		c.Cache.MaxAge = time.Hour
	}
	c.SMTP = c.SMTP.Normalize()
	if c.Retry.Attempts <= 0 {
		c.Retry.Attempts = 3
	}
	if c.Retry.BaseDelay <= 0 {
		c.Retry.BaseDelay = 2 * time.Second
	}
	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = 20 * time.Second
	}
	if c.Retry.RunMaxDelay <= 0 {
		c.Retry.RunMaxDelay = 30 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.OutputDir == "" {
		c.OutputDir = "data"
	}
	if c.CapturesDir == "" {
		c.CapturesDir = "captures"
	}
	if c.ReportPath == "" {
		c.ReportPath = "report.md"
	}
}

// Validate checks settings that do not depend on the command being run.
// SMTP completeness is checked by the caller only when sending.
func (c *AppConfig) Validate() error {
	switch c.Fetch.Mode {
	case FetchSubprocess:
	case FetchHTTP:
		if c.Fetch.URL == "" {
			return &domain.ConfigError{Field: "fetch.url", Err: errors.New("required in http mode")}
		}
	default:
		return &domain.ConfigError{Field: "fetch.mode", Err: fmt.Errorf("unknown mode %q", c.Fetch.Mode)}
	}
	if c.Retry.BaseDelay > c.Retry.MaxDelay {
		return &domain.ConfigError{Field: "retry", Err: errors.New("base_delay exceeds max_delay")}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &domain.ConfigError{Field: "logging.level", Err: fmt.Errorf("unknown level %q", c.Logging.Level)}
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", key, err)
		}
		return i, nil
	}
	return def, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", key, err)
		}
		return d, nil
	}
	return def, nil
}

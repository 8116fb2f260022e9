package config

import (
	"time"

	"github.com/adamzambudio/rpa-lab/internal/adapters/fetchcache"
	"github.com/adamzambudio/rpa-lab/internal/adapters/mailer"
)

// Fetch modes.
const (
	FetchSubprocess = "subprocess"
	FetchHTTP       = "http"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Fetch       FetchConfig   `yaml:"fetch"`
	Cache       CacheConfig   `yaml:"cache"`
	SMTP        mailer.Config `yaml:"smtp"`
	Notify      NotifyConfig  `yaml:"notify"`
	Retry       RetryConfig   `yaml:"retry"`
	Capture     CaptureConfig `yaml:"capture"`
	Logging     LoggingConfig `yaml:"logging"`
	OutputDir   string        `yaml:"output_dir"`
	CapturesDir string        `yaml:"captures_dir"`
	ReportPath  string        `yaml:"report_path"`
	MetricsFile string        `yaml:"metrics_file"` // empty disables the textfile export
}

// FetchConfig selects and configures the data source.
type FetchConfig struct {
	Mode        string        `yaml:"mode"` // subprocess, http
	Command     []string      `yaml:"command"`
	Script      string        `yaml:"script"`
	WorkDir     string        `yaml:"workdir"`
	Output      string        `yaml:"output"`
	URL         string        `yaml:"url"` // http mode only
	SettleDelay time.Duration `yaml:"settle_delay"`
	Timeout     time.Duration `yaml:"timeout"`
}

// CacheConfig enables the fetch cache. Redis wins over the local directory when both are set.
type CacheConfig struct {
	Dir    string                 `yaml:"dir"`
	MaxAge time.Duration          `yaml:"max_age"`
	Redis  fetchcache.RedisConfig `yaml:"redis"`
}

// NotifyConfig holds message templates. BodyFile, when set, replaces Body.
type NotifyConfig struct {
	Subject  string `yaml:"subject"`
	Body     string `yaml:"body"`
	BodyFile string `yaml:"body_file"`
}

// RetryConfig holds backoff settings shared by fetch and notify.
type RetryConfig struct {
	Attempts    int           `yaml:"attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`     // batch
	RunMaxDelay time.Duration `yaml:"run_max_delay"` // single run
}

// CaptureConfig configures the diagnostic capture command; {path} is replaced
// with the target file. An empty command disables capture.
type CaptureConfig struct {
	Command []string `yaml:"command"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

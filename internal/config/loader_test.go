package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rpa.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Fetch.Mode != FetchSubprocess || cfg.Fetch.Output != "data/webdata.csv" {
		t.Errorf("fetch defaults = %+v", cfg.Fetch)
	}
	if cfg.Retry.Attempts != 3 || cfg.Retry.BaseDelay != 2*time.Second || cfg.Retry.MaxDelay != 20*time.Second {
		t.Errorf("retry defaults = %+v", cfg.Retry)
	}
	if cfg.SMTP.Port != 587 {
		t.Errorf("smtp port = %d, want 587", cfg.SMTP.Port)
	}
	if cfg.OutputDir != "data" || cfg.CapturesDir != "captures" || cfg.ReportPath != "report.md" {
		t.Errorf("paths = %s %s %s", cfg.OutputDir, cfg.CapturesDir, cfg.ReportPath)
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_SCRAPER_URL", "http://scraper.local/data")

	path := writeConfig(t, `
fetch:
  mode: http
  url: ${TEST_SCRAPER_URL}
  timeout: 45s
retry:
  attempts: 5
  base_delay: 1s
  max_delay: 10s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Fetch.URL != "http://scraper.local/data" {
		t.Errorf("url = %q", cfg.Fetch.URL)
	}
	if cfg.Fetch.Timeout != 45*time.Second {
		t.Errorf("timeout = %v", cfg.Fetch.Timeout)
	}
	if cfg.Retry.Attempts != 5 || cfg.Retry.MaxDelay != 10*time.Second {
		t.Errorf("retry = %+v", cfg.Retry)
	}
}

func TestLoad_SMTPEnvOverrides(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want func(t *testing.T, cfg *AppConfig)
	}{
		{
			name: "primary names",
			env:  map[string]string{"SMTP_HOST": "smtp.a", "SMTP_USER": "u@a", "SMTP_PASS": "p", "SMTP_PORT": "2525"},
			want: func(t *testing.T, cfg *AppConfig) {
				if cfg.SMTP.Host != "smtp.a" || cfg.SMTP.Port != 2525 {
					t.Errorf("smtp = %+v", cfg.SMTP)
				}
				if cfg.SMTP.From != "u@a" || cfg.SMTP.To != "u@a" {
					t.Errorf("from/to should default to user: %+v", cfg.SMTP)
				}
			},
		},
		{
			name: "legacy names",
			env:  map[string]string{"SMTP_SERVER": "smtp.b", "EMAIL_USER": "u@b", "EMAIL_PASS": "p", "EMAIL_TO": "boss@b"},
			want: func(t *testing.T, cfg *AppConfig) {
				if cfg.SMTP.Host != "smtp.b" || cfg.SMTP.Username != "u@b" || cfg.SMTP.To != "boss@b" {
					t.Errorf("smtp = %+v", cfg.SMTP)
				}
				if err := cfg.SMTP.Validate(); err != nil {
					t.Errorf("Validate: %v", err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"SMTP_HOST", "SMTP_SERVER", "SMTP_USER", "EMAIL_USER", "SMTP_PASS", "EMAIL_PASS", "SMTP_PORT", "EMAIL_FROM", "EMAIL_TO"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, "smtp:\n  host: from-file\n")
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.want(t, cfg)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{"bad yaml", "fetch: [", nil},
		{"unknown mode", "fetch:\n  mode: ftp\n", nil},
		{"http without url", "fetch:\n  mode: http\n", nil},
		{"bad level", "logging:\n  level: loud\n", nil},
		{"base above max", "retry:\n  base_delay: 1m\n  max_delay: 1s\n", nil},
		{"bad port env", "", map[string]string{"SMTP_PORT": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, domain.ErrConfig) {
				t.Errorf("err = %v, want config error", err)
			}
		})
	}
}

func TestLoad_BodyFile(t *testing.T) {
	dir := t.TempDir()
	body := filepath.Join(dir, "body.html")
	if err := os.WriteFile(body, []byte("<p>{{.City}}</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(writeConfig(t, "notify:\n  body_file: "+body+"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Notify.Body != "<p>{{.City}}</p>" {
		t.Errorf("body = %q", cfg.Notify.Body)
	}
}

package capture

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCommandCapturer_Capture(t *testing.T) {
	dir := t.TempDir()
	c := NewCommandCapturer([]string{"sh", "-c", `echo snapshot > "$0"`, PathPlaceholder}, dir)
	c.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	path, err := c.Capture(context.Background(), "Ana López")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if filepath.Base(path) != "Ana_L_pez_20240102_030405.png" {
		t.Errorf("capture path = %s", path)
	}
}

func TestCommandCapturer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		command []string
		want    string
	}{
		{"tool fails", []string{"sh", "-c", "echo no display >&2; exit 1"}, "no display"},
		{"tool writes nothing", []string{"sh", "-c", "exit 0"}, "did not write"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCommandCapturer(tt.command, t.TempDir()).Capture(context.Background(), "x")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestNop(t *testing.T) {
	path, err := Nop{}.Capture(context.Background(), "x")
	if path != "" || err != nil {
		t.Errorf("Nop.Capture = %q, %v", path, err)
	}
}

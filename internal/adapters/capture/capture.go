// Package capture takes diagnostic snapshots when a work item fails.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/adapters/excel"
)

// PathPlaceholder in a command argument is replaced with the capture file path.
const PathPlaceholder = "{path}"

// Nop captures nothing. It is the default on headless hosts.
type Nop struct{}

func (Nop) Capture(context.Context, string) (string, error) { return "", nil }

// CommandCapturer runs an external screenshot tool, e.g.
// ["import", "-window", "root", "{path}"].
type CommandCapturer struct {
	command []string
	dir     string
	ext     string
	timeout time.Duration
	now     func() time.Time
}

// NewCommandCapturer creates a capturer writing "<tag>_<ts><ext>" files into dir.
func NewCommandCapturer(command []string, dir string) *CommandCapturer {
	return &CommandCapturer{
		command: command,
		dir:     dir,
		ext:     ".png",
		timeout: 15 * time.Second,
		now:     time.Now,
	}
}

// Capture runs the tool and returns the file it produced.
func (c *CommandCapturer) Capture(ctx context.Context, tag string) (string, error) {
	if len(c.command) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create captures directory %s: %w", c.dir, err)
	}
	path := filepath.Join(c.dir, excel.SafeName(tag)+"_"+c.now().Format(excel.TimestampLayout)+c.ext)

	args := make([]string, len(c.command))
	for i, a := range c.command {
		args[i] = strings.ReplaceAll(a, PathPlaceholder, path)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("capture command failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("capture command did not write %s", path)
	}
	return path, nil
}

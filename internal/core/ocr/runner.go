package ocr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	// killGrace bounds how long a killed tool may keep its pipes open.
	killGrace = 5 * time.Second
	// logCap limits tool output copied into log records.
	logCap = 8 << 10
)

// Runner executes the external PDF tools (pdftotext, ocrmypdf). Tests substitute a
// stub so no binary is needed.
type Runner interface {
	Run(ctx context.Context, name string, logger *slog.Logger, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs a tool as a child process, killed when ctx ends.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("tool", filepath.Base(name))
	logger.Debug("tool.exec.start", "argv", append([]string{name}, args...))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = killGrace
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	start := time.Now()
	err := cmd.Run()
	attrs := []any{
		"duration_ms", time.Since(start).Milliseconds(),
		"exit_code", ExitCode(err),
		"stdout_bytes", out.Len(),
		"stderr_bytes", errb.Len(),
	}

	switch {
	case err == nil:
		logger.Debug("tool.exec.ok", attrs...)
	case ctx.Err() != nil:
		logger.Warn("tool.exec.killed", append(attrs, "reason", ctx.Err().Error())...)
	default:
		logger.Error("tool.exec.failed", append(attrs, "error", err, "stderr", truncate(errb.String(), logCap))...)
	}
	return out.Bytes(), errb.Bytes(), err
}

// ExitCode returns the exit status carried by err: 0 for nil, -1 when the tool could
// not be started or was killed by a signal.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

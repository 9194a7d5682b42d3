package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Runner executes external commands. Tests stub it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	fields := []zap.Field{
		zap.String("cmd", name),
		zap.String("args", strings.Join(args, " ")),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	}
	if err != nil {
		zap.L().Debug("ocr: exec failed", append(fields, zap.Error(err), zap.String("stderr", truncate(stderr.String(), 4<<10)))...)
	} else {
		zap.L().Debug("ocr: exec ok", append(fields, zap.Int("stdout_bytes", stdout.Len()))...)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

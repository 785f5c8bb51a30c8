package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ToolError is returned when tesseract or pdftoppm fails. Hint, when set,
// names the usual fix (missing binary, missing traineddata).
type ToolError struct {
	Tool   string
	Stderr string
	Hint   string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Tool, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	if isTesseract(name) {
		// batch workers already run pages in parallel; tesseract's own OpenMP threads only contend
		cmd.Env = append(os.Environ(), "OMP_THREAD_LIMIT=1")
	}
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		te := &ToolError{
			Tool:   filepath.Base(name),
			Stderr: truncate(errb.String(), 8<<10),
			Hint:   toolHint(name, args, errb.String(), err),
			Err:    err,
		}
		logger.Error("ocr.exec.failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"hint", te.Hint,
			"stderr", te.Stderr,
		)
		return out.Bytes(), errb.Bytes(), te
	}
	logger.Debug("ocr.exec.ok",
		"cmd", name,
		"args", strings.Join(args, " "),
		"duration_ms", dur.Milliseconds(),
		"stdout_bytes", out.Len(),
	)
	return out.Bytes(), errb.Bytes(), nil
}

func isTesseract(name string) bool {
	return strings.HasPrefix(strings.ToLower(filepath.Base(name)), "tesseract")
}

// toolHint maps well-known failures of the OCR toolchain to a fix.
func toolHint(name string, args []string, stderr string, err error) string {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		if isTesseract(name) {
			return "tesseract not found on PATH, install it or set TESSERACT_PATH"
		}
		return filepath.Base(name) + " not found on PATH, install poppler-utils or set PDFTOPPM_PATH"
	case isTesseract(name) && strings.Contains(stderr, "Failed loading language"):
		return fmt.Sprintf("traineddata for %q missing, install tesseract-ocr-%s or set TESSDATA_DIR",
			langArg(args), langArg(args))
	case strings.Contains(stderr, "Incorrect password") || strings.Contains(stderr, "Couldn't read xref"):
		return "pdf is encrypted or damaged"
	}
	return ""
}

// langArg returns the value following -l, or DefaultLang.
func langArg(args []string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-l" {
			return args[i+1]
		}
	}
	return DefaultLang
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

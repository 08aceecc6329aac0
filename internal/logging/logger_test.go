package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediasorter/internal/config"
	"mediasorter/internal/logging"
	"mediasorter/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "mediasorter.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerRendersSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subject.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithStage(services.WithSource(context.Background(), "/in/Show.S01E02.mkv"), "parse")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "sorter")).Info("parsed", logging.Int("season", 1))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "sorter: Show.S01E02.mkv (parse) · parsed") {
		t.Fatalf("unexpected console line %q", line)
	}
	if !strings.Contains(line, "season=1") {
		t.Fatalf("expected season field, got %q", line)
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["msg"] != "json message" || entry["level"] != "info" || entry["k"] != "v" {
		t.Fatalf("unexpected json entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithSource(ctx, "/in/movie.mkv")
	ctx = services.WithStage(ctx, "lookup")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WithContext(ctx, logger).Info("contextual log")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	for key, want := range map[string]string{
		logging.FieldRunID:  "run-1",
		logging.FieldSource: "/in/movie.mkv",
		logging.FieldStage:  "lookup",
	} {
		if entry[key] != want {
			t.Fatalf("field %s = %v, want %q", key, entry[key], want)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WarnWithContext(logger, "lookup failed", "metadata_lookup", logging.String(logging.FieldImpact, "skipped"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry[logging.FieldEventType] != "metadata_lookup" {
		t.Fatalf("unexpected event type %v", entry[logging.FieldEventType])
	}
	if entry[logging.FieldImpact] != "skipped" {
		t.Fatalf("expected caller impact to be kept, got %v", entry[logging.FieldImpact])
	}
	if entry[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error hint")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
}

func TestConsoleLoggerShowsShortRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "0f3c9a1e-7d52-4b0e-9d8e-2a6f1c3b5d70")
	logging.WithContext(ctx, logger).Info("run started", logging.String("path", "/in/My Movies"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO [0f3c9a1e] run started") {
		t.Fatalf("expected short run id prefix, got %q", line)
	}
	if strings.Contains(line, "run_id=") {
		t.Fatalf("run id should not repeat as a field at info level, got %q", line)
	}
	if !strings.Contains(line, `path="/in/My Movies"`) {
		t.Fatalf("expected quoted path, got %q", line)
	}
}

func TestErrorWithContextAddsErrorKind(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	err := services.Wrap(services.ErrIO, "organizer", "copy", "/lib/Heat (1995).mkv", os.ErrPermission)
	logging.ErrorWithContext(logger, "sort failed", "file_failed", logging.Error(err))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry[logging.FieldErrorKind] != string(services.KindIO) {
		t.Fatalf("error_kind = %v, want %q", entry[logging.FieldErrorKind], services.KindIO)
	}
	if entry[logging.FieldEventType] != "file_failed" {
		t.Fatalf("unexpected event type %v", entry[logging.FieldEventType])
	}
}

func TestJSONLoggerRendersDurationsAndErrors(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "values.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("lookup done",
		logging.Duration("elapsed", 1500*time.Millisecond),
		logging.Error(errors.New("tmdb: status 503")),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["elapsed"] != "1.5s" {
		t.Fatalf("elapsed = %v, want 1.5s", entry["elapsed"])
	}
	if entry["error"] != "tmdb: status 503" {
		t.Fatalf("error = %v", entry["error"])
	}
}

package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"voxprep/internal/logging"
)

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "generator")
	logger.Info("archive written", logging.String(logging.FieldCase, "psma_1"), logging.Int("index", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO generator: archive written") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "case=psma_1") || !strings.Contains(line, "index=3") {
		t.Fatalf("missing attributes in %q", line)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("resume scan", logging.Int("valid", 7))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if decoded["msg"] != "resume scan" {
		t.Fatalf("msg = %v", decoded["msg"])
	}
	if decoded["level"] != "debug" {
		t.Fatalf("level = %v", decoded["level"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("should be dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") {
		t.Fatalf("info line leaked through warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn line missing: %q", buf.String())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("goes nowhere", logging.Error(nil))
}

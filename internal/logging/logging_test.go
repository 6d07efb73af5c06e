package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected LogLevel
	}{
		{name: "debug", input: "debug", expected: LevelDebug},
		{name: "info", input: "info", expected: LevelInfo},
		{name: "warn", input: "warn", expected: LevelWarn},
		{name: "warning alias", input: "warning", expected: LevelWarn},
		{name: "error", input: "error", expected: LevelError},
		{name: "case insensitive", input: "DEBUG", expected: LevelDebug},
		{name: "surrounding space", input: "  error ", expected: LevelError},
		{name: "unknown falls back to info", input: "verbose", expected: LevelInfo},
		{name: "empty falls back to info", input: "", expected: LevelInfo},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// The tests below swap the global sink and must not run in parallel.

func TestWarnWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true)
	defer SetOutput(os.Stderr, false)

	Warn("disk %s is %d%% full", "media", 91)

	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("Expected a JSON log line, got %q: %v", buf.String(), err)
	}
	if line["level"] != "warn" {
		t.Errorf("Expected level warn, got %v", line["level"])
	}
	if line["message"] != "disk media is 91% full" {
		t.Errorf("Unexpected message: %v", line["message"])
	}
}

func TestWithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true)
	defer SetOutput(os.Stderr, false)

	With("run_id", "abc").With("root", "/photos").Error("scan failed")

	out := buf.String()
	if !strings.Contains(out, `"run_id":"abc"`) {
		t.Errorf("Expected run_id field in %q", out)
	}
	if !strings.Contains(out, `"root":"/photos"`) {
		t.Errorf("Expected root field in %q", out)
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	defer SetOutput(os.Stderr, false)

	Error("boom")

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("Expected console output to contain message, got %q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("Console format should not emit JSON, got %q", buf.String())
	}
}

func TestLoggingFunctionsDoNotPanic(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	defer SetOutput(os.Stderr, false)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logging panicked: %v", r)
		}
	}()

	Debug("test %s %d", "message", 123)
	Info("test %s %d", "message", 123)
	Warn("test message")
	Error("test message")
	Printf("always %s", "printed")
}

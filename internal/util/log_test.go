package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
	}

	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}

	if got := ParseLogLevel("unknown"); got != LevelInfo {
		t.Fatalf("ParseLogLevel default = %v, want %v", got, LevelInfo)
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelWarn, &buf)

	logger.Debugf("hidden %d", 1)
	logger.Infof("hidden %d", 2)
	logger.Warnf("visible %d", 3)
	logger.Errorf("visible %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected filtered output, got %q", out)
	}
	if !strings.Contains(out, "[WARN] visible 3") || !strings.Contains(out, "[ERROR] visible 4") {
		t.Fatalf("expected warn and error lines, got %q", out)
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelError, &buf)

	logger.Infof("before")
	logger.SetLevel(LevelDebug)
	logger.Debugf("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Fatalf("expected info suppressed at error level, got %q", out)
	}
	if !strings.Contains(out, "[DEBUG] after") {
		t.Fatalf("expected debug line after SetLevel, got %q", out)
	}
}

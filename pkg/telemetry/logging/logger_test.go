package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"harborlink/seaway/pkg/config"
)

func TestSetupWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("SetupWriter() error = %v", err)
	}

	logger.Info("relay started", "address", "127.0.0.1:8080")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not a JSON object: %v\noutput: %s", err, buf.String())
	}
	if entry["msg"] != "relay started" {
		t.Errorf("msg = %v, want %q", entry["msg"], "relay started")
	}
	if entry["address"] != "127.0.0.1:8080" {
		t.Errorf("address = %v, want %q", entry["address"], "127.0.0.1:8080")
	}
}

func TestSetupWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupWriter(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("SetupWriter() error = %v", err)
	}

	logger.Debug("frame written", "bytes", 42)

	if !strings.Contains(buf.String(), "frame written") {
		t.Errorf("output missing message: %s", buf.String())
	}
}

func TestSetupWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupWriter(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("SetupWriter() error = %v", err)
	}

	logger.Info("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("info record passed a warn-level logger: %s", buf.String())
	}

	logger.Warn("should pass")
	if buf.Len() == 0 {
		t.Error("warn record was filtered out")
	}
}

func TestSetLevelHotReload(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("SetupWriter() error = %v", err)
	}

	logger.Debug("before reload")
	if buf.Len() != 0 {
		t.Fatalf("debug record passed an info-level logger: %s", buf.String())
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	logger.Debug("after reload")
	if buf.Len() == 0 {
		t.Error("debug record filtered after SetLevel(debug)")
	}
}

func TestSetupWriter_UnknownFormat(t *testing.T) {
	_, err := SetupWriter(config.LoggingConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"verbose", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

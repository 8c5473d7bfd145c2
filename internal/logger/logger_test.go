package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging", "", FileOutput{}); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger("local", "loud", FileOutput{}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn", FileOutput{})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zap.WarnLevel) {
		t.Error("warn should be enabled")
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopsearch.log")
	l, err := NewLogger("local", "info", FileOutput{Path: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.Info("index seeded", zap.Int("products", 5))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"index seeded"`) {
		t.Errorf("log file = %s", data)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}
	l := zap.NewExample()
	if got := FromContext(ContextWithLogger(context.Background(), l)); got != l {
		t.Error("expected stored logger")
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/AlSimons/graph-ambient-weather/internal/config"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}
	logger := newWithWriter(&buf, cfg, "1.2.3", "wxplot")

	logger.Debug("hidden")
	logger.Info("chart written", "path", "wxgraph.png")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for k, want := range map[string]string{
		"msg": "chart written", "app": "wxplot", "version": "1.2.3", "env": "prod", "path": "wxgraph.png",
	} {
		if rec[k] != want {
			t.Errorf("%s = %v, want %q", k, rec[k], want)
		}
	}
}

func TestNew_DevUsesTint(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug}
	logger := newWithWriter(&buf, cfg, "dev", "wxload")

	logger.Debug("imported", "rows", 12)

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Fatalf("dev output looks like JSON: %q", out)
	}
	for _, want := range []string{"imported", "rows", "12", "wxload"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

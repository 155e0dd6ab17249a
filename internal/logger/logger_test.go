package logger

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("info", "json", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hidden")
	l.Warn("database provisioning failed", zap.String("database", "shop_api_dev"))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug entry should be filtered at info level")
	}
	if !strings.Contains(out, `"database":"shop_api_dev"`) || !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestNew_InvalidInput(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New("loud", "json", &buf); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New("info", "xml", &buf); err == nil {
		t.Error("expected error for invalid format")
	}
}

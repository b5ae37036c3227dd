package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"ippi/internal/logger"

	"github.com/charmbracelet/log"
)

func TestInitLevels(t *testing.T) {
	var buf bytes.Buffer

	logger.InitWriter(&buf, false, true)
	log.Debug("hidden")
	log.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug message logged without verbose: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "IPPI") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected prefixed warning, got %q", buf.String())
	}

	buf.Reset()
	logger.InitWriter(&buf, true, true)
	log.Debug("details", "key", 1)
	if !strings.Contains(buf.String(), "details") || !strings.Contains(buf.String(), "key=1") {
		t.Errorf("expected debug message in verbose mode, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected no escape sequences with no color, got %q", buf.String())
	}
}

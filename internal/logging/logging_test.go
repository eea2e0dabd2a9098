package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestInitText(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, LevelDebug, FormatText)
	defer Init(os.Stderr, LevelWarn, FormatText)

	Debug("hello", "key", "value")
	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "key=value") {
		t.Errorf("unexpected text output: %q", out)
	}
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, LevelInfo, FormatJSON)
	defer Init(os.Stderr, LevelWarn, FormatText)

	PluginLoading("opentype", "embedded")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "plugin_loading" {
		t.Errorf("msg = %v, want plugin_loading", rec["msg"])
	}
	if rec["plugin"] != "opentype" || rec["source"] != "embedded" {
		t.Errorf("missing attributes: %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, LevelWarn, FormatText)
	defer Init(os.Stderr, LevelWarn, FormatText)

	Info("hidden")
	Debug("hidden too")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}
	PluginError("broken", "register", errors.New("boom"))
	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("expected error attribute, got %q", buf.String())
	}
}

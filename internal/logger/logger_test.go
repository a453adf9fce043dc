package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestZapLoggerWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf)

	log.InfoObj("hello", "meta", map[string]any{"op": "getKey"})
	log.DebugObj("hidden", "meta", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "hello" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts field in %v", entry)
	}
	meta, ok := entry["meta"].(map[string]any)
	if !ok || meta["op"] != "getKey" {
		t.Fatalf("meta = %#v", entry["meta"])
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got.String() != "info" {
		t.Fatalf("parseLevel = %v", got)
	}
	if got := parseLevel("warning"); got.String() != "warn" {
		t.Fatalf("parseLevel = %v", got)
	}
}

func TestInitInstallsPackageLogger(t *testing.T) {
	log := Init("error")
	if log == nil || S == nil {
		t.Fatalf("expected Init to install a logger")
	}
}

package telemetry

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestSetOutputAcceptsArbitraryWriters(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	Info("first", map[string]any{"k": "v"})

	var other strings.Builder
	SetOutput(&other)
	Warn("second", nil)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal first line: %v", err)
	}
	if entry["level"] != "info" || entry["msg"] != "first" || entry["k"] != "v" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if !strings.Contains(other.String(), `"msg":"second"`) {
		t.Fatalf("second writer missing entry: %q", other.String())
	}
}

func TestWriteIncludesLevelAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	Error("boom", map[string]any{"code": 500})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["level"] != "error" {
		t.Fatalf("level = %v", entry["level"])
	}
	if entry["ts"] == "" || entry["ts"] == nil {
		t.Fatal("missing ts")
	}
	if entry["code"] != float64(500) {
		t.Fatalf("code = %v", entry["code"])
	}
}

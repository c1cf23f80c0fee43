package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("harvester")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "harvester" {
		t.Errorf("expected service 'harvester', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{Level: "invalid-level", Format: "json", Output: "stdout"}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("LOG_FORMAT")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestJSONOutputCarriesTaskFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "info", Format: "json", Writer: &buf}, "harvester")

	l.WithComponent("executor").WithTask("sydney", "ruby").Info("task finished", Fields(FieldStatus, "succeeded", FieldRecords, 5))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	checks := map[string]interface{}{
		FieldComponent: "executor",
		FieldTask:      "sydney",
		FieldKind:      "ruby",
		FieldStatus:    "succeeded",
		FieldRecords:   float64(5),
		"message":      "task finished",
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("field %q = %v, expected %v", k, entry[k], want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "warn", Format: "json", Writer: &buf}, "test")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn line, got %q", buf.String())
	}
}

func TestConsoleFormatNoColor(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "info", Format: "console", NoColor: true, Writer: &buf}, "harvester")
	l.Error("boom")
	out := buf.String()
	if !strings.Contains(out, "[HAR][ERR]") {
		t.Errorf("expected service and level tag, got %q", out)
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Info("nothing", Fields("k", "v"))
	l.WithTask("a", "b").Error("still nothing")
}

func TestWithFieldsAndError(t *testing.T) {
	l := NewDefault("test")
	if l.WithFields(map[string]interface{}{"key": "value"}) == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.WithError(nil) == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestInit(t *testing.T) {
	cfg := Config{Level: "info", Format: "console", ServiceName: "harvester"}
	Init(&cfg)
	gl := GetGlobalLogger()
	if gl == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	if gl.service != "harvester" {
		t.Errorf("expected service from config, got %q", gl.service)
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	Init(&Config{Level: "debug", Format: "console", Output: "stdout"})
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stderr"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stdout"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("custom-component")
	Register("my-component", l)

	if Get("my-component") != l {
		t.Error("expected Get to return the registered logger")
	}
}

func TestGetUnregistered(t *testing.T) {
	if Get("unregistered-component") == nil {
		t.Fatal("expected non-nil logger for unregistered component")
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected map[string]interface{}
	}{
		{"key-value pairs", []interface{}{"task", "perth", "records", 42}, map[string]interface{}{"task": "perth", "records": 42}},
		{"odd number of args", []interface{}{"op", "save", "trailing"}, map[string]interface{}{"op": "save"}},
		{"empty", []interface{}{}, map[string]interface{}{}},
		{"non-string key skipped", []interface{}{123, "value", "key", "val"}, map[string]interface{}{"key": "val"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Fields(tc.input...)
			if len(result) != len(tc.expected) {
				t.Fatalf("expected %d fields, got %d", len(tc.expected), len(result))
			}
			for k, v := range tc.expected {
				if result[k] != v {
					t.Errorf("Fields[%q] = %v, expected %v", k, result[k], v)
				}
			}
		})
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	fields := ErrorFields("harvest", fmt.Errorf("something broke"))
	if fields[FieldOperation] != "harvest" || fields[FieldError] != "something broke" {
		t.Errorf("unexpected error fields: %v", fields)
	}

	d := DurationFields("execute", 150*time.Millisecond)
	if d[FieldDuration] != int64(150) {
		t.Errorf("expected duration 150, got %v", d[FieldDuration])
	}
}

func TestMergeHelpers(t *testing.T) {
	result := MergeWithError(nil, fmt.Errorf("test error"))
	if result[FieldError] != "test error" {
		t.Errorf("expected error field from nil map, got %v", result[FieldError])
	}
	fields := TaskFields("perth", "python")
	MergeWithDuration(fields, 200*time.Millisecond)
	if fields[FieldDuration] != int64(200) || fields[FieldTask] != "perth" {
		t.Errorf("unexpected merged fields: %v", fields)
	}
}

func TestRegisterDefaultsSeedsStages(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalLogger(New(&Config{Level: "info", Format: "json", Writer: &buf}, "harvester"))
	RegisterDefaults()

	for _, name := range Components {
		buf.Reset()
		Get(name).Info("hello")
		var entry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if entry[FieldComponent] != name {
			t.Errorf("expected component %q, got %v", name, entry[FieldComponent])
		}
	}
}

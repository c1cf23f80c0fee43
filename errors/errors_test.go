package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestAppError_New_Severity(t *testing.T) {
	err := New(ErrCodeDiscoveryFailure, "no root")
	if !err.Fatal {
		t.Error("DISCOVERY_FAILURE should be fatal")
	}
	local := New(ErrCodeTimeout, "slow")
	if local.Fatal {
		t.Error("TIMEOUT should not be fatal")
	}
}

func TestAppError_DiscoveryFailure_Success(t *testing.T) {
	cause := fmt.Errorf("stat: no such file")
	err := DiscoveryFailure("/srv/tasks", cause)
	if err.Code != ErrCodeDiscoveryFailure {
		t.Errorf("expected DISCOVERY_FAILURE, got %s", err.Code)
	}
	if err.Details["root"] != "/srv/tasks" {
		t.Errorf("expected root detail, got %v", err.Details["root"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
	if !err.Fatal {
		t.Error("discovery failure must be fatal")
	}
}

func TestAppError_Timeout_Details(t *testing.T) {
	err := Timeout("sydney", 30*time.Second)
	if err.Details["budget"] != "30s" {
		t.Errorf("expected budget=30s, got %v", err.Details["budget"])
	}
	if !strings.Contains(err.Error(), "sydney") {
		t.Errorf("expected task name in message, got %q", err.Error())
	}
}

func TestAppError_NonZeroExit_Details(t *testing.T) {
	err := NonZeroExit("perth", 3)
	if err.Details["exit_code"] != 3 {
		t.Errorf("expected exit_code=3, got %v", err.Details["exit_code"])
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := InvalidConfig("bad").WithDetails(map[string]any{"a": 1})
	err.WithDetails(map[string]any{"b": 2})
	if len(err.Details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(err.Details))
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{Code: ErrCodeInternal}
	err.WithDetail("k", "v")
	if err.Details["k"] != "v" {
		t.Errorf("expected k=v, got %v", err.Details["k"])
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := New(ErrCodeHarvestFailure, "unreadable")
	if err.Error() != "HARVEST_FAILURE: unreadable" {
		t.Errorf("unexpected format: %q", err.Error())
	}
	err.WithCause(fmt.Errorf("file is not a database"))
	if !strings.Contains(err.Error(), "(cause: file is not a database)") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		name  string
		err   *AppError
		code  ErrorCode
		fatal bool
	}{
		{"discovery", DiscoveryFailure("/r", cause), ErrCodeDiscoveryFailure, true},
		{"bootstrap", BootstrapFailure("t", cause), ErrCodeBootstrapFailure, false},
		{"launch", LaunchFailure("t", cause), ErrCodeLaunchFailure, false},
		{"timeout", Timeout("t", time.Second), ErrCodeTimeout, false},
		{"non zero", NonZeroExit("t", 1), ErrCodeNonZeroExit, false},
		{"harvest", HarvestFailure("t", "data.sqlite", cause), ErrCodeHarvestFailure, false},
		{"export", ExportFailure("out.xlsx", cause), ErrCodeExportFailure, true},
		{"publish", PublishFailure("s3", "out.xlsx", cause), ErrCodePublishFailure, false},
		{"config", InvalidConfig("bad"), ErrCodeInvalidConfig, true},
		{"internal", Internal(cause), ErrCodeInternal, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Fatal != tc.fatal {
				t.Errorf("expected fatal=%v, got %v", tc.fatal, tc.err.Fatal)
			}
			if IsFatalCode(tc.code) != tc.fatal {
				t.Errorf("IsFatalCode(%s) disagrees with constructor", tc.code)
			}
		})
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	inner := LaunchFailure("t", fmt.Errorf("exec: \"ruby\": not found"))
	wrapped := fmt.Errorf("running task: %w", inner)
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AppError in chain")
	}
	if appErr.Code != ErrCodeLaunchFailure {
		t.Errorf("expected LAUNCH_FAILURE, got %s", appErr.Code)
	}
	if !HasCode(wrapped, ErrCodeLaunchFailure) {
		t.Error("HasCode should see through wrapping")
	}
	if HasCode(wrapped, ErrCodeTimeout) {
		t.Error("HasCode should not match a different code")
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("nil is not fatal")
	}
	if !IsFatal(fmt.Errorf("plain")) {
		t.Error("plain errors are treated as fatal")
	}
	if IsFatal(Timeout("t", time.Second)) {
		t.Error("timeout is local")
	}
	if !IsFatal(fmt.Errorf("wrap: %w", ExportFailure("p", nil))) {
		t.Error("wrapped export failure is fatal")
	}
}

func TestAppError_ImplementsErrorInterface(t *testing.T) {
	var err error = New(ErrCodeInternal, "x")
	if !IsAppError(err) {
		t.Error("expected IsAppError to be true")
	}
}

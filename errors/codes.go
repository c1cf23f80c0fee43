package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Run-level errors
const (
	// ErrCodeDiscoveryFailure indicates the task root could not be enumerated.
	ErrCodeDiscoveryFailure ErrorCode = "DISCOVERY_FAILURE"
	// ErrCodeExportFailure indicates neither the primary nor the fallback export could be written.
	ErrCodeExportFailure ErrorCode = "EXPORT_FAILURE"
	// ErrCodeInvalidConfig indicates the run configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Task-level errors
const (
	// ErrCodeBootstrapFailure indicates dependency resolution failed for a task.
	ErrCodeBootstrapFailure ErrorCode = "BOOTSTRAP_FAILURE"
	// ErrCodeLaunchFailure indicates the entry command could not be started.
	ErrCodeLaunchFailure ErrorCode = "LAUNCH_FAILURE"
	// ErrCodeTimeout indicates the task exceeded its wall-clock budget.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeNonZeroExit indicates the task exited with a failure code.
	ErrCodeNonZeroExit ErrorCode = "NON_ZERO_EXIT"
	// ErrCodeHarvestFailure indicates the task's output store could not be read.
	ErrCodeHarvestFailure ErrorCode = "HARVEST_FAILURE"
	// ErrCodePublishFailure indicates the exported artifact could not be uploaded.
	ErrCodePublishFailure ErrorCode = "PUBLISH_FAILURE"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected harness error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var fatalCodes = map[ErrorCode]bool{
	ErrCodeDiscoveryFailure: true,
	ErrCodeExportFailure:    true,
	ErrCodeInvalidConfig:    true,
	ErrCodeInternal:         true,
}

// IsFatalCode returns true if the error code halts the run.
func IsFatalCode(code ErrorCode) bool {
	return fatalCodes[code]
}

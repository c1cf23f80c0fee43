package process

import "time"

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output, tail-bounded.
	Stdout []byte
	// Stderr is the captured standard error, tail-bounded.
	Stderr []byte
	// StdoutTruncated reports that leading stdout bytes were dropped.
	StdoutTruncated bool
	// StderrTruncated reports that leading stderr bytes were dropped.
	StderrTruncated bool
	// ExitCode is the process exit code. -1 if the process was killed or never started.
	ExitCode int
	// Pid is the process id, which is also the process group id. Zero if not started.
	Pid int
	// Killed is true when the context ended the process.
	Killed bool
	// Duration is how long the process ran.
	Duration time.Duration
}

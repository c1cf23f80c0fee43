// Package process runs external commands in their own process group with a
// wall-clock bound and tail-limited output capture.
//
// On context cancellation the whole group receives SIGTERM and, after the
// grace period, SIGKILL. The group is always SIGKILLed once the leader has
// been reaped, so background children started by a command do not outlive
// Run.
//
// Errors wrap one of ErrLaunch, ErrKilled or ErrExit so callers can classify
// failures with errors.Is.
package process

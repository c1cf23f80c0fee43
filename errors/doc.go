// Package errors provides the structured error type used across the harness.
//
// Every failure the harness can observe is classified with an ErrorCode. Codes
// carry a fixed severity: fatal codes stop the run and turn into a non-zero
// process exit, local codes are captured into a task outcome and reported in
// the run summary.
package errors

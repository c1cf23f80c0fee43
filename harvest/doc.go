// Package harvest reads the dataset a task left in its private SQLite store.
//
// Stores are opened read-only and never modified. A missing, unreadable or
// empty store is an ordinary Result status with a diagnostic, never a run
// error.
package harvest

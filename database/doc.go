// Package database opens task output stores: SQLite files written by a task
// and read back by the harvester.
//
// Stores are always opened read-only through GORM with the sqlite driver, and
// GORM logging is routed through the harvester logger. Helpers classify the
// SQLite errors that mean a store is damaged or lacks the expected table so
// callers can turn them into diagnostics rather than failures.
//
//	db, err := database.OpenReadOnly(ctx, "/tasks/perth/data.sqlite", database.Config{}, log)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
package database

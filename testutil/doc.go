// Package testutil builds on-disk fixtures for harvester tests: task
// directories with shell entry scripts, fake bundler shims and SQLite output
// stores written through GORM.
//
//	ws := testutil.NewWorkspace(t)
//	ws.Task("alpha").
//	    Script("scraper.rb", `echo ok`).
//	    Store("swdata", []string{"a INTEGER", "b TEXT"}, map[string]any{"a": 1, "b": "x"})
//
// Lifecycle components can be started with automatic cleanup:
//
//	testutil.T(t).Start(server)
package testutil

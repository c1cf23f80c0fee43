// Package task discovers task directories under a root and classifies each
// by runtime kind.
//
// A task is one immediate subdirectory of the root. Its kind is decided by
// marker files: scraper.rb makes it a Ruby task, scraper.py a Python task.
// Directories with neither marker are returned with a nil Kind and are not
// runnable. Each Kind knows its dependency manifest and how to build the
// bootstrap and run commands for a task.
package task

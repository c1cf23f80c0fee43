package database

import "strings"

// IsCorrupt reports whether err means the file is not a usable SQLite
// database.
func IsCorrupt(err error) bool {
	return matchesAny(err,
		"file is not a database",
		"file is encrypted or is not a database",
		"database disk image is malformed",
		"unable to open database file",
		"malformed database schema",
	)
}

// IsMissingTable reports whether err comes from querying an undeclared table.
func IsMissingTable(err error) bool {
	return matchesAny(err, "no such table")
}

// IsLocked reports whether err comes from a store held by another writer.
func IsLocked(err error) bool {
	return matchesAny(err, "database is locked", "database table is locked")
}

func matchesAny(err error, patterns ...string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

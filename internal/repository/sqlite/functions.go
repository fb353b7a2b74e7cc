package sqlite

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// foldFunc is the SQL name of the Unicode case fold used by catalog search.
//
// WHY NOT LOWER()?
// SQLite's built-in LOWER() only folds ASCII letters, so "ÉCOLE" would never
// match a search for "école". foldFunc runs strings.ToLower, the same fold
// catalog.Matches applies, so every driver agrees on what matches.
const foldFunc = "go_lower"

// Registered functions apply to every connection opened afterwards; init runs
// before any New.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, fold)
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		// NULL and numbers pass through unchanged, as they do for LOWER().
		return v, nil
	}
}

// Package migrations embeds the ledger schema for every supported engine.
package migrations

import (
	"embed"
	"io/fs"

	"github.com/cockroachdb/errors"
)

//go:embed postgres/*.sql sqlite3/*.sql
var files embed.FS

// Source returns the migration files for the named directory. CockroachDB
// shares the postgres set.
func Source(dir string) (fs.FS, string, error) {
	switch dir {
	case "postgres", "cockroach":
		return files, "postgres", nil
	case "sqlite3":
		return files, "sqlite3", nil
	}
	return nil, "", errors.Newf("no migrations for %q", dir)
}

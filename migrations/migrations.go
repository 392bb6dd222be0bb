// Package migrations embeds the SQL schema of every supported storage driver.
// Files live under a directory named after the database/sql driver.
package migrations

import "embed"

//go:embed sqlite3/*.sql pgx/*.sql
var FS embed.FS

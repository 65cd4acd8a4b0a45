// Package migrations holds the embedded SQL schema, applied at startup by
// pkg/database.RunMigrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

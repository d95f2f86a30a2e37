package migrations

import "embed"

// FS contains embedded SQLite migrations for migration target storage.
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the schema migrations applied at startup.
package migrations

import "embed"

// FS holds the numbered up and down SQL files.
//
//go:embed *.sql
var FS embed.FS

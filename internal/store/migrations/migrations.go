// Package migrations embeds the SQLite schema of the classnotes daemon.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Package migrations embeds the PostgreSQL schema of the school backend.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

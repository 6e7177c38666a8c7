// Package migrations embeds the SQL schema migrations for the local
// SQLite catalog.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

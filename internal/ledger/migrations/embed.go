// Package migrations embeds the schema of the SQLite progress ledger.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

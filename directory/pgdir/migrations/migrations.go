// Package migrations embeds the SQL schema migrations for pgdir.
package migrations

import "embed"

// Migrations holds the goose migration files.
//
//go:embed *.sql
var Migrations embed.FS

// Package migrations embeds the postgres SQL migration files for use with
// golang-migrate's iofs source.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

// Package migrations embeds the goose SQL migrations for per-user vault
// databases.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

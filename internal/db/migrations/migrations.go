// Package migrations embeds goose SQL migrations for the market schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

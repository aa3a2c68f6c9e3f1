// Package migrations embeds the metadata store schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Package migrations holds the database schema migrations, embedded into the binaries that apply
// them.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

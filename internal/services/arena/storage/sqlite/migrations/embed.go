// Package migrations contains embedded SQL migrations for the battle
// archive.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

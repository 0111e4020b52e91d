// Package migrations embeds the SQL schema files. Tests apply them via
// golang-migrate; deployments use the migrate CLI against the same files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

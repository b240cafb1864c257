// Package migrations embeds the goose migrations for every supported
// dialect. Each dialect lives in a directory named after it.
package migrations

import "embed"

//go:embed postgres/*.sql mysql/*.sql sqlite/*.sql
var Migrations embed.FS

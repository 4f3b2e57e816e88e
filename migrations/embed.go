// Package migrations embeds the SQL schema migrations so that released
// binaries can initialize and validate databases without shipping files
// alongside the executable.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Package migrations embeds the goose migrations so binaries can migrate
// without the source tree.
package migrations

import "embed"

//go:embed core/*.sql
var Core embed.FS

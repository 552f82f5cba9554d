// Package migrations embeds the versioned schema applied by goose. Each
// dialect keeps its own directory with identical version numbers.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

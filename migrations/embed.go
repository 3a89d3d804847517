// Package migrations embeds the schema migrations of every supported store.
package migrations

import "embed"

// FS holds one directory of migrations per database driver.
//
//go:embed mongo/*.json postgres/*.sql mysql/*.sql sqlite/*.sql
var FS embed.FS

package appfs

import "embed"

// FS holds build-time assets, mainly the database migrations.
//
//go:embed migrations
var FS embed.FS

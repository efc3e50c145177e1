// Package db embeds the SQL migrations for the SmartAttend schema.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS

// Package db holds the SQL migrations for the people store.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

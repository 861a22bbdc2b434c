// Package migrations embeds the goose SQL migrations for the local store.
// The schema is versioned; upgrades run forward-only at store open.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

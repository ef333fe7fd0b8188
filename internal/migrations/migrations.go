// Package migrations embeds the SQL schema for the order ledger.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS

// Package db provides the embedded snapshot schema.
package db

import _ "embed"

// Schema contains the DDL statements for the snapshot and order ledger
// tables. Every statement is idempotent.
//
//go:embed migrations/001_schema.sql
var Schema string

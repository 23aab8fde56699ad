// Package store persists terminal visitors' theme preferences in SQLite.
//
// The schema is managed by goose migrations embedded in the binary and
// applied on Open. Email addresses are never written here.
package store

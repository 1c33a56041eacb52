// Package store provides persistent activity.Store implementations: a JSON
// document on disk and a SQLite table.
package store

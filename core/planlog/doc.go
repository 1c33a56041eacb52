// Package planlog keeps a history of planning runs. Each run, successful or
// not, becomes one Record in a JSONL file (optionally rotated) or a SQLite
// table.
package planlog

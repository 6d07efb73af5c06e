// Package database stores indexed photos, gallery settings and scan
// metadata in SQLite.
//
// Images are keyed by content hash. The indexer writes through
// InsertIfAbsent (normal scans) or UpsertByHash (forced scans, which keep
// existing tags). Handlers read through the query methods.
//
// The database uses WAL mode with a busy timeout so the indexer can write
// while requests read. Schema changes are applied by a versioned migration
// list at startup.
package database

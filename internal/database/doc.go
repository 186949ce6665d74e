// Package database provides SQLite-based storage for conversion run history.
//
// This package implements the HistoryDB, which stores one record per
// completed conversion run: the source reference, derived output name,
// page and token counts, and the full run result as JSON.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database

// Package database provides SQLite storage for Tartan Home Core.
//
// The core keeps live house state in memory; SQLite holds the periodic
// house snapshots written by the historian.
//
// This package manages:
//   - Opening the database with WAL mode and a busy timeout
//   - Forward schema migrations embedded in the binary
//   - Health checks for the /health endpoint
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database

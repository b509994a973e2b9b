// Package database provides SQLite connectivity for Agro Sirius Core.
//
// It opens the database with WAL mode and a busy timeout, and applies the
// embedded schema migrations (see the migrations package) in version order.
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive. New columns must be nullable or carry a
// default, and every .up.sql ships with a matching .down.sql.
package database

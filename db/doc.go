// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages its schema.

# Opening

SQLite (modernc.org/sqlite, no cgo) is the default engine; PostgreSQL
(lib/pq) is available for deployments that already run one:

	conn, err := db.Open(ctx, db.SQLite, "data/cruciverba.db")

SQLite connections run in WAL mode with a busy timeout, so listing
submissions never blocks behind a concurrent insert.

# Schema Creation

CreateSchema applies the embedded goose migrations for the dialect:

	if err := db.CreateSchema(ctx, conn, db.SQLite); err != nil {
		log.Fatal(err)
	}

Safe to call on every start - applied versions are recorded in
goose_db_version and skipped.

# Tables

	submissions
	  id            INTEGER PRIMARY KEY AUTOINCREMENT (BIGSERIAL on PostgreSQL)
	  parola        TEXT NOT NULL
	  frase_indizio TEXT NOT NULL
	  nome          TEXT
	  timestamp     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP

An index on frase_indizio backs the duplicate check.
*/
package db

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the session database and creates its schema.

# Drivers

Two database types are supported:

  - sqlite: modernc.org/sqlite, a file DSN such as canteen-web.db (default)
  - postgres: github.com/lib/pq, a postgres:// URL

	conn, err := db.Open(db.TypeSQLite, "canteen-web.db")

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - session_value: (session_id, name) → value, one row per stored key

# Placeholders

Queries are written with ? placeholders and passed through Rebind, which turns
them into $1, $2, ... when the database type is postgres.
*/
package db

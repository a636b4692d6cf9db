// Package dbx provides the schema and query-execution capability the
// query pipeline runs against.
//
// The pipeline depends only on the Database interface. SQL ships as the
// concrete implementation over database/sql with the pure-Go SQLite
// driver; any driver that can introspect its schema can stand in.
//
// Note: Database.Query does not enforce read-only access itself. The
// safety gates in package sqlcheck are the enforcement point; by the
// time a statement reaches Query it has passed both gates.
package dbx

import (
	"context"
	"errors"
)

// ErrClosed indicates the database handle has been closed.
var ErrClosed = errors.New("database closed")

// Column describes one column of a table.
type Column struct {
	// Name is the column name.
	Name string
	// Type is the declared type name.
	Type string
	// Nullable is true if the column accepts NULL.
	Nullable bool
	// PrimaryKey is true if the column is part of the primary key.
	PrimaryKey bool
}

// Schema maps table names to their columns, in declaration order.
type Schema map[string][]Column

// Row is one result row, keyed by column name.
type Row map[string]any

// Database is the capability the query pipeline consumes: schema
// introspection and statement execution.
//
// Implementations must be safe for concurrent use by multiple in-flight
// pipeline runs.
type Database interface {
	// Schema returns the current schema snapshot.
	Schema(ctx context.Context) (Schema, error)

	// Query executes a statement and returns all result rows.
	// Callers are responsible for having validated the statement first.
	Query(ctx context.Context, sql string) ([]Row, error)
}

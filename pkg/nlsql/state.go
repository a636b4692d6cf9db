package nlsql

import (
	"github.com/luomsis/agent4everything/pkg/dbx"
	"github.com/luomsis/agent4everything/pkg/retrieval"
)

// State is the shared state threaded through the query pipeline stages.
// Each stage receives the state, returns an updated copy, and never
// mutates fields owned by a later stage.
//
// Err carries domain failures (schema unavailable, unsafe SQL, query
// error). A non-empty Err routes the run to the error terminal; it is
// not a Go error and never aborts the graph.
type State struct {
	// Question is the user's natural language question. Set before the run.
	Question string

	// MaxResults caps the number of rows returned to the caller.
	MaxResults int

	// Schema is the database schema snapshot. Set by fetch_schema.
	Schema dbx.Schema

	// Context holds retrieved reference snippets. Set by retrieve_context;
	// empty when retrieval fails or finds nothing.
	Context []retrieval.Snippet

	// SQL is the validated generated statement. Set by generate_sql.
	SQL string

	// Rows is the query result, truncated to MaxResults. Set by execute.
	Rows []dbx.Row

	// Explanation is the natural language summary of the rows. Set by explain.
	Explanation string

	// Err is the domain failure message, empty on the success path.
	Err string

	// Success is true once execute has returned rows without error.
	Success bool
}

// Result is what a pipeline run returns to the caller.
type Result struct {
	// Question echoes the input question.
	Question string

	// GeneratedSQL is the statement that was generated, if any.
	// Populated even on the error path when generation succeeded but a
	// later stage failed.
	GeneratedSQL string

	// Rows holds the query results on success.
	Rows []dbx.Row

	// Explanation is the natural language answer on success, or the
	// failure message on the error path.
	Explanation string

	// Success reports whether the run reached the success terminal.
	Success bool

	// Error is the domain failure message when Success is false.
	Error string
}

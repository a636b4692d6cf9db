package workflow

// END is the terminal stage identifier.
// Use this as an edge target to indicate the workflow should terminate.
const END = "__end__"

// NodeFunc is the signature for all stage functions.
// Stages receive the execution context and current state,
// and return the updated state (or the same state) and any error.
//
// The state parameter is passed by value. Stages should modify and return
// a new state value, not rely on pointer mutation. A stage only writes the
// fields it owns and passes everything else through unchanged.
//
// A returned error is a fatal fault: it aborts the run. Expected failures
// belong in the state's error field, where routers can see them.
//
// Example:
//
//	func fetchSchema(ctx workflow.Context, s QueryState) (QueryState, error) {
//	    s.Schema = ...
//	    return s, nil
//	}
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc determines the next stage based on state.
// It is used for conditional edges where the next stage depends on runtime state.
//
// The router should return a valid stage ID or workflow.END.
// Returning an empty string or an unknown stage ID will cause a runtime error.
//
// Example:
//
//	func route(ctx workflow.Context, s QueryState) string {
//	    if s.Err != "" {
//	        return "handle_error"
//	    }
//	    return "execute"
//	}
type RouterFunc[S any] func(ctx Context, state S) string

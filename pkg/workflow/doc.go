/*
Package workflow provides graph-based orchestration for staged pipelines.

# Overview

workflow is the execution engine behind the natural-language-to-SQL
assistant and the document ingestion service. Pipelines are directed
graphs where stages perform work and edges define flow. A typed state
record is threaded through every stage; routers inspect the state to
pick the next stage.

The engine provides:
  - Type-safe generics for state management
  - Compile-time validation of graph structure
  - Conditional branching via router functions
  - Revisit detection: pipeline graphs are acyclic, and a transition
    back to an executed stage fails the run instead of looping
  - Structured logging via slog and OpenTelemetry integration

# Basic Usage

Create a graph with stages and edges, then compile and run:

	type State struct {
	    Input  string
	    Output string
	}

	func process(ctx workflow.Context, s State) (State, error) {
	    s.Output = "Processed: " + s.Input
	    return s, nil
	}

	func main() {
	    graph := workflow.NewGraph[State]().
	        AddNode("process", process).
	        AddEdge("process", workflow.END).
	        SetEntry("process")

	    compiled, err := graph.Compile()
	    if err != nil {
	        log.Fatal(err)
	    }

	    ctx := workflow.NewContext(context.Background())
	    result, err := compiled.Run(ctx, State{Input: "hello"})
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Println(result.Output) // "Processed: hello"
	}

# Conditional Branching

Use conditional edges for decision points:

	graph.AddConditionalEdge("generate_sql", func(ctx workflow.Context, s State) string {
	    if s.Err != "" {
	        return "handle_error"
	    }
	    return "execute"
	})

The router function returns the ID of the next stage to execute.
Invalid return values (referencing non-existent stages) cause runtime errors.

# Error Handling

Two failure channels exist by convention. Expected, recoverable failures
(bad input, unsafe SQL, missing schema) are domain errors: a stage records
them in the state's error field and a router steers the run to the
pipeline's error terminal. Unexpected failures (a stage returning an error,
a panic, a miswired graph) are fatal faults returned by Run:

	result, err := compiled.Run(ctx, state)
	var nodeErr *workflow.NodeError
	if errors.As(err, &nodeErr) {
	    log.Printf("Node %s failed: %v", nodeErr.NodeID, nodeErr.Err)
	}

	var panicErr *workflow.PanicError
	if errors.As(err, &panicErr) {
	    log.Printf("Node %s panicked: %v\n%s", panicErr.NodeID, panicErr.Value, panicErr.Stack)
	}

Panics in stages are recovered and converted to PanicError with stack trace.

# Observability

Enable logging, metrics, and tracing:

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	result, err := compiled.Run(ctx, state,
	    workflow.WithObservabilityLogger(logger),
	    workflow.WithMetrics(true),
	    workflow.WithTracing(true),
	    workflow.WithRunID("run-123"))

Logs include structured fields: run_id, node_id, duration_ms.
OpenTelemetry metrics: workflow.node.executions, workflow.node.latency_ms, etc.
OpenTelemetry tracing: workflow.run > workflow.node.{id} spans.

# Thread Safety

  - Graph[S] is NOT safe for concurrent use during construction
  - CompiledGraph[S] IS safe for concurrent use (immutable)
  - Context IS safe for concurrent use

The engine holds no global mutable state: concurrent runs share only the
immutable graph and whatever dependencies the stage closures capture.

# Subpackages

  - config: map-backed configuration with YAML/JSON loaders
  - observability: logging, metrics, and tracing helpers
*/
package workflow

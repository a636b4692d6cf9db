// Package nlsql answers natural language questions against a SQL
// database. A pipeline run fetches the schema, retrieves reference
// context, asks a model for a SELECT statement, validates it through
// two safety gates, executes it, and explains the results.
//
// The pipeline is a compiled stage graph over the shared State type.
// All domain failures (unanswerable question, unsafe SQL, query error)
// flow through the handle_error terminal and come back to the caller
// as a Result with Success false; Go errors from Run indicate pipeline
// faults, not bad questions.
package nlsql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/luomsis/agent4everything/pkg/dbx"
	"github.com/luomsis/agent4everything/pkg/llm"
	"github.com/luomsis/agent4everything/pkg/retrieval"
	"github.com/luomsis/agent4everything/pkg/sqlcheck"
	"github.com/luomsis/agent4everything/pkg/workflow"
)

// Stage identifiers for the query pipeline graph.
const (
	stageFetchSchema     = "fetch_schema"
	stageRetrieveContext = "retrieve_context"
	stageGenerateSQL     = "generate_sql"
	stageExecute         = "execute"
	stageExplain         = "explain"
	stageHandleError     = "handle_error"
)

// errSentinel is the prefix the model uses to report that a question
// cannot be answered from the schema.
const errSentinel = "ERROR:"

// explanationFallback is returned when the explanation call fails.
// A successful query is never downgraded to a failure because the
// summary could not be produced.
const explanationFallback = "Unable to generate explanation for the results."

const (
	defaultMaxResults   = 100
	defaultSnippetLimit = 3
)

// Pipeline answers questions against a database. Construct once with
// New, then call Run from any number of goroutines.
type Pipeline struct {
	db    dbx.Database
	store retrieval.Store
	model llm.Client

	graph        *workflow.CompiledGraph[State]
	logger       *slog.Logger
	snippetLimit int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for pipeline runs.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithSnippetLimit sets how many reference snippets are retrieved per
// question. Default is 3.
func WithSnippetLimit(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.snippetLimit = k
		}
	}
}

// New builds and compiles the query pipeline. The graph is compiled
// once; the returned Pipeline is safe for concurrent use.
//
// store may be nil, in which case runs proceed without reference
// context.
func New(db dbx.Database, store retrieval.Store, model llm.Client, opts ...Option) (*Pipeline, error) {
	if db == nil {
		return nil, fmt.Errorf("nlsql: database is required")
	}
	if model == nil {
		return nil, fmt.Errorf("nlsql: model client is required")
	}

	p := &Pipeline{
		db:           db,
		store:        store,
		model:        model,
		logger:       slog.Default(),
		snippetLimit: defaultSnippetLimit,
	}
	for _, opt := range opts {
		opt(p)
	}

	graph := workflow.NewGraph[State]().
		AddNode(stageFetchSchema, p.fetchSchema).
		AddNode(stageRetrieveContext, p.retrieveContext).
		AddNode(stageGenerateSQL, p.generateSQL).
		AddNode(stageExecute, p.execute).
		AddNode(stageExplain, p.explain).
		AddNode(stageHandleError, p.handleError).
		AddConditionalEdge(stageFetchSchema, routeOnErr(stageRetrieveContext)).
		AddEdge(stageRetrieveContext, stageGenerateSQL).
		AddConditionalEdge(stageGenerateSQL, routeOnErr(stageExecute)).
		AddConditionalEdge(stageExecute, routeOnErr(stageExplain)).
		AddEdge(stageExplain, workflow.END).
		AddEdge(stageHandleError, workflow.END).
		SetEntry(stageFetchSchema)

	compiled, err := graph.Compile()
	if err != nil {
		return nil, fmt.Errorf("nlsql: compile pipeline: %w", err)
	}
	p.graph = compiled

	return p, nil
}

// routeOnErr returns a router that diverts to the error terminal when
// the stage recorded a domain failure, and continues to next otherwise.
func routeOnErr(next string) workflow.RouterFunc[State] {
	return func(ctx workflow.Context, state State) string {
		if state.Err != "" {
			return stageHandleError
		}
		return next
	}
}

// Run answers one question. maxResults caps the returned rows; values
// of zero or less use the default of 100.
//
// The returned error is non-nil only for pipeline faults (cancellation,
// stage panic, miswired graph). Domain failures come back as a Result
// with Success false and Error set.
func (p *Pipeline) Run(ctx context.Context, question string, maxResults int) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{Success: false, Error: "question must not be empty"}, nil
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	state := State{
		Question:   question,
		MaxResults: maxResults,
	}

	wfCtx := workflow.NewContext(ctx, workflow.WithLogger(p.logger))
	final, err := p.graph.Run(wfCtx, state,
		workflow.WithObservabilityLogger(p.logger),
		workflow.WithRunID(wfCtx.RunID()),
	)
	if err != nil {
		return toResult(final), err
	}

	return toResult(final), nil
}

// toResult converts the final pipeline state into a caller-facing Result.
func toResult(state State) Result {
	return Result{
		Question:     state.Question,
		GeneratedSQL: state.SQL,
		Rows:         state.Rows,
		Explanation:  state.Explanation,
		Success:      state.Success,
		Error:        state.Err,
	}
}

// fetchSchema loads the schema snapshot. An empty schema is a domain
// failure: generation has nothing to work with.
func (p *Pipeline) fetchSchema(ctx workflow.Context, state State) (State, error) {
	schema, err := p.db.Schema(ctx)
	if err != nil {
		state.Err = fmt.Sprintf("failed to fetch database schema: %v", err)
		return state, nil
	}
	if len(schema) == 0 {
		state.Err = "database has no tables"
		return state, nil
	}

	state.Schema = schema
	ctx.Logger().Debug("schema fetched", "tables", len(schema))
	return state, nil
}

// retrieveContext looks up reference snippets for the question.
// Retrieval is best effort: failures are logged and the run continues
// with no context.
func (p *Pipeline) retrieveContext(ctx workflow.Context, state State) (State, error) {
	if p.store == nil {
		return state, nil
	}

	snippets, err := p.store.Search(ctx, state.Question, p.snippetLimit)
	if err != nil {
		ctx.Logger().Warn("context retrieval failed, continuing without context", "error", err)
		return state, nil
	}

	state.Context = snippets
	return state, nil
}

// generateSQL asks the model for a statement and applies the
// generation-time safety gate.
func (p *Pipeline) generateSQL(ctx workflow.Context, state State) (State, error) {
	raw, err := p.model.Complete(ctx, generationSystemPrompt, generationPrompt(state))
	if err != nil {
		state.Err = fmt.Sprintf("failed to generate SQL: %v", err)
		return state, nil
	}

	stmt := sqlcheck.StripFences(raw)
	if strings.HasPrefix(stmt, errSentinel) {
		state.Err = strings.TrimSpace(strings.TrimPrefix(stmt, errSentinel))
		if state.Err == "" {
			state.Err = "the question cannot be answered from the database schema"
		}
		return state, nil
	}

	if !sqlcheck.SafeForGeneration(stmt) {
		state.Err = "generated SQL was rejected: only read-only SELECT statements are allowed"
		return state, nil
	}

	state.SQL = stmt
	ctx.Logger().Debug("sql generated", "sql", stmt)
	return state, nil
}

// execute applies the execution-time safety gate and runs the statement.
// Both gates run on every statement; generation passing does not skip
// the execution check.
func (p *Pipeline) execute(ctx workflow.Context, state State) (State, error) {
	if !sqlcheck.SafeForExecution(state.SQL) {
		state.Err = "statement rejected by the execution safety check"
		return state, nil
	}

	rows, err := p.db.Query(ctx, state.SQL)
	if err != nil {
		state.Err = fmt.Sprintf("query execution failed: %v", err)
		return state, nil
	}

	if len(rows) > state.MaxResults {
		rows = rows[:state.MaxResults]
	}
	state.Rows = rows
	state.Success = true
	ctx.Logger().Debug("query executed", "rows", len(rows))
	return state, nil
}

// explain summarizes the results in plain language. A failed
// explanation never fails the run; the fallback sentence is used.
func (p *Pipeline) explain(ctx workflow.Context, state State) (State, error) {
	text, err := p.model.Complete(ctx, explanationSystemPrompt, explanationPrompt(state))
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			ctx.Logger().Warn("explanation failed, using fallback", "error", err)
		}
		state.Explanation = explanationFallback
		return state, nil
	}

	state.Explanation = strings.TrimSpace(text)
	return state, nil
}

// handleError is the error terminal. It normalizes the failure message
// and marks the run unsuccessful.
func (p *Pipeline) handleError(ctx workflow.Context, state State) (State, error) {
	if state.Err == "" {
		state.Err = "query pipeline failed"
	}
	state.Success = false
	ctx.Logger().Info("query pipeline ended with error", "error", state.Err)
	return state, nil
}

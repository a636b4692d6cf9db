package nlsql

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luomsis/agent4everything/pkg/dbx"
	"github.com/luomsis/agent4everything/pkg/retrieval"
)

// scriptClient returns fixed responses for the two model calls,
// distinguished by system prompt.
type scriptClient struct {
	gen        string
	genErr     error
	explainOut string
	explainErr error
}

func (c *scriptClient) Complete(_ context.Context, systemPrompt, _ string) (string, error) {
	if systemPrompt == generationSystemPrompt {
		return c.gen, c.genErr
	}
	return c.explainOut, c.explainErr
}

// failStore always fails searches.
type failStore struct{}

func (failStore) Search(context.Context, string, int) ([]retrieval.Snippet, error) {
	return nil, errors.New("store unavailable")
}

func (failStore) Add(context.Context, []retrieval.Document) error {
	return errors.New("store unavailable")
}

func openTestDB(t *testing.T) *dbx.SQL {
	t.Helper()

	db, err := dbx.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Seed(context.Background()))
	return db
}

// TestPipeline_Success tests the full success path: schema, generation,
// both gates, execution, and explanation.
func TestPipeline_Success(t *testing.T) {
	db := openTestDB(t)
	model := &scriptClient{
		gen:        "SELECT id, name FROM users ORDER BY id",
		explainOut: "There are four registered people.",
	}

	pipeline, err := New(db, nil, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "who are the users?", 10)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, "SELECT id, name FROM users ORDER BY id", result.GeneratedSQL)
	assert.Len(t, result.Rows, 4)
	assert.Equal(t, "There are four registered people.", result.Explanation)
}

// TestPipeline_FencedSQL tests Markdown fences are stripped before the gates.
func TestPipeline_FencedSQL(t *testing.T) {
	db := openTestDB(t)
	model := &scriptClient{
		gen:        "```sql\nSELECT name FROM products\n```",
		explainOut: "Product names.",
	}

	pipeline, err := New(db, nil, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "list product names", 10)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "SELECT name FROM products", result.GeneratedSQL)
}

// TestPipeline_MaxResults_Truncates tests the row cap.
func TestPipeline_MaxResults_Truncates(t *testing.T) {
	db := openTestDB(t)
	model := &scriptClient{
		gen:        "SELECT id FROM users ORDER BY id",
		explainOut: "ids",
	}

	pipeline, err := New(db, nil, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "user ids", 2)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Len(t, result.Rows, 2)
}

// TestPipeline_UnsafeSQL_RoutedToErrorTerminal tests the generation gate
// diverts mutating statements to the error terminal.
func TestPipeline_UnsafeSQL_RoutedToErrorTerminal(t *testing.T) {
	db := openTestDB(t)
	model := &scriptClient{gen: "DROP TABLE users; SELECT 1"}

	pipeline, err := New(db, nil, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "remove everyone", 10)
	require.NoError(t, err) // domain failure, not a pipeline fault

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "read-only SELECT")
	assert.Empty(t, result.Rows)

	// The statement never reached the database.
	rows, qerr := db.Query(context.Background(), "SELECT count(*) AS n FROM users")
	require.NoError(t, qerr)
	assert.EqualValues(t, 4, rows[0]["n"])
}

// TestPipeline_ExecutionGate_RejectsKeywordAnywhere tests the stricter
// execution gate catches what the generation gate lets through.
func TestPipeline_ExecutionGate_RejectsKeywordAnywhere(t *testing.T) {
	db := openTestDB(t)
	// Passes the generation gate (no mutating clause shape) but contains
	// a bare keyword the execution gate scans for.
	model := &scriptClient{gen: "SELECT joined_on AS created FROM users"}

	pipeline, err := New(db, nil, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "when did users join?", 10)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "execution safety check")
}

// TestPipeline_ModelCannotAnswer tests the model's refusal sentinel.
func TestPipeline_ModelCannotAnswer(t *testing.T) {
	db := openTestDB(t)
	model := &scriptClient{gen: "ERROR: the schema has no revenue data"}

	pipeline, err := New(db, nil, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "what was last year's revenue?", 10)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "the schema has no revenue data", result.Error)
	assert.Empty(t, result.GeneratedSQL)
}

// TestPipeline_ModelFailure tests provider errors become domain failures.
func TestPipeline_ModelFailure(t *testing.T) {
	db := openTestDB(t)
	model := &scriptClient{genErr: errors.New("rate limited")}

	pipeline, err := New(db, nil, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "anything", 10)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "rate limited")
}

// TestPipeline_RetrievalFailure_Degrades tests context retrieval is best
// effort: a broken store never fails the run.
func TestPipeline_RetrievalFailure_Degrades(t *testing.T) {
	db := openTestDB(t)
	model := &scriptClient{
		gen:        "SELECT name FROM products",
		explainOut: "Product names.",
	}

	pipeline, err := New(db, failStore{}, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "list products", 10)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Len(t, result.Rows, 4)
}

// TestPipeline_RetrievalContext_IncludedInPrompt tests snippets reach the
// generation prompt.
func TestPipeline_RetrievalContext_IncludedInPrompt(t *testing.T) {
	db := openTestDB(t)
	store := retrieval.NewMemoryStore()
	require.NoError(t, store.Add(context.Background(), []retrieval.Document{
		{Content: "products are grouped by the category column"},
	}))

	var capturedPrompt string
	model := promptCapture{
		inner:    &scriptClient{gen: "SELECT name FROM products", explainOut: "ok"},
		captured: &capturedPrompt,
	}

	pipeline, err := New(db, store, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "products by category", 10)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Contains(t, capturedPrompt, "category column")
}

// promptCapture records the generation user prompt.
type promptCapture struct {
	inner    *scriptClient
	captured *string
}

func (c promptCapture) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if systemPrompt == generationSystemPrompt {
		*c.captured = userPrompt
	}
	return c.inner.Complete(ctx, systemPrompt, userPrompt)
}

// TestPipeline_QueryError tests database errors route to the error terminal.
func TestPipeline_QueryError(t *testing.T) {
	db := openTestDB(t)
	model := &scriptClient{gen: "SELECT x FROM missing"}

	pipeline, err := New(db, nil, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "query a missing table", 10)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "query execution failed")
	assert.Equal(t, "SELECT x FROM missing", result.GeneratedSQL)
}

// TestPipeline_ExplanationFailure_UsesFallback tests a failed summary
// never downgrades a successful query.
func TestPipeline_ExplanationFailure_UsesFallback(t *testing.T) {
	db := openTestDB(t)
	model := &scriptClient{
		gen:        "SELECT name FROM products",
		explainErr: errors.New("rate limited"),
	}

	pipeline, err := New(db, nil, model)
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "list products", 10)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, explanationFallback, result.Explanation)
}

// TestPipeline_EmptyQuestion tests empty input never starts a run.
func TestPipeline_EmptyQuestion(t *testing.T) {
	db := openTestDB(t)
	pipeline, err := New(db, nil, &scriptClient{})
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "   ", 10)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "empty")
}

// TestNew_Validation tests constructor requirements.
func TestNew_Validation(t *testing.T) {
	db := openTestDB(t)

	_, err := New(nil, nil, &scriptClient{})
	assert.Error(t, err)

	_, err = New(db, nil, nil)
	assert.Error(t, err)
}

// TestPipeline_ConcurrentRuns tests one compiled pipeline serves
// concurrent callers.
func TestPipeline_ConcurrentRuns(t *testing.T) {
	db := openTestDB(t)
	model := &scriptClient{
		gen:        "SELECT name FROM products",
		explainOut: "Product names.",
	}

	pipeline, err := New(db, nil, model)
	require.NoError(t, err)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			result, err := pipeline.Run(context.Background(), "list products", 10)
			if err == nil && !result.Success {
				err = errors.New(result.Error)
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
}

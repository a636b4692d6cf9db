package nlsql

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/luomsis/agent4everything/pkg/dbx"
	"github.com/luomsis/agent4everything/pkg/retrieval"
)

// generationSystemPrompt instructs the model to produce exactly one
// read-only statement, or the ERROR: sentinel when the question cannot
// be answered from the schema.
const generationSystemPrompt = `You are an expert SQL assistant for a SQLite database.

Given a database schema, optional reference context, and a user question,
write a single SQL SELECT statement that answers the question.

Rules:
- Output ONLY the SQL statement, with no explanation and no code fences.
- The statement must be a single read-only SELECT. Never write INSERT,
  UPDATE, DELETE, DROP, ALTER, CREATE, or TRUNCATE statements.
- Do not use SQL comments.
- Use only tables and columns that appear in the schema.
- If the question cannot be answered from the schema, respond with
  exactly: ERROR: followed by a short reason.`

// explanationSystemPrompt asks for a plain language summary of results.
const explanationSystemPrompt = `You are a helpful data analyst.

Given a user question, the SQL that answered it, and a sample of the
result rows, explain the results in one or two plain sentences. Do not
mention SQL or databases unless the user asked about them.`

// explainSampleRows caps how many rows are included in the explanation
// prompt. Large result sets are summarized from a sample.
const explainSampleRows = 5

// renderSchema formats a schema snapshot for the generation prompt.
// Tables are sorted so the prompt is deterministic for a given schema.
func renderSchema(schema dbx.Schema) string {
	tables := make([]string, 0, len(schema))
	for name := range schema {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	var b strings.Builder
	for _, table := range tables {
		fmt.Fprintf(&b, "Table %s:\n", table)
		for _, col := range schema[table] {
			fmt.Fprintf(&b, "  %s %s", col.Name, col.Type)
			if col.PrimaryKey {
				b.WriteString(" PRIMARY KEY")
			}
			if !col.Nullable {
				b.WriteString(" NOT NULL")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderSnippets formats retrieved context for the generation prompt.
// Returns the empty string when there is nothing to include.
func renderSnippets(snippets []retrieval.Snippet) string {
	if len(snippets) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Reference context:\n")
	for _, s := range snippets {
		fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(s.Content))
	}
	return b.String()
}

// generationPrompt assembles the user prompt for the SQL generation call.
func generationPrompt(state State) string {
	var b strings.Builder
	b.WriteString("Database schema:\n")
	b.WriteString(renderSchema(state.Schema))

	if ctx := renderSnippets(state.Context); ctx != "" {
		b.WriteString("\n")
		b.WriteString(ctx)
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(state.Question)
	return b.String()
}

// explanationPrompt assembles the user prompt for the explanation call.
// At most explainSampleRows rows are serialized into the prompt.
func explanationPrompt(state State) string {
	sample := state.Rows
	if len(sample) > explainSampleRows {
		sample = sample[:explainSampleRows]
	}

	rowsJSON, err := json.Marshal(sample)
	if err != nil {
		rowsJSON = []byte("[]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", state.Question)
	fmt.Fprintf(&b, "SQL: %s\n", state.SQL)
	fmt.Fprintf(&b, "Total rows: %d\n", len(state.Rows))
	fmt.Fprintf(&b, "Sample rows: %s\n", rowsJSON)
	return b.String()
}

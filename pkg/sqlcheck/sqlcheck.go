// Package sqlcheck classifies model-generated SQL as safe or unsafe.
//
// Safety is enforced by two independent gates, applied at two different
// call sites:
//
//   - SafeForGeneration runs when the model returns a candidate statement.
//     It rejects non-SELECT statements, known mutating clause patterns,
//     and SQL comments (which can smuggle a second statement or disable
//     a clause).
//   - SafeForExecution runs immediately before the statement is sent to
//     the database. It is deliberately stricter: any occurrence of a
//     mutating keyword anywhere in the text rejects the statement, even
//     inside a string literal or an identifier such as updated_at. This
//     over-rejection is accepted: a false reject costs a retry, a false
//     accept costs the database.
//
// A statement must pass both gates before it reaches execution. Neither
// gate rewrites input; unsafe means rejected, never sanitized.
package sqlcheck

import (
	"regexp"
	"strings"
)

// fenceRe matches Markdown code-fence wrappers around a model response.
var fenceRe = regexp.MustCompile("```sql\n?|```")

// clausePatterns are mutating clause shapes rejected at generation time.
// Matched case-insensitively against the fence-stripped statement.
var clausePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)DROP\s+TABLE`),
	regexp.MustCompile(`(?i)DELETE\s+FROM`),
	regexp.MustCompile(`(?i)UPDATE\s+\S+\s+SET`),
	regexp.MustCompile(`(?i)INSERT\s+INTO`),
	regexp.MustCompile(`(?i)TRUNCATE`),
	regexp.MustCompile(`(?i)EXEC\s*\(`),
	regexp.MustCompile(`(?i)EXECUTE\s*\(`),
}

// commentPatterns reject SQL comments at generation time.
var commentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)--.*$`),
	regexp.MustCompile(`/\*[\s\S]*?\*/`),
}

// bareKeywords are rejected at execution time wherever they appear.
var bareKeywords = []string{
	"insert", "update", "delete", "drop", "truncate", "alter", "create",
}

// StripFences removes Markdown code-fence wrappers and surrounding
// whitespace from a model response.
func StripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// SafeForGeneration reports whether a candidate statement passes the
// generation-time gate: after fence-stripping it must start with SELECT
// (case-insensitive) and contain no mutating clause pattern and no SQL
// comment.
func SafeForGeneration(sql string) bool {
	stmt := StripFences(sql)

	if !strings.HasPrefix(strings.ToUpper(stmt), "SELECT") {
		return false
	}

	for _, re := range clausePatterns {
		if re.MatchString(stmt) {
			return false
		}
	}

	for _, re := range commentPatterns {
		if re.MatchString(stmt) {
			return false
		}
	}

	return true
}

// SafeForExecution reports whether a statement passes the execution-time
// gate: it must start with SELECT (case-insensitive, after trimming) and
// contain none of the mutating keywords anywhere in the text.
//
// On the keyword dimension this is stricter than SafeForGeneration: a
// SELECT containing the bare word "update" in a string literal passes
// generation but is rejected here. The gates are not a strict subset in
// every dimension (only the generation gate inspects comments), so the
// pipeline always applies both in sequence rather than relying on one.
func SafeForExecution(sql string) bool {
	stmt := strings.ToLower(strings.TrimSpace(sql))

	if !strings.HasPrefix(stmt, "select") {
		return false
	}

	for _, kw := range bareKeywords {
		if strings.Contains(stmt, kw) {
			return false
		}
	}

	return true
}

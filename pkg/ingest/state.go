package ingest

import (
	"github.com/luomsis/agent4everything/pkg/retrieval"
)

// File is one input file submitted for ingestion.
type File struct {
	// Name is the file name, used for reporting and metadata.
	Name string

	// Content is the raw file bytes.
	Content []byte

	// Ext is the file extension with leading dot. Derived from Name
	// when empty.
	Ext string
}

// Extraction is the per-file outcome of the text extraction stage.
// Files fail independently: Err is set for this file only and the run
// continues with the rest.
type Extraction struct {
	Name string
	Ext  string
	Text string
	Err  string
}

// FileResult reports the final per-file outcome of a run.
type FileResult struct {
	Name string

	// Status is "ok" or "failed".
	Status string

	// Message describes the failure; empty on success.
	Message string

	// Chunks is how many document chunks this file produced.
	Chunks int
}

// State is the shared state threaded through the ingestion stages.
//
// Err carries run-level domain failures (no files, nothing extractable,
// store rejected the batch). Per-file failures live in Extracted and
// Results and never set Err on their own.
type State struct {
	// Files are the submitted inputs. Set before the run.
	Files []File

	// Extracted holds per-file extraction outcomes. Set by extract_text.
	Extracted []Extraction

	// Documents are the chunked documents to index. Set by create_documents.
	Documents []retrieval.Document

	// Results are the per-file outcomes. Set by add_to_store or the
	// error terminal.
	Results []FileResult

	// Err is the run-level domain failure message.
	Err string

	// Success is true once the documents have been indexed.
	Success bool
}

// Result is what an ingestion run returns to the caller.
type Result struct {
	// Processed is the number of files submitted.
	Processed int

	// Successful is the number of files that produced indexed documents.
	Successful int

	// Failed is the number of files that did not.
	Failed int

	// Results holds the per-file outcomes, in submission order.
	Results []FileResult

	// Success reports whether the run reached the success terminal.
	// Partial per-file failures do not clear it; only run-level
	// failures do.
	Success bool

	// Error is the run-level failure message when Success is false.
	Error string
}

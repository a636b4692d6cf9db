// Package ingest loads documents into a retrieval store. A run
// validates the submitted files, extracts their text, chunks the text
// into overlapping documents, and indexes them in one batch.
//
// Per-file failures are isolated: a file whose extraction fails is
// reported as failed while the rest of the batch proceeds. Run-level
// failures (no files, nothing extractable, zero documents produced,
// the store rejecting the batch) route to the error terminal and come
// back as a Result with Success false.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/luomsis/agent4everything/pkg/extract"
	"github.com/luomsis/agent4everything/pkg/retrieval"
	"github.com/luomsis/agent4everything/pkg/workflow"
)

// Stage identifiers for the ingestion graph.
const (
	stageValidateFiles   = "validate_files"
	stageExtractText     = "extract_text"
	stageCreateDocuments = "create_documents"
	stageAddToStore      = "add_to_store"
	stageHandleError     = "handle_error"
)

// Pipeline ingests files into a retrieval store. Construct once with
// New, then call Run from any number of goroutines.
type Pipeline struct {
	store retrieval.Store

	graph        *workflow.CompiledGraph[State]
	logger       *slog.Logger
	chunkSize    int
	chunkOverlap int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for ingestion runs.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithChunking overrides the chunk size and overlap, in runes.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.chunkSize = size
		}
		if overlap >= 0 && overlap < p.chunkSize {
			p.chunkOverlap = overlap
		}
	}
}

// New builds and compiles the ingestion pipeline.
func New(store retrieval.Store, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, fmt.Errorf("ingest: store is required")
	}

	p := &Pipeline{
		store:        store,
		logger:       slog.Default(),
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(p)
	}

	graph := workflow.NewGraph[State]().
		AddNode(stageValidateFiles, p.validateFiles).
		AddNode(stageExtractText, p.extractText).
		AddNode(stageCreateDocuments, p.createDocuments).
		AddNode(stageAddToStore, p.addToStore).
		AddNode(stageHandleError, p.handleError).
		AddConditionalEdge(stageValidateFiles, routeOnErr(stageExtractText)).
		AddConditionalEdge(stageExtractText, routeOnErr(stageCreateDocuments)).
		AddConditionalEdge(stageCreateDocuments, routeOnErr(stageAddToStore)).
		AddConditionalEdge(stageAddToStore, routeOnErr(workflow.END)).
		AddEdge(stageHandleError, workflow.END).
		SetEntry(stageValidateFiles)

	compiled, err := graph.Compile()
	if err != nil {
		return nil, fmt.Errorf("ingest: compile pipeline: %w", err)
	}
	p.graph = compiled

	return p, nil
}

// routeOnErr returns a router that diverts to the error terminal when
// the stage recorded a run-level failure, and continues to next otherwise.
func routeOnErr(next string) workflow.RouterFunc[State] {
	return func(ctx workflow.Context, state State) string {
		if state.Err != "" {
			return stageHandleError
		}
		return next
	}
}

// Run ingests one batch of files.
//
// The returned error is non-nil only for pipeline faults; a batch where
// every file fails still returns a Result describing the failures.
func (p *Pipeline) Run(ctx context.Context, files []File) (Result, error) {
	state := State{Files: files}

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
	result := Result{
		Processed: len(state.Files),
		Results:   state.Results,
		Success:   state.Success,
		Error:     state.Err,
	}
	for _, r := range state.Results {
		if r.Status == "ok" {
			result.Successful++
		} else {
			result.Failed++
		}
	}
	return result
}

// validateFiles checks the batch before extraction. An empty batch is
// a run-level failure. A file with no name or no content fails here,
// before extraction; a batch where every file fails validation never
// reaches the extraction stage.
func (p *Pipeline) validateFiles(ctx workflow.Context, state State) (State, error) {
	if len(state.Files) == 0 {
		state.Err = "no files to ingest"
		return state, nil
	}

	extracted := make([]Extraction, len(state.Files))
	valid := 0
	for i := range state.Files {
		f := &state.Files[i]
		if f.Ext == "" {
			f.Ext = strings.ToLower(filepath.Ext(f.Name))
		}

		e := Extraction{Name: f.Name, Ext: f.Ext}
		switch {
		case f.Name == "":
			e.Err = "file has no name"
		case len(f.Content) == 0:
			e.Err = "file is empty"
		default:
			valid++
		}
		extracted[i] = e
	}

	state.Extracted = extracted
	if valid == 0 {
		state.Err = "no valid files to ingest"
		return state, nil
	}

	ctx.Logger().Debug("files validated", "count", len(state.Files), "valid", valid)
	return state, nil
}

// extractText extracts each validated file's text. Files fail
// independently; the run fails only when no file yields any text.
func (p *Pipeline) extractText(ctx workflow.Context, state State) (State, error) {
	succeeded := 0
	for i, f := range state.Files {
		e := &state.Extracted[i]
		if e.Err != "" {
			continue
		}

		text, err := extract.Text(f.Content, f.Ext)
		if err != nil {
			e.Err = err.Error()
			ctx.Logger().Warn("extraction failed", "file", f.Name, "error", err)
			continue
		}
		e.Text = text
		succeeded++
	}

	if succeeded == 0 {
		state.Err = "no text could be extracted from any file"
	}
	return state, nil
}

// createDocuments chunks the extracted text into overlapping documents
// with source and chunk-index metadata. Extraction can succeed while
// chunking yields nothing (whitespace-only text); a batch that produces
// zero documents is a run-level failure.
func (p *Pipeline) createDocuments(ctx workflow.Context, state State) (State, error) {
	var docs []retrieval.Document
	for _, e := range state.Extracted {
		if e.Err != "" {
			continue
		}
		for i, chunk := range chunkText(e.Text, p.chunkSize, p.chunkOverlap) {
			docs = append(docs, retrieval.Document{
				Content: chunk,
				Metadata: map[string]string{
					"source": e.Name,
					"chunk":  strconv.Itoa(i),
				},
			})
		}
	}

	state.Documents = docs
	if len(docs) == 0 {
		state.Err = "no documents were created from the extracted text"
		return state, nil
	}

	ctx.Logger().Debug("documents created", "count", len(docs))
	return state, nil
}

// addToStore indexes the whole batch in one call, then builds the
// per-file results. A store failure fails every file in the batch.
func (p *Pipeline) addToStore(ctx workflow.Context, state State) (State, error) {
	if err := p.store.Add(ctx, state.Documents); err != nil {
		state.Err = fmt.Sprintf("failed to add documents to store: %v", err)
		return state, nil
	}

	chunksPerFile := make(map[string]int, len(state.Extracted))
	for _, d := range state.Documents {
		chunksPerFile[d.Metadata["source"]]++
	}

	results := make([]FileResult, 0, len(state.Extracted))
	for _, e := range state.Extracted {
		if e.Err != "" {
			results = append(results, FileResult{Name: e.Name, Status: "failed", Message: e.Err})
			continue
		}
		results = append(results, FileResult{Name: e.Name, Status: "ok", Chunks: chunksPerFile[e.Name]})
	}

	state.Results = results
	state.Success = true
	ctx.Logger().Info("batch indexed", "documents", len(state.Documents), "files", len(results))
	return state, nil
}

// handleError is the error terminal. Every submitted file is reported
// as failed with the run-level message, or its own extraction error
// when one was recorded.
func (p *Pipeline) handleError(ctx workflow.Context, state State) (State, error) {
	if state.Err == "" {
		state.Err = "ingestion pipeline failed"
	}
	state.Success = false

	results := make([]FileResult, 0, len(state.Files))
	for i, f := range state.Files {
		msg := state.Err
		if i < len(state.Extracted) && state.Extracted[i].Err != "" {
			msg = state.Extracted[i].Err
		}
		results = append(results, FileResult{Name: f.Name, Status: "failed", Message: msg})
	}
	state.Results = results

	ctx.Logger().Info("ingestion pipeline ended with error", "error", state.Err)
	return state, nil
}

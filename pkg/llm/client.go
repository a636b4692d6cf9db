// Package llm defines the model-call capability consumed by the pipelines
// and provides an OpenAI-backed implementation plus a deterministic mock.
//
// The pipelines only depend on the Client interface; which provider sits
// behind it is a composition-time decision.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse indicates the provider returned no completion choices.
var ErrEmptyResponse = errors.New("model returned empty response")

// Client is the model-call capability: given a system prompt and a user
// prompt, return the model's text response.
//
// Implementations must be safe for concurrent use. Failures (network,
// timeout, provider errors) are returned as ordinary errors; callers
// decide whether a failure is fatal or degradable.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

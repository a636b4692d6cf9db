package llm

import (
	"context"
	"fmt"
	"sync"
)

// Mock returns deterministic responses for local runs and tests.
// Responses are keyed by user prompt; unmatched prompts get the
// default response.
type Mock struct {
	mu              sync.Mutex
	responses       map[string]string
	defaultResponse string
	err             error
	calls           []string
}

// Compile-time interface check.
var _ Client = (*Mock)(nil)

// NewMock creates a mock client with a default response.
func NewMock() *Mock {
	return &Mock{
		responses:       make(map[string]string),
		defaultResponse: "mock response",
	}
}

// NewMockWithResponses creates a mock client with predefined responses.
func NewMockWithResponses(responses map[string]string, defaultResponse string) *Mock {
	if defaultResponse == "" {
		defaultResponse = "mock response"
	}
	if responses == nil {
		responses = make(map[string]string)
	}
	return &Mock{responses: responses, defaultResponse: defaultResponse}
}

// Respond registers a response for a user prompt.
func (m *Mock) Respond(userPrompt, response string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[userPrompt] = response
	return m
}

// Fail makes every Complete call return err.
func (m *Mock) Fail(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Calls returns the user prompts received so far.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Complete returns the registered response for the user prompt, or the
// default response prefixed over the prompt when none matches.
func (m *Mock) Complete(_ context.Context, _, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, userPrompt)

	if m.err != nil {
		return "", m.err
	}
	if response, ok := m.responses[userPrompt]; ok {
		return response, nil
	}
	return fmt.Sprintf("%s: %s", m.defaultResponse, userPrompt), nil
}

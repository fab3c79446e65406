package model

import (
	"context"
	"fmt"
	"sync"
)

// MockModel is a lightweight in-memory Model useful for tests and examples.
// It replays scripted responses in order (the last one repeats once the
// script is exhausted) and records every prompt it receives.
type MockModel struct {
	// Err, when set, is returned from every GetResponse call.
	Err error

	mu        sync.Mutex
	name      string
	responses []string
	prompts   []string
	calls     int
}

// NewMockModel constructs a MockModel that replays the given responses.
func NewMockModel(name string, responses ...string) *MockModel {
	return &MockModel{
		name:      name,
		responses: responses,
	}
}

// Name implements Model.
func (m *MockModel) Name() string { return m.name }

// GetResponse implements Model; it records the prompt and returns the next
// scripted response.
func (m *MockModel) GetResponse(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.prompts = append(m.prompts, prompt)

	if m.Err != nil {
		return "", m.Err
	}

	if len(m.responses) == 0 {
		return fmt.Sprintf("Mock response to: %s", prompt), nil
	}

	idx := m.calls - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}

	return m.responses[idx], nil
}

// CallCount reports how many times GetResponse has been invoked.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns a copy of every prompt seen so far, in call order.
func (m *MockModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or "" if none were recorded.
func (m *MockModel) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

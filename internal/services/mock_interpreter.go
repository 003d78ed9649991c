package services

import (
	"context"
	"sync"

	"github.com/tavernkeep/tavern-engine/pkg/parser"
)

// MockInterpreter is a mock implementation of parser.Interpreter for
// testing.
type MockInterpreter struct {
	InterpretFunc func(ctx context.Context, text string) (*parser.Candidate, error)

	// Track calls for testing
	InterpretCalls []string

	mu sync.Mutex // protects all fields above
}

var _ parser.Interpreter = (*MockInterpreter)(nil)

// NewMockInterpreter creates a new mock interpreter.
func NewMockInterpreter() *MockInterpreter {
	return &MockInterpreter{
		InterpretCalls: make([]string, 0),
	}
}

// Interpret mocks candidate extraction. The default behavior defers to
// the grammar rules so handler tests get plausible commands without a
// backend.
func (m *MockInterpreter) Interpret(ctx context.Context, text string) (*parser.Candidate, error) {
	m.mu.Lock()
	m.InterpretCalls = append(m.InterpretCalls, text)
	fn := m.InterpretFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}

	cmd := parser.ParseFallback(text)
	return &parser.Candidate{
		Action:     string(cmd.Action),
		Target:     cmd.Target,
		Args:       cmd.Args,
		Confidence: 0.9,
	}, nil
}

// SetError sets up the mock to fail every Interpret call.
func (m *MockInterpreter) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InterpretFunc = func(ctx context.Context, text string) (*parser.Candidate, error) {
		return nil, err
	}
}

// SetCandidate sets up the mock to return a fixed candidate.
func (m *MockInterpreter) SetCandidate(cand *parser.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InterpretFunc = func(ctx context.Context, text string) (*parser.Candidate, error) {
		return cand, nil
	}
}

// Calls returns a copy of the recorded inputs.
func (m *MockInterpreter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.InterpretCalls))
	copy(calls, m.InterpretCalls)
	return calls
}

// Reset clears all call tracking.
func (m *MockInterpreter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InterpretCalls = make([]string, 0)
	m.InterpretFunc = nil
}

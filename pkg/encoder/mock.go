package encoder

import (
	"context"
	"sync"
)

// MockEncoder records every invocation instead of spawning a process.
// Result and StartErr script the outcome; OnStart lets a test fabricate
// the output artifact the orchestrator expects to find.
type MockEncoder struct {
	mu          sync.Mutex
	invocations []Invocation
	terminated  int

	StartErr error
	Result   Result
	OnStart  func(Invocation)
}

func Mock() *MockEncoder {
	return &MockEncoder{}
}

func (m *MockEncoder) Start(ctx context.Context, inv Invocation) (Handle, error) {
	m.mu.Lock()
	m.invocations = append(m.invocations, inv)
	onStart := m.OnStart
	m.mu.Unlock()

	if m.StartErr != nil {
		return nil, m.StartErr
	}
	if onStart != nil {
		onStart(inv)
	}
	return &mockHandle{enc: m, result: m.Result}, nil
}

func (m *MockEncoder) Invocations() []Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	invs := make([]Invocation, len(m.invocations))
	copy(invs, m.invocations)
	return invs
}

func (m *MockEncoder) Terminations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.terminated
}

type mockHandle struct {
	enc    *MockEncoder
	result Result
}

func (h *mockHandle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		// the native handle kills its process on cancellation; record the
		// same teardown here
		_ = h.Terminate()
		return Result{}, ctx.Err()
	default:
		return h.result, nil
	}
}

func (h *mockHandle) Terminate() error {
	h.enc.mu.Lock()
	defer h.enc.mu.Unlock()
	h.enc.terminated++
	return nil
}

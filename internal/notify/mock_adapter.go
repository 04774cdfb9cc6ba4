package notify

import (
	"context"
	"sync"
)

// MockAdapter is a test double recording sent messages.
type MockAdapter struct {
	mu        sync.Mutex
	Connected bool
	Closed    bool
	Sent      []Message
	SendErr   error
}

func (m *MockAdapter) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Connected = true
	return nil
}

func (m *MockAdapter) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *MockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

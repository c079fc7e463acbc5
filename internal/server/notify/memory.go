package notify

import (
	"context"
	"sync"
)

// Memory is a Notifier for a single server process.
type Memory struct {
	mu   sync.Mutex
	subs map[string]map[int]chan struct{}
	next int
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[int]chan struct{})}
}

func (m *Memory) Publish(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs[ownerID] {
		signal(ch)
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, ownerID string) (<-chan struct{}, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	ch := make(chan struct{}, 1)
	if m.subs[ownerID] == nil {
		m.subs[ownerID] = make(map[int]chan struct{})
	}
	m.subs[ownerID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs[ownerID], id)
			if len(m.subs[ownerID]) == 0 {
				delete(m.subs, ownerID)
			}
		})
	}
	return ch, cancel, nil
}

// Subscribers counts the open subscriptions of ownerID.
func (m *Memory) Subscribers(ownerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[ownerID])
}

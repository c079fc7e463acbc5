package gateway

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/google/uuid"
)

type memorySub struct {
	owner  string
	stream *stream.Stream[[]journal.Entry]
}

// MemoryEntries is an EntryStore kept in process. Its live queries behave
// like the network ones: an initial snapshot, then one per change.
type MemoryEntries struct {
	mu      sync.Mutex
	entries map[string]journal.Entry
	subs    map[int]memorySub
	nextSub int

	writeErr error
	calls    int
}

func NewMemoryEntries() *MemoryEntries {
	return &MemoryEntries{
		entries: make(map[string]journal.Entry),
		subs:    make(map[int]memorySub),
	}
}

// FailWrites makes every later write return err. Nil restores normal work.
func (m *MemoryEntries) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

// Break fails every open live query of owner with err.
func (m *MemoryEntries) Break(ownerID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.owner == ownerID {
			s.stream.Fail(err)
		}
	}
}

// Subscribers returns the owners of the open live queries.
func (m *MemoryEntries) Subscribers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	owners := make([]string, 0, len(m.subs))
	for _, s := range m.subs {
		owners = append(owners, s.owner)
	}
	return owners
}

// Calls counts write operations that reached the store.
func (m *MemoryEntries) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MemoryEntries) Observe(_ context.Context, ownerID string) *stream.Stream[[]journal.Entry] {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	s := stream.New[[]journal.Entry](func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}, stream.Coalesce())
	m.subs[id] = memorySub{owner: ownerID, stream: s}
	s.Send(m.listLocked(ownerID))
	return s
}

func (m *MemoryEntries) Create(_ context.Context, ownerID string, e journal.Entry) (journal.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.writeErr != nil {
		return journal.Entry{}, m.writeErr
	}
	e.ID = uuid.NewString()
	e.OwnerID = ownerID
	if e.CreatedAt <= 0 {
		e.CreatedAt = journal.NowMillis()
	}
	m.entries[e.ID] = e
	m.publishLocked(ownerID)
	return e, nil
}

func (m *MemoryEntries) Update(_ context.Context, ownerID string, e journal.Entry) error {
	if e.ID == "" {
		return common.ErrInvalidArgument
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.writeErr != nil {
		return m.writeErr
	}
	old, exists := m.entries[e.ID]
	if exists && old.OwnerID != ownerID {
		return common.ErrPermissionDenied
	}
	if e.CreatedAt <= 0 {
		if exists {
			e.CreatedAt = old.CreatedAt
		} else {
			e.CreatedAt = journal.NowMillis()
		}
	}
	e.OwnerID = ownerID
	m.entries[e.ID] = e
	m.publishLocked(ownerID)
	return nil
}

func (m *MemoryEntries) Delete(_ context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.writeErr != nil {
		return m.writeErr
	}
	old, ok := m.entries[entryID]
	if !ok {
		return nil
	}
	delete(m.entries, entryID)
	m.publishLocked(old.OwnerID)
	return nil
}

func (m *MemoryEntries) Get(_ context.Context, ownerID, entryID string) (journal.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[entryID]
	if !ok {
		return journal.Entry{}, common.ErrNotFound
	}
	if e.OwnerID != ownerID {
		return journal.Entry{}, common.ErrPermissionDenied
	}
	return e, nil
}

func (m *MemoryEntries) listLocked(ownerID string) []journal.Entry {
	out := make([]journal.Entry, 0)
	for _, e := range m.entries {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	journal.SortNewestFirst(out)
	return out
}

func (m *MemoryEntries) publishLocked(ownerID string) {
	var list []journal.Entry
	for _, s := range m.subs {
		if s.owner != ownerID {
			continue
		}
		if list == nil {
			list = m.listLocked(ownerID)
		}
		s.stream.Send(list)
	}
}

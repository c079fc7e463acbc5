package gateway

import (
	"sync"

	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
)

// userFeed holds the current user and fans changes out to subscribers.
type userFeed struct {
	mu      sync.Mutex
	current string
	nextID  int
	subs    map[int]*stream.Stream[string]
}

func newUserFeed() *userFeed {
	return &userFeed{subs: make(map[int]*stream.Stream[string])}
}

func (f *userFeed) get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *userFeed) subscribe() *stream.Stream[string] {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	s := stream.New[string](func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	})
	f.subs[id] = s
	s.Send(f.current)
	return s
}

// set records user and notifies every subscriber, even when the value is
// unchanged.
func (f *userFeed) set(user string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = user
	for _, s := range f.subs {
		s.Send(user)
	}
}

// Package livesync keeps the list of the signed-in user's entries current.
//
// A Core follows the auth gateway's user stream and, for every user it
// reports, holds exactly one live query on the entry store. Both streams are
// consumed by the single goroutine running Run, so events of a released
// query can never reach the published state.
package livesync

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophjournal/internal/client/repository"
	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
)

type Core struct {
	repo   repository.Repository
	logger logging.Logger
	retry  chan struct{}

	mu          sync.Mutex
	state       State
	watchers    map[int]*stream.Stream[State]
	nextWatcher int
}

func New(repo repository.Repository, logger logging.Logger) *Core {
	return &Core{
		repo:     repo,
		logger:   logger.With("module", "livesync"),
		retry:    make(chan struct{}, 1),
		state:    State{Status: StatusLoading, Loading: true},
		watchers: make(map[int]*stream.Stream[State]),
	}
}

// State returns the most recently published state.
func (c *Core) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Watch streams every published state in order, starting with the current
// one. Close the stream to stop watching.
func (c *Core) Watch() *stream.Stream[State] {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextWatcher
	c.nextWatcher++
	s := stream.New[State](func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	})
	c.watchers[id] = s
	s.Send(c.state)
	return s
}

// AcknowledgeMessage clears the message once the user has seen it.
func (c *Core) AcknowledgeMessage() {
	c.update(func(s *State) { s.Message = "" })
}

// Retry reopens the live query of the current user after a failure.
func (c *Core) Retry() {
	select {
	case c.retry <- struct{}{}:
	default:
	}
}

func (c *Core) update(fn func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(&c.state)
	for _, w := range c.watchers {
		w.Send(c.state)
	}
}

// Run drives the core until ctx is done. Both subscriptions are released
// before it returns.
func (c *Core) Run(ctx context.Context) error {
	users := c.repo.UserChanges()
	defer users.Close()

	var (
		owner   string
		entries *stream.Stream[[]journal.Entry]
		lists   <-chan []journal.Entry
		failure <-chan error
	)
	release := func() {
		if entries != nil {
			entries.Close()
		}
		entries, lists, failure = nil, nil, nil
	}
	defer release()

	observe := func(user string) {
		release()
		owner = user
		entries = c.repo.Observe(ctx, user)
		lists, failure = entries.Next(), entries.Err()
		c.logger.Debug(ctx, "observing entries", "user_id", user)
		c.update(func(s *State) {
			s.Status = StatusLoading
			s.UserID = user
			s.Entries = nil
			s.Loading = true
			s.Message = ""
			s.Err = nil
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case user := <-users.Next():
			if user == "" {
				release()
				owner = ""
				c.update(func(s *State) {
					*s = State{Status: StatusSignedOut, Message: SignedOutMessage}
				})
				continue
			}
			observe(user)

		case err := <-users.Err():
			c.logger.Error(ctx, "auth stream failed", "error", err)
			return err

		case list := <-lists:
			c.update(func(s *State) {
				s.Status = StatusReady
				s.UserID = owner
				s.Entries = list
				s.Loading = false
				s.Message = ""
				s.Err = nil
			})

		case err := <-failure:
			c.logger.Warn(ctx, "entry stream failed", "user_id", owner, "error", err)
			release()
			c.update(func(s *State) {
				s.Status = StatusFailed
				s.UserID = owner
				s.Loading = false
				s.Message = common.Message(err)
				s.Err = err
			})

		case <-c.retry:
			if owner != "" && entries == nil {
				observe(owner)
			}
		}
	}
}

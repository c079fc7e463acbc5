package livesync

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/gateway"
	"github.com/dmitrijs2005/gophjournal/internal/client/repository"
	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	core    *Core
	auth    *gateway.MemoryAuth
	entries *gateway.MemoryEntries
	states  *stream.Stream[State]
	done    chan error
	cancel  context.CancelFunc
}

func start(t *testing.T) *harness {
	t.Helper()
	repo, auth, entries := repository.NewMemory()
	core := New(repo, logging.Nop())
	states := core.Watch()

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{core: core, auth: auth, entries: entries, states: states, done: make(chan error, 1), cancel: cancel}
	go func() { h.done <- core.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-h.done
		states.Close()
	})
	return h
}

// until collects published states until pred matches one.
func (h *harness) until(t *testing.T, pred func(State) bool) []State {
	t.Helper()
	var seen []State
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-h.states.Next():
			seen = append(seen, s)
			if pred(s) {
				return seen
			}
		case <-deadline:
			t.Fatalf("state never reached; seen %+v", seen)
			return nil
		}
	}
}

func readyFor(user string, n int) func(State) bool {
	return func(s State) bool {
		return s.Status == StatusReady && s.UserID == user && len(s.Entries) == n
	}
}

func TestCore_InitialStateIsLoading(t *testing.T) {
	repo, _, _ := repository.NewMemory()
	c := New(repo, logging.Nop())

	s := c.State()
	assert.Equal(t, StatusLoading, s.Status)
	assert.True(t, s.Loading)
	assert.Empty(t, s.UserID)
}

func TestCore_SignedOut(t *testing.T) {
	h := start(t)

	h.until(t, func(s State) bool { return s.Status == StatusSignedOut })

	s := h.core.State()
	assert.Empty(t, s.Entries)
	assert.False(t, s.Loading)
	assert.Equal(t, SignedOutMessage, s.Message)
	assert.Empty(t, h.entries.Subscribers())
}

func TestCore_SignInLoadsThenReady(t *testing.T) {
	h := start(t)
	h.until(t, func(s State) bool { return s.Status == StatusSignedOut })

	_, err := h.entries.Create(context.Background(), "u1", journal.Entry{Title: "hello", Body: "world"})
	require.NoError(t, err)

	h.auth.SetUser("u1")
	seen := h.until(t, readyFor("u1", 1))

	require.GreaterOrEqual(t, len(seen), 2)
	loading := seen[len(seen)-2]
	assert.Equal(t, StatusLoading, loading.Status)
	assert.Equal(t, "u1", loading.UserID)
	assert.True(t, loading.Loading)
	assert.Empty(t, loading.Entries)

	ready := seen[len(seen)-1]
	assert.False(t, ready.Loading)
	assert.Empty(t, ready.Message)
	e := ready.Entries[0]
	assert.Equal(t, "hello", e.Title)
	assert.Equal(t, "world", e.Body)
	assert.Equal(t, "u1", e.OwnerID)
	assert.NotEmpty(t, e.ID)
	assert.Positive(t, e.CreatedAt)
}

func TestCore_SwitchUsers(t *testing.T) {
	h := start(t)
	ctx := context.Background()
	_, err := h.entries.Create(ctx, "A", journal.Entry{Title: "a1"})
	require.NoError(t, err)
	_, err = h.entries.Create(ctx, "B", journal.Entry{Title: "b1"})
	require.NoError(t, err)
	_, err = h.entries.Create(ctx, "B", journal.Entry{Title: "b2"})
	require.NoError(t, err)

	h.auth.SetUser("A")
	h.until(t, readyFor("A", 1))

	h.auth.SetUser("B")
	seen := h.until(t, readyFor("B", 2))

	require.Len(t, seen, 2, "expected Loading(B) then Ready(B)")
	assert.Equal(t, StatusLoading, seen[0].Status)
	assert.Equal(t, "B", seen[0].UserID)
	for _, s := range seen {
		for _, e := range s.Entries {
			assert.Equal(t, "B", e.OwnerID)
		}
	}

	assert.Equal(t, []string{"B"}, h.entries.Subscribers())

	// writes for A no longer reach the published state
	_, err = h.entries.Create(ctx, "A", journal.Entry{Title: "a2"})
	require.NoError(t, err)
	_, err = h.entries.Create(ctx, "B", journal.Entry{Title: "b3"})
	require.NoError(t, err)
	seen = h.until(t, readyFor("B", 3))
	for _, s := range seen {
		assert.Equal(t, "B", s.UserID)
	}
}

func TestCore_SameUserAgainResubscribes(t *testing.T) {
	h := start(t)

	h.auth.SetUser("u1")
	h.until(t, readyFor("u1", 0))

	h.auth.SetUser("u1")
	seen := h.until(t, readyFor("u1", 0))
	assert.Equal(t, StatusLoading, seen[0].Status)
	assert.Len(t, h.entries.Subscribers(), 1)
}

func TestCore_StreamFailureKeepsLastGoodList(t *testing.T) {
	h := start(t)
	ctx := context.Background()
	_, err := h.entries.Create(ctx, "u1", journal.Entry{Title: "e1", CreatedAt: 1})
	require.NoError(t, err)
	_, err = h.entries.Create(ctx, "u1", journal.Entry{Title: "e2", CreatedAt: 2})
	require.NoError(t, err)

	h.auth.SetUser("u1")
	h.until(t, readyFor("u1", 2))

	h.entries.Break("u1", common.ErrNetworkUnavailable)
	seen := h.until(t, func(s State) bool { return s.Status == StatusFailed })
	failed := seen[len(seen)-1]

	assert.Equal(t, "u1", failed.UserID)
	assert.False(t, failed.Loading)
	assert.ErrorIs(t, failed.Err, common.ErrNetworkUnavailable)
	assert.Equal(t, common.Message(common.ErrNetworkUnavailable), failed.Message)
	require.Len(t, failed.Entries, 2)
	assert.Equal(t, "e2", failed.Entries[0].Title)

	require.Eventually(t, func() bool { return len(h.entries.Subscribers()) == 0 }, time.Second, 5*time.Millisecond)

	h.core.Retry()
	h.until(t, readyFor("u1", 2))
}

func TestCore_LoadingClearsPreviousMessage(t *testing.T) {
	h := start(t)
	h.until(t, func(s State) bool { return s.Status == StatusSignedOut })

	h.auth.SetUser("A")
	seen := h.until(t, func(s State) bool { return s.Status == StatusLoading && s.UserID == "A" })
	assert.Empty(t, seen[len(seen)-1].Message)
	h.until(t, readyFor("A", 0))

	h.entries.Break("A", common.ErrNetworkUnavailable)
	seen = h.until(t, func(s State) bool { return s.Status == StatusFailed })
	require.NotEmpty(t, seen[len(seen)-1].Message)

	h.auth.SetUser("B")
	seen = h.until(t, func(s State) bool { return s.Status == StatusLoading && s.UserID == "B" })
	loading := seen[len(seen)-1]
	assert.Empty(t, loading.Message)
	assert.NoError(t, loading.Err)
	h.until(t, readyFor("B", 0))
}

func TestCore_AcknowledgeMessage(t *testing.T) {
	h := start(t)
	h.auth.SetUser("u1")
	h.until(t, readyFor("u1", 0))

	h.entries.Break("u1", common.ErrPermissionDenied)
	h.until(t, func(s State) bool { return s.Status == StatusFailed })

	h.core.AcknowledgeMessage()
	seen := h.until(t, func(s State) bool { return s.Message == "" })
	last := seen[len(seen)-1]
	assert.Equal(t, StatusFailed, last.Status, "acknowledging keeps the status")
}

func TestCore_SignOutReleasesSubscription(t *testing.T) {
	h := start(t)
	ctx := context.Background()

	h.auth.SetUser("u1")
	h.until(t, readyFor("u1", 0))
	require.Len(t, h.entries.Subscribers(), 1)

	require.NoError(t, h.auth.SignOut(ctx))
	h.until(t, func(s State) bool { return s.Status == StatusSignedOut })
	assert.Empty(t, h.entries.Subscribers())

	// changes for the old user are ignored
	_, err := h.entries.Create(ctx, "u1", journal.Entry{Title: "late"})
	require.NoError(t, err)
	select {
	case s := <-h.states.Next():
		t.Fatalf("unexpected state after sign out: %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, StatusSignedOut, h.core.State().Status)
}

func TestCore_CancelReleasesEverything(t *testing.T) {
	h := start(t)
	h.auth.SetUser("u1")
	h.until(t, readyFor("u1", 0))

	h.cancel()
	select {
	case err := <-h.done:
		require.NoError(t, err)
		h.done <- err
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Empty(t, h.entries.Subscribers())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ready", StatusReady.String())
	assert.Equal(t, "signed out", StatusSignedOut.String())
	assert.Equal(t, "unknown", Status(42).String())
}

package livesync

import "github.com/dmitrijs2005/gophjournal/internal/journal"

// Status is the kind of a published State.
type Status int

const (
	// StatusLoading is also the initial status, before the first auth event.
	StatusLoading Status = iota
	StatusSignedOut
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSignedOut:
		return "signed out"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SignedOutMessage is shown while nobody is signed in.
const SignedOutMessage = "Sign in to view entries."

// State is what the presentation layer renders. Entries are newest first
// and belong to UserID; the slice must be treated as read-only.
type State struct {
	Status  Status
	UserID  string
	Entries []journal.Entry
	Loading bool
	Message string
	Err     error
}

// Package form holds the draft of one entry being created or edited and
// turns user actions into store writes. The saved result is not applied
// locally; it comes back through the live query.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophjournal/internal/client/repository"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
)

var (
	ErrEmptyTitle  = errors.New("title is required")
	ErrNotSignedIn = errors.New("not signed in")
	ErrNotEditing  = errors.New("no entry is being edited")
)

// Mode tells whether the controller creates a new entry or edits one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Messages shown after a successful action.
const (
	MsgCreated     = "Entry saved."
	MsgUpdated     = "Entry updated."
	MsgDeleted     = "Entry deleted."
	MsgNotSignedIn = "Sign in to save entries."
)

// View is a snapshot of the controller for rendering.
type View struct {
	Mode           Mode
	EntryID        string
	Title          string
	Body           string
	TitleError     bool
	Message        string
	CloseRequested bool
}

type Controller struct {
	repo repository.Repository

	mu        sync.Mutex
	mode      Mode
	entryID   string
	createdAt int64
	title     string
	body      string

	titleError     bool
	message        string
	closeRequested bool
}

// NewCreate returns a controller with an empty draft for a new entry.
func NewCreate(repo repository.Repository) *Controller {
	return &Controller{repo: repo, mode: ModeCreate}
}

// NewEdit returns a controller editing entry id of the signed-in user.
func NewEdit(ctx context.Context, repo repository.Repository, id string) (*Controller, error) {
	c := &Controller{repo: repo, mode: ModeEdit}
	if err := c.LoadForEdit(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadForEdit fills the draft with the owner's entry id, fetched by a point
// lookup. It reports common.ErrNotFound when id is not one of the owner's
// entries.
func (c *Controller) LoadForEdit(ctx context.Context, id string) error {
	owner := c.repo.CurrentUserID()
	if owner == "" {
		return ErrNotSignedIn
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e, err := c.repo.Get(ctx, owner, id)
	if err != nil {
		if errors.Is(err, common.ErrPermissionDenied) {
			return common.ErrNotFound
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeEdit
	c.entryID = e.ID
	c.createdAt = e.CreatedAt
	c.title = e.Title
	c.body = e.Body
	c.titleError = false
	return nil
}

func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
	c.titleError = false
}

func (c *Controller) SetBody(body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.body = body
}

// AcknowledgeMessage clears the message once it has been shown.
func (c *Controller) AcknowledgeMessage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = ""
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Mode:           c.mode,
		EntryID:        c.entryID,
		Title:          c.title,
		Body:           c.body,
		TitleError:     c.titleError,
		Message:        c.message,
		CloseRequested: c.closeRequested,
	}
}

// Save validates the draft and creates or updates the entry. On failure the
// draft is kept for another attempt.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	title := strings.TrimSpace(c.title)
	body := strings.TrimSpace(c.body)
	mode, id, createdAt := c.mode, c.entryID, c.createdAt
	if title == "" {
		c.titleError = true
		c.mu.Unlock()
		return ErrEmptyTitle
	}
	c.mu.Unlock()

	owner := c.repo.CurrentUserID()
	if owner == "" {
		c.finish(ErrNotSignedIn, "")
		return ErrNotSignedIn
	}

	var err error
	msg := MsgCreated
	if mode == ModeEdit {
		msg = MsgUpdated
		err = c.repo.Update(ctx, owner, journal.Entry{
			ID:        id,
			Title:     title,
			Body:      body,
			OwnerID:   owner,
			CreatedAt: createdAt,
		})
	} else {
		_, err = c.repo.Create(ctx, owner, journal.Entry{Title: title, Body: body})
	}

	c.finish(err, msg)
	return err
}

// Delete removes the entry being edited.
func (c *Controller) Delete(ctx context.Context) error {
	c.mu.Lock()
	mode, id := c.mode, c.entryID
	c.mu.Unlock()

	if mode != ModeEdit || id == "" {
		return ErrNotEditing
	}

	err := c.repo.Delete(ctx, id)
	c.finish(err, MsgDeleted)
	return err
}

func (c *Controller) finish(err error, success string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case err == nil:
		c.closeRequested = true
		c.message = success
	case errors.Is(err, ErrNotSignedIn):
		c.message = MsgNotSignedIn
	default:
		c.message = common.Message(err)
	}
}

package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/gophjournal/internal/client/form"
	"github.com/dmitrijs2005/gophjournal/internal/common"
)

// Interactive input helpers, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// userMessage is the text shown for a failed command.
func userMessage(err error) string {
	switch {
	case errors.Is(err, form.ErrNotSignedIn):
		return form.MsgNotSignedIn
	case errors.Is(err, form.ErrEmptyTitle):
		return "Title is required."
	}
	return common.Message(err)
}

func (a *App) credentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register creates an account and signs it in.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.repo.SignUp(ctx, email, string(password)); err != nil {
		printlnFn(userMessage(err))
		return err
	}

	a.signedIn(email)
	printlnFn("Account created. Signed in as", email)
	return nil
}

// Login signs in with an existing account.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.repo.SignIn(ctx, email, string(password)); err != nil {
		printlnFn(userMessage(err))
		return err
	}

	a.signedIn(email)
	printlnFn("Signed in as", email)
	return nil
}

func (a *App) signedIn(email string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.email = email
	a.shown = nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.repo.SignOut(ctx); err != nil {
		printlnFn(userMessage(err))
		return err
	}
	a.signedIn("")
	printlnFn("Signed out.")
	return nil
}

// List prints the current state of the live entry list and remembers the
// numbering for edit and delete.
func (a *App) List(ctx context.Context) error {
	st := a.core.State()
	renderState(a.out, st)

	a.mu.Lock()
	a.shown = st.Entries
	a.mu.Unlock()
	return nil
}

// resolve maps a list number to an entry id. Anything else is taken as an
// id.
func (a *App) resolve(ref string) string {
	n, err := strconv.Atoi(ref)
	if err != nil {
		return ref
	}

	a.mu.Lock()
	shown := a.shown
	a.mu.Unlock()
	if shown == nil {
		shown = a.core.State().Entries
	}
	if n < 1 || n > len(shown) {
		return ref
	}
	return shown[n-1].ID
}

func (a *App) report(f *form.Controller, err error) error {
	v := f.View()
	switch {
	case v.TitleError:
		printlnFn("Title is required.")
	case v.Message != "":
		printlnFn(v.Message)
		f.AcknowledgeMessage()
	case err != nil:
		printlnFn(userMessage(err))
	}
	return err
}

// Add asks for a title and a body and saves a new entry.
func (a *App) Add(ctx context.Context) error {
	f := form.NewCreate(a.repo)

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	body, err := getMultiline(a.reader, "Body", a.out)
	if err != nil {
		return err
	}

	f.SetTitle(title)
	f.SetBody(body)
	return a.report(f, f.Save(ctx))
}

// Edit loads an entry and overwrites the parts the user changes. Empty
// answers keep the current text.
func (a *App) Edit(ctx context.Context, ref string) error {
	f, err := form.NewEdit(ctx, a.repo, a.resolve(ref))
	if err != nil {
		printlnFn(userMessage(err))
		return err
	}

	v := f.View()
	printlnFn("Title:", v.Title)
	if v.Body != "" {
		printlnFn(v.Body)
	}

	title, err := getSimpleText(a.reader, "New title (empty keeps the current one)", a.out)
	if err != nil {
		return err
	}
	body, err := getMultiline(a.reader, "New body (empty keeps the current one)", a.out)
	if err != nil {
		return err
	}

	if title != "" {
		f.SetTitle(title)
	}
	if body != "" {
		f.SetBody(body)
	}
	return a.report(f, f.Save(ctx))
}

// Delete removes an entry for good.
func (a *App) Delete(ctx context.Context, ref string) error {
	f, err := form.NewEdit(ctx, a.repo, a.resolve(ref))
	if err != nil {
		printlnFn(userMessage(err))
		return err
	}
	return a.report(f, f.Delete(ctx))
}

// Export uploads a dump of the user's entries and prints a download link.
func (a *App) Export(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn(form.MsgNotSignedIn)
		return form.ErrNotSignedIn
	}

	url, err := a.export.Export(ctx)
	if err != nil {
		printlnFn(userMessage(err))
		return err
	}
	printlnFn("Export ready:", url)
	return nil
}

// Retry reopens the live entry list after a failure.
func (a *App) Retry(ctx context.Context) error {
	a.core.Retry()
	printlnFn("Reconnecting...")
	return nil
}

// Ack dismisses the current message of the entry list.
func (a *App) Ack(ctx context.Context) error {
	a.core.AcknowledgeMessage()
	return nil
}

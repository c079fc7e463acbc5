package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	sc "github.com/dmitrijs2005/gophjournal/internal/server/config"
	"github.com/dmitrijs2005/gophjournal/internal/server/notify"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    notify.Notifier
	config      *sc.Config
	logger      logging.Logger
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager, n notify.Notifier, config *sc.Config, l logging.Logger) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: m,
		notifier:    n,
		config:      config,
		logger:      l.With("module", "entry_service"),
	}
}

// Create stores a new entry of userID with a fresh id. A non-positive
// CreatedAt is replaced by the current time.
func (s *EntryService) Create(ctx context.Context, userID string, e journal.Entry) (journal.Entry, error) {
	e.ID = uuid.NewString()
	e.OwnerID = userID
	if e.CreatedAt <= 0 {
		e.CreatedAt = journal.NowMillis()
	}

	if err := s.repomanager.Entries(s.db).Upsert(ctx, e); err != nil {
		return journal.Entry{}, fmt.Errorf("error creating entry: %w", err)
	}
	s.changed(ctx, userID)
	return e, nil
}

// Update overwrites entry e.ID of userID. When CreatedAt is not positive
// the stored creation time is kept.
func (s *EntryService) Update(ctx context.Context, userID string, e journal.Entry) error {
	if e.ID == "" {
		return common.ErrInvalidArgument
	}
	e.OwnerID = userID

	repo := s.repomanager.Entries(s.db)
	if e.CreatedAt <= 0 {
		old, err := repo.Get(ctx, userID, e.ID)
		switch {
		case err == nil:
			e.CreatedAt = old.CreatedAt
		case errors.Is(err, common.ErrNotFound):
			e.CreatedAt = journal.NowMillis()
		default:
			return fmt.Errorf("error updating entry: %w", err)
		}
	}

	if err := repo.Upsert(ctx, e); err != nil {
		return fmt.Errorf("error updating entry: %w", err)
	}
	s.changed(ctx, userID)
	return nil
}

// Delete removes entry id of userID. Missing entries are not an error.
func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return common.ErrInvalidArgument
	}
	if err := s.repomanager.Entries(s.db).Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
	}
	s.changed(ctx, userID)
	return nil
}

func (s *EntryService) Get(ctx context.Context, userID, id string) (journal.Entry, error) {
	if id == "" {
		return journal.Entry{}, common.ErrInvalidArgument
	}
	return s.repomanager.Entries(s.db).Get(ctx, userID, id)
}

// List returns userID's entries, newest first.
func (s *EntryService) List(ctx context.Context, userID string) ([]journal.Entry, error) {
	return s.repomanager.Entries(s.db).List(ctx, userID)
}

// Watch calls send with userID's full list now and after every change until
// ctx ends or send fails. It subscribes before the first read so no change
// between the read and the subscription is lost.
func (s *EntryService) Watch(ctx context.Context, userID string, send func([]journal.Entry) error) error {
	signals, cancel, err := s.notifier.Subscribe(ctx, userID)
	if err != nil {
		return fmt.Errorf("error subscribing to changes: %w", err)
	}
	defer cancel()

	for {
		list, err := s.List(ctx, userID)
		if err != nil {
			return err
		}
		if err := send(list); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signals:
		}
	}
}

func (s *EntryService) changed(ctx context.Context, userID string) {
	if err := s.notifier.Publish(ctx, userID); err != nil {
		s.logger.Warn(ctx, "change notification failed", "user_id", userID, "error", err)
	}
}

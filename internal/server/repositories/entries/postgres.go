// Package entries persists journal entries in PostgreSQL.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, e journal.Entry) error {
	query := `
		INSERT INTO entries (id, user_id, title, content, "timestamp")
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			"timestamp" = EXCLUDED."timestamp"
			WHERE entries.user_id = EXCLUDED.user_id
	`
	res, err := r.db.ExecContext(ctx, query, e.ID, e.OwnerID, e.Title, e.Body, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrPermissionDenied
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM entries WHERE id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns common.ErrNotFound for an unknown id and
// common.ErrPermissionDenied when userID does not own the entry.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (journal.Entry, error) {
	query := `SELECT id, user_id, title, content, "timestamp" FROM entries WHERE id = $1`

	var e journal.Entry
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.OwnerID, &e.Title, &e.Body, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return journal.Entry{}, common.ErrNotFound
		}
		return journal.Entry{}, fmt.Errorf("db error: %w", err)
	}
	if e.OwnerID != userID {
		return journal.Entry{}, common.ErrPermissionDenied
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]journal.Entry, error) {
	query := `
		SELECT id, user_id, title, content, "timestamp" FROM entries
		WHERE user_id = $1
		ORDER BY "timestamp" DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := make([]journal.Entry, 0)
	for rows.Next() {
		var e journal.Entry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Body, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

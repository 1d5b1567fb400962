// Package messages persists captured messages. Message ids are globally
// unique across tickets, so the primary key is the id alone.
package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ticketvault/ticketvault/internal/archive/models"
	"github.com/ticketvault/ticketvault/internal/common"
	"github.com/ticketvault/ticketvault/internal/dbx"
)

// PostgresRepository implements message storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the message or refreshes its mutable attributes in place.
// Ticket and author bindings are fixed at first capture and never updated.
func (r *PostgresRepository) Upsert(ctx context.Context, msg *models.ArchivedMessage) error {
	query := `
		INSERT INTO archived_messages (id, ticket_id, author_id, content, created_at, edited, external)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET
			content = EXCLUDED.content,
			created_at = EXCLUDED.created_at,
			edited = EXCLUDED.edited,
			external = EXCLUDED.external;
	`
	if _, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.TicketID, msg.AuthorID, msg.Content,
		msg.CreatedAt, msg.Edited, msg.External); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the archived message with the given id, or
// common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.ArchivedMessage, error) {
	query := `
		SELECT id, ticket_id, author_id, content, created_at, edited, external
		FROM archived_messages WHERE id = $1
	`

	var item models.ArchivedMessage
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.TicketID, &item.AuthorID, &item.Content,
		&item.CreatedAt, &item.Edited, &item.External,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select message: %w", err)
	}
	return &item, nil
}

// SelectByTicket returns the ticket's messages ordered by creation time.
func (r *PostgresRepository) SelectByTicket(ctx context.Context, ticketID string) ([]*models.ArchivedMessage, error) {
	query := `
		SELECT id, ticket_id, author_id, content, created_at, edited, external
		FROM archived_messages WHERE ticket_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []*models.ArchivedMessage
	for rows.Next() {
		var item models.ArchivedMessage
		if err := rows.Scan(
			&item.ID, &item.TicketID, &item.AuthorID, &item.Content,
			&item.CreatedAt, &item.Edited, &item.External,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

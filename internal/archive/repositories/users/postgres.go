// Package users persists captured guild members, one row per (ticket, user),
// with username and display name stored only in encrypted form.
package users

import (
	"context"
	"fmt"

	"github.com/ticketvault/ticketvault/internal/archive/models"
	"github.com/ticketvault/ticketvault/internal/dbx"
)

// PostgresRepository implements user storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the user or refreshes its attributes in place. The
// composite key is never updated.
func (r *PostgresRepository) Upsert(ctx context.Context, user *models.ArchivedUser) error {
	query := `
		INSERT INTO archived_users (ticket_id, user_id, username, display_name, avatar, bot, discriminator, role_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticket_id, user_id)
		DO UPDATE SET
			username = EXCLUDED.username,
			display_name = EXCLUDED.display_name,
			avatar = EXCLUDED.avatar,
			bot = EXCLUDED.bot,
			discriminator = EXCLUDED.discriminator,
			role_id = EXCLUDED.role_id;
	`
	if _, err := r.db.ExecContext(ctx, query,
		user.TicketID, user.UserID, user.Username, user.DisplayName,
		user.Avatar, user.Bot, user.Discriminator, user.RoleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpsertDefault ensures the sentinel default row for ticketID exists. The
// row carries no attributes, so a conflict updates nothing.
func (r *PostgresRepository) UpsertDefault(ctx context.Context, ticketID string) error {
	query := `
		INSERT INTO archived_users (ticket_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (ticket_id, user_id) DO NOTHING;
	`
	if _, err := r.db.ExecContext(ctx, query, ticketID, models.DefaultUserID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SelectByTicket returns every user captured for ticketID.
func (r *PostgresRepository) SelectByTicket(ctx context.Context, ticketID string) ([]*models.ArchivedUser, error) {
	query := `
		SELECT ticket_id, user_id, username, display_name, avatar, bot, discriminator, role_id
		FROM archived_users WHERE ticket_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	var result []*models.ArchivedUser
	for rows.Next() {
		var item models.ArchivedUser
		if err := rows.Scan(
			&item.TicketID, &item.UserID, &item.Username, &item.DisplayName,
			&item.Avatar, &item.Bot, &item.Discriminator, &item.RoleID,
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

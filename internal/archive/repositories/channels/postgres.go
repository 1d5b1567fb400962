// Package channels persists channels mentioned in captured messages.
package channels

import (
	"context"
	"fmt"

	"github.com/ticketvault/ticketvault/internal/archive/models"
	"github.com/ticketvault/ticketvault/internal/dbx"
)

// PostgresRepository implements channel storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the channel or refreshes its name in place.
func (r *PostgresRepository) Upsert(ctx context.Context, channel *models.ArchivedChannel) error {
	query := `
		INSERT INTO archived_channels (ticket_id, channel_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticket_id, channel_id)
		DO UPDATE SET
			name = EXCLUDED.name;
	`
	if _, err := r.db.ExecContext(ctx, query, channel.TicketID, channel.ChannelID, channel.Name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SelectByTicket returns every channel captured for ticketID.
func (r *PostgresRepository) SelectByTicket(ctx context.Context, ticketID string) ([]*models.ArchivedChannel, error) {
	query := `SELECT ticket_id, channel_id, name FROM archived_channels WHERE ticket_id = $1`

	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to select channels: %w", err)
	}
	defer rows.Close()

	var result []*models.ArchivedChannel
	for rows.Next() {
		var item models.ArchivedChannel
		if err := rows.Scan(&item.TicketID, &item.ChannelID, &item.Name); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

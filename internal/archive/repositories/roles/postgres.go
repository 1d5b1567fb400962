// Package roles persists captured roles, one row per (ticket, role).
package roles

import (
	"context"
	"fmt"

	"github.com/ticketvault/ticketvault/internal/archive/models"
	"github.com/ticketvault/ticketvault/internal/dbx"
)

// PostgresRepository implements role storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the role or refreshes its attributes in place. The
// composite key is never updated, so re-archiving is idempotent.
func (r *PostgresRepository) Upsert(ctx context.Context, role *models.ArchivedRole) error {
	query := `
		INSERT INTO archived_roles (ticket_id, role_id, name, colour)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticket_id, role_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			colour = EXCLUDED.colour;
	`
	if _, err := r.db.ExecContext(ctx, query, role.TicketID, role.RoleID, role.Name, role.Colour); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SelectByTicket returns every role captured for ticketID.
func (r *PostgresRepository) SelectByTicket(ctx context.Context, ticketID string) ([]*models.ArchivedRole, error) {
	query := `SELECT ticket_id, role_id, name, colour FROM archived_roles WHERE ticket_id = $1`

	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to select roles: %w", err)
	}
	defer rows.Close()

	var result []*models.ArchivedRole
	for rows.Next() {
		var item models.ArchivedRole
		if err := rows.Scan(&item.TicketID, &item.RoleID, &item.Name, &item.Colour); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

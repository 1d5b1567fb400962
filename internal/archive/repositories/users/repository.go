package users

import (
	"context"

	"github.com/ticketvault/ticketvault/internal/archive/models"
)

// Table is the relational table this repository owns.
const Table = "archived_users"

type Repository interface {
	Upsert(ctx context.Context, user *models.ArchivedUser) error
	UpsertDefault(ctx context.Context, ticketID string) error
	SelectByTicket(ctx context.Context, ticketID string) ([]*models.ArchivedUser, error)
}

package roles

import (
	"context"

	"github.com/ticketvault/ticketvault/internal/archive/models"
)

// Table is the relational table this repository owns.
const Table = "archived_roles"

type Repository interface {
	Upsert(ctx context.Context, role *models.ArchivedRole) error
	SelectByTicket(ctx context.Context, ticketID string) ([]*models.ArchivedRole, error)
}

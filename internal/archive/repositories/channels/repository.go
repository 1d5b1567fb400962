package channels

import (
	"context"

	"github.com/ticketvault/ticketvault/internal/archive/models"
)

// Table is the relational table this repository owns.
const Table = "archived_channels"

type Repository interface {
	Upsert(ctx context.Context, channel *models.ArchivedChannel) error
	SelectByTicket(ctx context.Context, ticketID string) ([]*models.ArchivedChannel, error)
}

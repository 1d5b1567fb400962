package messages

import (
	"context"

	"github.com/ticketvault/ticketvault/internal/archive/models"
)

// Table is the relational table this repository owns.
const Table = "archived_messages"

type Repository interface {
	Upsert(ctx context.Context, msg *models.ArchivedMessage) error
	Get(ctx context.Context, id string) (*models.ArchivedMessage, error)
	SelectByTicket(ctx context.Context, ticketID string) ([]*models.ArchivedMessage, error)
}

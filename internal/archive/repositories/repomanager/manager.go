// Package repomanager wires the archive repositories to one database
// connection and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/ticketvault/ticketvault/internal/archive/repositories/channels"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/messages"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/roles"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/users"
)

type RepositoryManager interface {
	Conn() *sql.DB
	Messages() messages.Repository
	Users() users.Repository
	Roles() roles.Repository
	Channels() channels.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}

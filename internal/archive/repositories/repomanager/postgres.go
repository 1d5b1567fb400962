package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ticketvault/ticketvault/internal/archive/migrations"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/channels"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/messages"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/roles"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
	db       *sql.DB
	messages messages.Repository
	users    users.Repository
	roles    roles.Repository
	channels channels.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Messages() messages.Repository {
	return m.messages
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) Roles() roles.Repository {
	return m.roles
}

func (m *PostgresRepositoryManager) Channels() channels.Repository {
	return m.channels
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

// NewPostgresRepositoryManager opens the database, builds the repositories
// and applies pending migrations.
func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return newMigratedManager(db)
}

// newMigratedManager wraps db and applies pending migrations, closing db
// when migration fails so the caller does not leak the connection pool.
func newMigratedManager(db *sql.DB) (RepositoryManager, error) {
	m := NewRepositoryManagerWithDB(db)

	if err := m.RunMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

// NewRepositoryManagerWithDB builds a manager over an already-open database
// without touching the schema. Used by tests running against sqlite.
func NewRepositoryManagerWithDB(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{
		db:       db,
		messages: messages.NewPostgresRepository(db),
		users:    users.NewPostgresRepository(db),
		roles:    roles.NewPostgresRepository(db),
		channels: channels.NewPostgresRepository(db),
	}
}

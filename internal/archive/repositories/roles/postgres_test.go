package roles

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ticketvault/ticketvault/internal/archive/models"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`
		CREATE TABLE archived_roles (
			ticket_id TEXT NOT NULL,
			role_id TEXT NOT NULL,
			name TEXT NOT NULL,
			colour TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (ticket_id, role_id)
		);
	`)
	require.NoError(t, err)
	return db
}

func TestUpsert_InsertThenUpdateInPlace(t *testing.T) {
	db := setupDB(t, "roles_upsert")
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.ArchivedRole{TicketID: "T1", RoleID: "R1", Name: "Red", Colour: "ff0000"}))
	require.NoError(t, repo.Upsert(ctx, &models.ArchivedRole{TicketID: "T1", RoleID: "R1", Name: "Crimson", Colour: "dc143c"}))

	rows, err := repo.SelectByTicket(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Crimson", rows[0].Name)
	require.Equal(t, "dc143c", rows[0].Colour)
}

func TestSelectByTicket_ScopedToTicket(t *testing.T) {
	db := setupDB(t, "roles_scope")
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.ArchivedRole{TicketID: "T1", RoleID: "R1", Name: "Red"}))
	require.NoError(t, repo.Upsert(ctx, &models.ArchivedRole{TicketID: "T2", RoleID: "R1", Name: "Blue"}))

	rows, err := repo.SelectByTicket(ctx, "T2")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Blue", rows[0].Name)
}

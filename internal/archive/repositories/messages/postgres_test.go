package messages

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/ticketvault/ticketvault/internal/archive/models"
	"github.com/ticketvault/ticketvault/internal/common"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`
		CREATE TABLE archived_messages (
			id TEXT PRIMARY KEY,
			ticket_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			content BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL,
			edited BOOLEAN NOT NULL DEFAULT FALSE,
			external BOOLEAN NOT NULL DEFAULT FALSE
		);
	`)
	require.NoError(t, err)
	return db
}

func TestUpsert_InsertThenUpdateInPlace(t *testing.T) {
	db := setupDB(t, "messages_upsert")
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Second)

	m := &models.ArchivedMessage{
		ID:        "M1",
		TicketID:  "T1",
		AuthorID:  "U1",
		Content:   []byte("enc-1"),
		CreatedAt: created,
	}
	require.NoError(t, repo.Upsert(ctx, m))

	m2 := *m
	m2.Content = []byte("enc-2")
	m2.Edited = true
	require.NoError(t, repo.Upsert(ctx, &m2))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM archived_messages`).Scan(&n))
	require.Equal(t, 1, n)

	got, err := repo.Get(ctx, "M1")
	require.NoError(t, err)
	require.Equal(t, []byte("enc-2"), got.Content)
	require.True(t, got.Edited)
	require.Equal(t, created.Unix(), got.CreatedAt.Unix())
}

func TestGet_NotFound(t *testing.T) {
	db := setupDB(t, "messages_get")
	repo := NewPostgresRepository(db)

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSelectByTicket_OrderedByCreation(t *testing.T) {
	db := setupDB(t, "messages_order")
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Upsert(ctx, &models.ArchivedMessage{
		ID: "M2", TicketID: "T1", AuthorID: "U1", Content: []byte("b"), CreatedAt: base.Add(time.Minute),
	}))
	require.NoError(t, repo.Upsert(ctx, &models.ArchivedMessage{
		ID: "M1", TicketID: "T1", AuthorID: "U1", Content: []byte("a"), CreatedAt: base,
	}))
	require.NoError(t, repo.Upsert(ctx, &models.ArchivedMessage{
		ID: "M3", TicketID: "T2", AuthorID: "U1", Content: []byte("c"), CreatedAt: base,
	}))

	rows, err := repo.SelectByTicket(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "M1", rows[0].ID)
	require.Equal(t, "M2", rows[1].ID)
}

func TestUpsert_QueryShape(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	q := regexp.MustCompile(`INSERT INTO archived_messages .* ON CONFLICT \(id\).*DO UPDATE SET.*content = EXCLUDED\.content`)
	created := time.Now()

	mock.ExpectExec(q.String()).
		WithArgs("M1", "T1", "U1", []byte("enc"), created, false, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), &models.ArchivedMessage{
		ID: "M1", TicketID: "T1", AuthorID: "U1", Content: []byte("enc"),
		CreatedAt: created, External: true,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

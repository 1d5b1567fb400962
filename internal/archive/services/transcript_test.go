package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ticketvault/ticketvault/internal/archive/archiver"
	"github.com/ticketvault/ticketvault/internal/archive/event"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/repomanager"
	"github.com/ticketvault/ticketvault/internal/common"
	"github.com/ticketvault/ticketvault/internal/cryptox"
	"github.com/ticketvault/ticketvault/internal/logging"
	"github.com/ticketvault/ticketvault/internal/workerpool"
	_ "modernc.org/sqlite"
)

type stubResolver struct{}

func (stubResolver) ResolveMember(ctx context.Context, guildID, userID string) (*event.Member, error) {
	return nil, common.ErrorNotFound
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupTranscriptDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:transcript_export?mode=memory&cache=shared")
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
		CREATE TABLE archived_users (
			ticket_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			username BLOB,
			display_name BLOB,
			avatar TEXT NOT NULL DEFAULT '',
			bot BOOLEAN NOT NULL DEFAULT FALSE,
			discriminator TEXT NOT NULL DEFAULT '',
			role_id TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (ticket_id, user_id)
		);
		CREATE TABLE archived_roles (
			ticket_id TEXT NOT NULL,
			role_id TEXT NOT NULL,
			name TEXT NOT NULL,
			colour TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (ticket_id, role_id)
		);
		CREATE TABLE archived_channels (
			ticket_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (ticket_id, channel_id)
		);
	`)
	require.NoError(t, err)
	return db
}

func newExportWorkers(t *testing.T) *workerpool.Registry[*cryptox.Cipher] {
	t.Helper()
	workers, err := archiver.NewCryptoWorkers([]byte("test-passphrase"), []byte("test-salt"), 2)
	require.NoError(t, err)
	t.Cleanup(workers.Close)
	return workers
}

func TestExport_RoundTrip(t *testing.T) {
	db := setupTranscriptDB(t)
	workers := newExportWorkers(t)
	ctx := context.Background()

	member := &event.Member{
		User:        event.User{ID: "U1", Username: "alice", Discriminator: "0001"},
		DisplayName: "Alice the Helper",
		Roles: []event.Role{
			{ID: "R1", Name: "Support", Colour: "#00ff00", Position: 2, Hoisted: true},
		},
	}
	created := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	edited := created.Add(time.Minute)

	a := archiver.New(db, workers, stubResolver{}, testLogger(), false)
	_, err := a.ArchiveMessage(ctx, "T1", &event.Message{
		ID:      "M1",
		GuildID: "G1",
		Author:  member.User,
		Member:  member,
		Content: "first reply",
		Mentions: event.Mentions{
			Channels: []event.Channel{{ID: "C1", Name: "general"}},
		},
		CreatedAt: created,
	}, false)
	require.NoError(t, err)

	_, err = a.ArchiveMessage(ctx, "T1", &event.Message{
		ID:        "M2",
		GuildID:   "G1",
		Author:    member.User,
		Member:    member,
		Content:   "second reply, edited",
		CreatedAt: created.Add(time.Second),
		EditedAt:  &edited,
	}, false)
	require.NoError(t, err)

	// a second ticket must stay out of the export
	_, err = a.ArchiveMessage(ctx, "T2", &event.Message{
		ID:        "M3",
		GuildID:   "G1",
		Author:    member.User,
		Member:    member,
		Content:   "other ticket",
		CreatedAt: created,
	}, false)
	require.NoError(t, err)

	svc := NewTranscriptService(repomanager.NewRepositoryManagerWithDB(db), workers, testLogger())
	tr, err := svc.Export(ctx, "T1")
	require.NoError(t, err)

	require.Equal(t, "T1", tr.TicketID)

	require.Len(t, tr.Users, 1)
	u := tr.Users["U1"]
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "Alice the Helper", u.DisplayName)
	require.Equal(t, "0001", u.Discriminator)
	require.NotNil(t, u.Role)
	require.Equal(t, "Support", u.Role.Name)
	require.Equal(t, "00ff00", u.Role.Colour)

	require.Len(t, tr.Channels, 1)
	require.Equal(t, "C1", tr.Channels[0].ChannelID)
	require.Equal(t, "general", tr.Channels[0].Name)

	require.Len(t, tr.Messages, 2)
	require.Equal(t, "M1", tr.Messages[0].ID)
	require.Equal(t, "first reply", tr.Messages[0].Payload.Content)
	require.Equal(t, "2025-06-01T12:30:00Z", tr.Messages[0].CreatedAt)
	require.False(t, tr.Messages[0].Edited)
	require.Equal(t, "M2", tr.Messages[1].ID)
	require.True(t, tr.Messages[1].Edited)
}

func TestExport_SentinelUserStaysOpaque(t *testing.T) {
	db := setupTranscriptDB(t)
	workers := newExportWorkers(t)
	ctx := context.Background()

	a := archiver.New(db, workers, stubResolver{}, testLogger(), false)
	_, err := a.ArchiveMessage(ctx, "T9", &event.Message{
		ID:        "M1",
		GuildID:   "G1",
		Author:    event.User{ID: "U-gone"},
		Content:   "author left the guild",
		CreatedAt: time.Now().UTC(),
	}, false)
	require.NoError(t, err)

	svc := NewTranscriptService(repomanager.NewRepositoryManagerWithDB(db), workers, testLogger())
	tr, err := svc.Export(ctx, "T9")
	require.NoError(t, err)

	require.Len(t, tr.Users, 1)
	u, ok := tr.Users["default"]
	require.True(t, ok)
	require.Empty(t, u.Username)
	require.Empty(t, u.DisplayName)
	require.Nil(t, u.Role)

	require.Len(t, tr.Messages, 1)
	require.Equal(t, "U-gone", tr.Messages[0].AuthorID)
	require.Equal(t, "author left the guild", tr.Messages[0].Payload.Content)
}

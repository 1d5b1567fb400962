// Package services contains the read side of the archive (transcript
// export) and the attachment object store. Both sit outside the archival
// core: they consume what the archiver persisted.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ticketvault/ticketvault/internal/archive/archiver"
	"github.com/ticketvault/ticketvault/internal/archive/models"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/repomanager"
	"github.com/ticketvault/ticketvault/internal/cryptox"
	"github.com/ticketvault/ticketvault/internal/logging"
	"github.com/ticketvault/ticketvault/internal/workerpool"
)

// TranscriptUser is a decrypted archived user.
type TranscriptUser struct {
	UserID        string                `json:"user_id"`
	Username      string                `json:"username,omitempty"`
	DisplayName   string                `json:"display_name,omitempty"`
	Avatar        string                `json:"avatar,omitempty"`
	Bot           bool                  `json:"bot"`
	Discriminator string                `json:"discriminator,omitempty"`
	Role          *models.ArchivedRole  `json:"role,omitempty"`
}

// TranscriptMessage is a decrypted archived message.
type TranscriptMessage struct {
	ID        string                `json:"id"`
	AuthorID  string                `json:"author_id"`
	Payload   models.MessagePayload `json:"payload"`
	CreatedAt string                `json:"created_at"`
	Edited    bool                  `json:"edited"`
	External  bool                  `json:"external"`
}

// Transcript is a fully decrypted, render-ready view of one ticket archive.
type Transcript struct {
	TicketID string                    `json:"ticket_id"`
	Users    map[string]TranscriptUser `json:"users"`
	Channels []*models.ArchivedChannel `json:"channels,omitempty"`
	Messages []TranscriptMessage       `json:"messages"`
}

// TranscriptService loads a ticket's archive and decrypts it for rendering
// or export. Decryption runs through the same pooled crypto workers the
// archiver writes with.
type TranscriptService struct {
	rm      repomanager.RepositoryManager
	workers *workerpool.Registry[*cryptox.Cipher]
	log     logging.Logger
}

func NewTranscriptService(rm repomanager.RepositoryManager, workers *workerpool.Registry[*cryptox.Cipher], log logging.Logger) *TranscriptService {
	return &TranscriptService{
		rm:      rm,
		workers: workers,
		log:     log.With("module", "transcript"),
	}
}

// Export returns the decrypted transcript of ticketID, messages ordered by
// creation time.
func (s *TranscriptService) Export(ctx context.Context, ticketID string) (*Transcript, error) {
	w, err := s.workers.Acquire(ctx, archiver.CryptoWorkerKind)
	if err != nil {
		return nil, fmt.Errorf("acquire crypto worker: %w", err)
	}
	defer w.Release()
	c := w.Value()

	rows, err := s.rm.Messages().SelectByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	userRows, err := s.rm.Users().SelectByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	roleRows, err := s.rm.Roles().SelectByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	channelRows, err := s.rm.Channels().SelectByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}

	rolesByID := make(map[string]*models.ArchivedRole, len(roleRows))
	for _, r := range roleRows {
		rolesByID[r.RoleID] = r
	}

	t := &Transcript{
		TicketID: ticketID,
		Users:    make(map[string]TranscriptUser, len(userRows)),
		Channels: channelRows,
		Messages: make([]TranscriptMessage, 0, len(rows)),
	}

	for _, u := range userRows {
		tu := TranscriptUser{
			UserID:        u.UserID,
			Avatar:        u.Avatar,
			Bot:           u.Bot,
			Discriminator: u.Discriminator,
			Role:          rolesByID[u.RoleID],
		}
		if u.Username != nil {
			if tu.Username, err = c.DecryptString(u.Username); err != nil {
				return nil, fmt.Errorf("decrypt username of %s: %w", u.UserID, err)
			}
		}
		if u.DisplayName != nil {
			if tu.DisplayName, err = c.DecryptString(u.DisplayName); err != nil {
				return nil, fmt.Errorf("decrypt display name of %s: %w", u.UserID, err)
			}
		}
		t.Users[u.UserID] = tu
	}

	for _, m := range rows {
		var payload models.MessagePayload
		if err := c.DecryptJSON(m.Content, &payload); err != nil {
			return nil, fmt.Errorf("decrypt message %s: %w", m.ID, err)
		}
		t.Messages = append(t.Messages, TranscriptMessage{
			ID:        m.ID,
			AuthorID:  m.AuthorID,
			Payload:   payload,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
			Edited:    m.Edited,
			External:  m.External,
		})
	}

	return t, nil
}

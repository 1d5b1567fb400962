package archiver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ticketvault/ticketvault/internal/archive/event"
	"github.com/ticketvault/ticketvault/internal/archive/models"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/channels"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/messages"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/roles"
	"github.com/ticketvault/ticketvault/internal/archive/repositories/users"
	"github.com/ticketvault/ticketvault/internal/cryptox"
	"github.com/ticketvault/ticketvault/internal/dbx"
)

// planOp is one idempotent upsert, addressed by its natural key.
type planOp struct {
	table string
	key   string
	apply func(ctx context.Context, tx dbx.DBTX) error
}

// plan is an ordered set of upserts with at most one op per (table, key).
// Adding an existing key replaces the op in place, so the last computed
// attributes win while the original position is kept.
type plan struct {
	ops   []planOp
	index map[[2]string]int
}

func newPlan() *plan {
	return &plan{index: make(map[[2]string]int)}
}

func (p *plan) add(table, key string, apply func(ctx context.Context, tx dbx.DBTX) error) {
	k := [2]string{table, key}
	if i, ok := p.index[k]; ok {
		p.ops[i].apply = apply
		return
	}
	p.index[k] = len(p.ops)
	p.ops = append(p.ops, planOp{table: table, key: key, apply: apply})
}

// buildPlan turns a resolved message into upsert operations and the message
// snapshot that commit will persist. Every sensitive field is encrypted here
// with the pooled cipher; any encryption failure aborts the whole plan.
//
// Role ops are added before user ops so the user→role reference is always
// satisfied within the transaction.
func buildPlan(ticketID string, msg *event.Message, res resolution, c *cryptox.Cipher, external bool) (*plan, *models.ArchivedMessage, error) {
	p := newPlan()

	if res.sentinel {
		p.add(users.Table, models.DefaultUserID, func(ctx context.Context, tx dbx.DBTX) error {
			return users.NewPostgresRepository(tx).UpsertDefault(ctx, ticketID)
		})
	}

	for _, r := range res.roles {
		role := &models.ArchivedRole{
			TicketID: ticketID,
			RoleID:   r.ID,
			Name:     r.Name,
			Colour:   strings.TrimPrefix(r.Colour, "#"),
		}
		p.add(roles.Table, role.RoleID, func(ctx context.Context, tx dbx.DBTX) error {
			return roles.NewPostgresRepository(tx).Upsert(ctx, role)
		})
	}

	for _, m := range res.members {
		user, err := archivedUser(ticketID, msg.GuildID, m, c)
		if err != nil {
			return nil, nil, fmt.Errorf("encrypt user %s: %w", m.User.ID, err)
		}
		p.add(users.Table, user.UserID, func(ctx context.Context, tx dbx.DBTX) error {
			return users.NewPostgresRepository(tx).Upsert(ctx, user)
		})
	}

	for _, ch := range res.channels {
		channel := &models.ArchivedChannel{
			TicketID:  ticketID,
			ChannelID: ch.ID,
			Name:      ch.Name,
		}
		p.add(channels.Table, channel.ChannelID, func(ctx context.Context, tx dbx.DBTX) error {
			return channels.NewPostgresRepository(tx).Upsert(ctx, channel)
		})
	}

	snapshot, err := archivedMessage(ticketID, msg, res.authorID, c, external)
	if err != nil {
		return nil, nil, fmt.Errorf("encrypt message %s: %w", msg.ID, err)
	}
	p.add(messages.Table, snapshot.ID, func(ctx context.Context, tx dbx.DBTX) error {
		return messages.NewPostgresRepository(tx).Upsert(ctx, snapshot)
	})

	return p, snapshot, nil
}

// archivedUser copies the member's scalar attributes into an owned row,
// encrypting the username and, when it differs from the username, the
// display name.
func archivedUser(ticketID, guildID string, m event.Member, c *cryptox.Cipher) (*models.ArchivedUser, error) {
	username, err := c.EncryptString(m.User.Username)
	if err != nil {
		return nil, err
	}

	var displayName []byte
	if m.DisplayName != "" && m.DisplayName != m.User.Username {
		displayName, err = c.EncryptString(m.DisplayName)
		if err != nil {
			return nil, err
		}
	}

	avatar := m.Avatar
	if avatar == "" {
		avatar = m.User.Avatar
	}

	return &models.ArchivedUser{
		TicketID:      ticketID,
		UserID:        m.User.ID,
		Username:      username,
		DisplayName:   displayName,
		Avatar:        avatar,
		Bot:           m.User.Bot,
		Discriminator: m.User.Discriminator,
		RoleID:        m.HoistedRole(guildID).ID,
	}, nil
}

// archivedMessage serializes the structured payload and encrypts it as one
// blob.
func archivedMessage(ticketID string, msg *event.Message, authorID string, c *cryptox.Cipher, external bool) (*models.ArchivedMessage, error) {
	var reference *string
	if msg.Reference != "" {
		reference = &msg.Reference
	}

	payload := models.MessagePayload{
		Attachments: msg.Attachments,
		Components:  msg.Components,
		Content:     msg.Content,
		Embeds:      msg.Embeds,
		Reference:   reference,
	}

	content, err := c.EncryptJSON(payload)
	if err != nil {
		return nil, err
	}

	return &models.ArchivedMessage{
		ID:        msg.ID,
		TicketID:  ticketID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: msg.CreatedAt,
		Edited:    msg.EditedAt != nil,
		External:  external,
	}, nil
}

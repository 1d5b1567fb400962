package archiver

import (
	"context"

	"github.com/ticketvault/ticketvault/internal/archive/event"
	"github.com/ticketvault/ticketvault/internal/archive/models"
)

// resolution is the set of entities one message references. Members, roles
// and channels are deduplicated by id; for a duplicate the later attributes
// replace the earlier ones and the original position is kept.
type resolution struct {
	authorID string
	sentinel bool
	members  []event.Member
	roles    []event.Role
	channels []event.Channel
}

// resolveEntities extracts every entity the message references: mentioned
// channels, members and roles, plus the acting member and its hoisted role.
//
// When the event carries no resolved member, the member is looked up by the
// author id. Lookup failure is not fatal: the sentinel default user row is
// archived in place of a real user row, while the message keeps the author
// id it arrived with. Only a message with no author id at all is attributed
// to the sentinel.
func (a *Archiver) resolveEntities(ctx context.Context, msg *event.Message) resolution {
	member := msg.Member
	if member == nil && msg.Author.ID != "" {
		m, err := a.members.ResolveMember(ctx, msg.GuildID, msg.Author.ID)
		if err != nil {
			a.log.Debug(ctx, "failed to fetch member",
				"user_id", msg.Author.ID, "guild_id", msg.GuildID, "error", err)
		} else {
			member = m
		}
	}

	res := resolution{authorID: msg.Author.ID}
	if res.authorID == "" {
		res.authorID = models.DefaultUserID
	}

	for _, c := range msg.Mentions.Channels {
		res.addChannel(c)
	}
	for _, m := range msg.Mentions.Members {
		res.addMember(m, msg.GuildID)
	}
	for _, r := range msg.Mentions.Roles {
		res.addRole(r)
	}

	if member != nil {
		res.addMember(*member, msg.GuildID)
	} else {
		a.log.Warn(ctx, "message member does not exist",
			"message_id", msg.ID, "user_id", msg.Author.ID)
		res.sentinel = true
	}

	return res
}

// addMember records the member and its hoisted role, so every archived user
// row has a matching role row in the same ticket.
func (r *resolution) addMember(m event.Member, guildID string) {
	for i := range r.members {
		if r.members[i].User.ID == m.User.ID {
			r.members[i] = m
			r.addRole(m.HoistedRole(guildID))
			return
		}
	}
	r.members = append(r.members, m)
	r.addRole(m.HoistedRole(guildID))
}

func (r *resolution) addRole(role event.Role) {
	for i := range r.roles {
		if r.roles[i].ID == role.ID {
			r.roles[i] = role
			return
		}
	}
	r.roles = append(r.roles, role)
}

func (r *resolution) addChannel(c event.Channel) {
	for i := range r.channels {
		if r.channels[i].ID == c.ID {
			r.channels[i] = c
			return
		}
	}
	r.channels = append(r.channels, c)
}

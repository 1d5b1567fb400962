// Package event defines the owned value types the archiver copies out of a
// live chat message before anything is encrypted or persisted. The platform
// client hands over references with lifetimes it controls; everything here
// is a plain value snapshot, safe to keep after the originals are gone.
package event

import (
	"context"
	"time"
)

type User struct {
	ID            string
	Username      string
	Discriminator string
	Avatar        string
	Bot           bool
}

type Role struct {
	ID       string
	Name     string
	Colour   string // hex, may carry a leading '#'
	Position int
	Hoisted  bool
}

type Channel struct {
	ID   string
	Name string
}

// Member is a user in the context of one guild, with per-guild display name,
// avatar override and role set.
type Member struct {
	User        User
	DisplayName string
	Avatar      string // member-level avatar override, may be empty
	Roles       []Role
}

// EveryoneRole returns the guild default role. Its id equals the guild id.
func EveryoneRole(guildID string) Role {
	return Role{ID: guildID, Name: "@everyone", Colour: "#000000"}
}

// HoistedRole returns the member's highest-positioned role flagged as
// hoisted, falling back to the guild default role when none is.
func (m *Member) HoistedRole(guildID string) Role {
	var best *Role
	for i := range m.Roles {
		r := &m.Roles[i]
		if !r.Hoisted {
			continue
		}
		if best == nil || r.Position > best.Position {
			best = r
		}
	}
	if best == nil {
		return EveryoneRole(guildID)
	}
	return *best
}

type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Colour      int          `json:"colour,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type Component struct {
	Type     string `json:"type"`
	Label    string `json:"label,omitempty"`
	CustomID string `json:"custom_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

type Mentions struct {
	Channels []Channel
	Members  []Member
	Roles    []Role
}

// Message is one inbound message event, already copied to owned values.
// Member is the resolved acting member when the platform delivered one;
// nil means the archiver should try to resolve it itself.
type Message struct {
	ID          string
	GuildID     string
	Author      User
	Member      *Member
	Content     string
	Mentions    Mentions
	Attachments []Attachment
	Embeds      []Embed
	Components  []Component
	Reference   string // replied-to message id, empty when none
	CreatedAt   time.Time
	EditedAt    *time.Time
}

// MemberResolver looks up a guild member when the message event arrived
// without one. Implementations return common.ErrorNotFound (or any error)
// when the user is not, or no longer, a member; the archiver treats every
// failure as non-fatal.
type MemberResolver interface {
	ResolveMember(ctx context.Context, guildID, userID string) (*Member, error)
}

// Package models defines the persisted archive rows and the structured
// payload that is encrypted into a message row.
package models

import (
	"time"

	"github.com/ticketvault/ticketvault/internal/archive/event"
)

// DefaultUserID identifies the sentinel row archived in place of an author
// that could not be resolved to a guild member. At most one such row exists
// per ticket.
const DefaultUserID = "default"

// ArchivedMessage is one captured message. Content holds the encrypted
// MessagePayload; ids, timestamps and flags stay in clear.
type ArchivedMessage struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   []byte
	CreatedAt time.Time
	Edited    bool
	External  bool
}

// ArchivedUser is a captured guild member, keyed by (ticket, user).
// Username and DisplayName are encrypted; both are nil on the sentinel
// default row, and DisplayName is nil when it does not differ from the
// username.
type ArchivedUser struct {
	TicketID      string
	UserID        string
	Username      []byte
	DisplayName   []byte
	Avatar        string
	Bot           bool
	Discriminator string
	RoleID        string
}

// ArchivedRole is a captured role, keyed by (ticket, role). Colour is hex
// without a leading '#'.
type ArchivedRole struct {
	TicketID string
	RoleID   string
	Name     string
	Colour   string
}

// ArchivedChannel is a channel that was mentioned in a captured message.
type ArchivedChannel struct {
	TicketID  string
	ChannelID string
	Name      string
}

// MessagePayload is the cleartext structure serialized and encrypted into
// ArchivedMessage.Content. The shape is fixed so serialization of a given
// message is deterministic.
type MessagePayload struct {
	Attachments []event.Attachment `json:"attachments"`
	Components  []event.Component  `json:"components"`
	Content     string             `json:"content"`
	Embeds      []event.Embed      `json:"embeds"`
	Reference   *string            `json:"reference"`
}

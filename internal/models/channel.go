package models

import "strings"

// ChannelKind tells how a join link for the channel is produced.
type ChannelKind string

const (
	ChannelPublic  ChannelKind = "public"
	ChannelPrivate ChannelKind = "private"
)

// Channel maps to the `channels` table and to entries of channels.json.
// ID is either an @username or a numeric -100… chat id.
type Channel struct {
	Seq  uint        `gorm:"column:seq;primaryKey;autoIncrement" json:"-"`
	ID   string      `gorm:"column:channel_id;size:200;uniqueIndex" json:"id"`
	Kind ChannelKind `gorm:"column:kind;size:20" json:"type"`
}

func (Channel) TableName() string {
	return "channels"
}

// InferChannelKind returns public for @usernames and private for everything else.
func InferChannelKind(id string) ChannelKind {
	if strings.HasPrefix(strings.TrimSpace(id), "@") {
		return ChannelPublic
	}
	return ChannelPrivate
}

// PublicURL returns the t.me link for an @username channel, or "" when the
// id is numeric and an invite link has to be resolved instead.
func (c Channel) PublicURL() string {
	id := strings.TrimSpace(c.ID)
	if !strings.HasPrefix(id, "@") || len(id) == 1 {
		return ""
	}
	return "https://t.me/" + id[1:]
}

// InviteLink caches the resolved join URL of a private channel.
type InviteLink struct {
	ChannelID string `gorm:"column:channel_id;primaryKey;size:200" json:"channel_id"`
	URL       string `gorm:"column:url;size:500" json:"url"`
}

func (InviteLink) TableName() string {
	return "invite_links"
}

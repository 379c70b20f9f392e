package reactions

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ResolutionError reports a failure to resolve a partial event payload.
type ResolutionError struct {
	Kind string // "message" or "member"
	ID   string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// PartialMessage is a message reference from a gateway event. Resolve
// fetches the full message on first use.
type PartialMessage struct {
	ChannelID string
	MessageID string

	resolved *discordgo.Message
}

func (p *PartialMessage) Resolve(d Discord) (*discordgo.Message, error) {
	if p.resolved != nil {
		return p.resolved, nil
	}
	msg, err := d.ChannelMessage(p.ChannelID, p.MessageID)
	if err != nil {
		return nil, &ResolutionError{Kind: "message", ID: p.MessageID, Err: err}
	}
	p.resolved = msg
	return msg, nil
}

// PartialMember is a guild member reference from a gateway event. Reaction
// add events usually carry the member inline; remove events never do.
type PartialMember struct {
	GuildID string
	UserID  string

	resolved *discordgo.Member
}

func (p *PartialMember) Resolve(d Discord) (*discordgo.Member, error) {
	if p.resolved != nil {
		return p.resolved, nil
	}
	member, err := d.GuildMember(p.GuildID, p.UserID)
	if err != nil {
		return nil, &ResolutionError{Kind: "member", ID: p.UserID, Err: err}
	}
	p.resolved = member
	return member, nil
}

// unknownMessage reports whether err is the platform telling us the carrier
// message no longer exists, which marks the rule as stale.
func unknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeUnknownMessage
	}
	return false
}

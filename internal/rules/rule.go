package rules

// Type is the exclusivity policy of a reaction rule.
type Type string

const (
	// TypeStandard grants and revokes roles independently per emoji.
	TypeStandard Type = "STANDARD"
	// TypeUnique allows a member to hold at most one role from the rule;
	// picking a new emoji revokes the previous role and reaction.
	TypeUnique Type = "UNIQUE"
)

// ValidType reports whether t is a recognized rule type.
func ValidType(t Type) bool {
	return t == TypeStandard || t == TypeUnique
}

// EmojiRole binds one emoji on the carrier message to one guild role.
type EmojiRole struct {
	Emoji  string `json:"emoji"`
	RoleID string `json:"role_id"`
}

// Rule maps the reactions on a carrier message to guild roles.
type Rule struct {
	GuildID    string      `json:"guild_id"`
	ChannelID  string      `json:"channel_id"`
	MessageID  string      `json:"message_id"`
	Type       Type        `json:"type"`
	EmojiRoles []EmojiRole `json:"emoji_roles"`
}

// RoleFor returns the role bound to emoji, if any.
func (r *Rule) RoleFor(emoji string) (string, bool) {
	for _, er := range r.EmojiRoles {
		if er.Emoji == emoji {
			return er.RoleID, true
		}
	}
	return "", false
}

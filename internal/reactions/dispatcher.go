// Package reactions translates reaction gateway events into role grants and
// revocations according to the registered reaction rules.
package reactions

import (
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/yone9212/momijibot/internal/rules"
)

// Dispatcher consumes reaction-added and reaction-removed events, resolves
// partial payloads and applies role mutations.
type Dispatcher struct {
	discord Discord
	index   *rules.Index
	selfID  func() string
	locks   *messageLocks
}

// NewDispatcher creates a Dispatcher. selfID returns the bot's own user ID
// (empty until the session is ready).
func NewDispatcher(discord Discord, index *rules.Index, selfID func() string) *Dispatcher {
	return &Dispatcher{
		discord: discord,
		index:   index,
		selfID:  selfID,
		locks:   newMessageLocks(),
	}
}

// HandleAdd processes a reaction-added event.
func (d *Dispatcher) HandleAdd(e *discordgo.MessageReactionAdd) {
	if e.GuildID == "" || e.UserID == d.selfID() {
		return
	}

	unlock := d.locks.lock(e.MessageID)
	defer unlock()

	rule, ok := d.index.Lookup(e.MessageID)
	if !ok {
		return
	}

	msg := &PartialMessage{ChannelID: e.ChannelID, MessageID: e.MessageID}
	if _, err := msg.Resolve(d.discord); err != nil {
		d.dropUnresolved(rule, err)
		return
	}

	emoji := e.Emoji.APIName()
	roleID, ok := rule.RoleFor(emoji)
	if !ok {
		return
	}

	if !d.roleExists(rule.GuildID, roleID) {
		log.Printf("Role %s is not found in guild %s", roleID, rule.GuildID)
		return
	}

	actor := &PartialMember{GuildID: rule.GuildID, UserID: e.UserID, resolved: e.Member}
	member, err := actor.Resolve(d.discord)
	if err != nil {
		log.Printf("Error fetching member: %v", err)
		return
	}
	if member.User != nil && member.User.Bot {
		return
	}

	if rule.Type == rules.TypeUnique {
		d.enforceExclusivity(rule, e.UserID, member.Roles, emoji, roleID)
	}

	if err := d.discord.GuildMemberRoleAdd(rule.GuildID, e.UserID, roleID); err != nil {
		log.Printf("Error adding role %s to user %s: %v", roleID, e.UserID, err)
		d.revertGrant(rule, emoji, e.UserID)
		return
	}
}

// HandleRemove processes a reaction-removed event.
func (d *Dispatcher) HandleRemove(e *discordgo.MessageReactionRemove) {
	if e.GuildID == "" || e.UserID == d.selfID() {
		return
	}

	unlock := d.locks.lock(e.MessageID)
	defer unlock()

	rule, ok := d.index.Lookup(e.MessageID)
	if !ok {
		return
	}

	msg := &PartialMessage{ChannelID: e.ChannelID, MessageID: e.MessageID}
	if _, err := msg.Resolve(d.discord); err != nil {
		d.dropUnresolved(rule, err)
		return
	}

	roleID, ok := rule.RoleFor(e.Emoji.APIName())
	if !ok {
		return
	}

	if !d.roleExists(rule.GuildID, roleID) {
		log.Printf("Role %s is not found in guild %s", roleID, rule.GuildID)
		return
	}

	actor := &PartialMember{GuildID: rule.GuildID, UserID: e.UserID}
	member, err := actor.Resolve(d.discord)
	if err != nil {
		log.Printf("Error fetching member: %v", err)
		return
	}
	if member.User != nil && member.User.Bot {
		return
	}

	if err := d.discord.GuildMemberRoleRemove(rule.GuildID, e.UserID, roleID); err != nil {
		log.Printf("Error removing role %s from user %s: %v", roleID, e.UserID, err)
	}
}

// enforceExclusivity retracts the actor's other bound reactions and revokes
// the other bound roles the member holds. Both batches are best effort:
// each failure is logged and the remaining items still run.
func (d *Dispatcher) enforceExclusivity(rule *rules.Rule, userID string, memberRoles []string, emoji, roleID string) {
	held := make(map[string]bool, len(memberRoles))
	for _, id := range memberRoles {
		held[id] = true
	}

	var wg sync.WaitGroup
	for _, er := range rule.EmojiRoles {
		if er.Emoji != emoji {
			wg.Add(1)
			go func(er rules.EmojiRole) {
				defer wg.Done()
				d.retractReaction(rule, er.Emoji, userID)
			}(er)
		}
		if er.RoleID != roleID && held[er.RoleID] {
			held[er.RoleID] = false
			wg.Add(1)
			go func(er rules.EmojiRole) {
				defer wg.Done()
				if err := d.discord.GuildMemberRoleRemove(rule.GuildID, userID, er.RoleID); err != nil {
					log.Printf("Error removing role %s from user %s: %v", er.RoleID, userID, err)
				}
			}(er)
		}
	}
	wg.Wait()
}

// retractReaction removes the actor's reaction for one emoji, if present.
func (d *Dispatcher) retractReaction(rule *rules.Rule, emoji, userID string) {
	users, err := d.discord.MessageReactions(rule.ChannelID, rule.MessageID, emoji, 100, "", "")
	if err != nil {
		log.Printf("Error fetching reactions for %s on message %s: %v", emoji, rule.MessageID, err)
		return
	}
	for _, u := range users {
		if u.ID == userID {
			if err := d.discord.MessageReactionRemove(rule.ChannelID, rule.MessageID, emoji, userID); err != nil {
				log.Printf("Error removing reaction %s by user %s: %v", emoji, userID, err)
			}
			return
		}
	}
}

// revertGrant compensates for a failed role grant: the triggering reaction
// is retracted and a notice is posted to the carrier channel.
func (d *Dispatcher) revertGrant(rule *rules.Rule, emoji, userID string) {
	if err := d.discord.MessageReactionRemove(rule.ChannelID, rule.MessageID, emoji, userID); err != nil {
		log.Printf("Error retracting reaction %s by user %s: %v", emoji, userID, err)
	}

	notice := fmt.Sprintf("<@%s> I could not assign that role. Make sure my highest role is above the target role and that I have the Manage Roles permission.", userID)
	if _, err := d.discord.ChannelMessageSend(rule.ChannelID, notice); err != nil {
		log.Printf("Error sending grant failure notice: %v", err)
	}
}

func (d *Dispatcher) roleExists(guildID, roleID string) bool {
	roles, err := d.discord.GuildRoles(guildID)
	if err != nil {
		log.Printf("Error fetching roles for guild %s: %v", guildID, err)
		return false
	}
	for _, role := range roles {
		if role.ID == roleID {
			return true
		}
	}
	return false
}

// dropUnresolved logs a resolution failure. A missing carrier message means
// the rule is stale, so it is removed from the index.
func (d *Dispatcher) dropUnresolved(rule *rules.Rule, err error) {
	if unknownMessage(err) {
		log.Printf("Carrier message %s is gone, dropping stale rule", rule.MessageID)
		d.index.Remove(rule.MessageID)
		return
	}
	log.Printf("Error fetching reaction message: %v", err)
}

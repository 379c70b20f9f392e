package bot

import (
	"context"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/yone9212/momijibot/internal/backend"
)

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Logged in as %s", event.User.Username)

	if err := s.UpdateWatchStatus(0, "/help"); err != nil {
		log.Printf("Failed to set activity: %v", err)
	}

	guildIDs := make([]string, 0, len(event.Guilds))
	for _, guild := range event.Guilds {
		guildIDs = append(guildIDs, guild.ID)
		if err := b.registerGuildCommands(guild.ID); err != nil {
			log.Printf("Failed to register commands for guild %s: %v", guild.ID, err)
		}
	}

	go b.sync.Load(context.Background(), guildIDs)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	if err := b.registerGuildCommands(event.ID); err != nil {
		log.Printf("Failed to register commands for guild %s: %v", event.ID, err)
	}

	guild := backend.Guild{ID: event.ID, Name: event.Name, BotJoined: true}
	if event.Icon != "" {
		icon := event.Icon
		guild.Icon = &icon
	}
	if err := b.store.PutGuild(context.Background(), guild); err != nil {
		log.Printf("Failed to record guild %s as joined: %v", event.ID, err)
		return
	}
	log.Printf("Guild available/joined: %s (id=%s)", event.Name, event.ID)
}

func (b *Bot) onGuildDelete(s *discordgo.Session, event *discordgo.GuildDelete) {
	// Outages also fire GuildDelete; only real removals count.
	if event.Unavailable {
		return
	}

	guild := backend.Guild{ID: event.ID, BotJoined: false}
	if err := b.store.PutGuild(context.Background(), guild); err != nil {
		log.Printf("Failed to record guild %s as left: %v", event.ID, err)
		return
	}
	log.Printf("Left guild %s", event.ID)
}

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, event *discordgo.GuildMemberAdd) {
	go b.sendWelcomeMessage(s, event.Member)
	go b.grantAutoRoles(event.Member)
}

func (b *Bot) onGuildMemberRemove(s *discordgo.Session, event *discordgo.GuildMemberRemove) {
	go b.sendLeaveMessage(s, event.Member)
}

func (b *Bot) sendWelcomeMessage(s *discordgo.Session, member *discordgo.Member) {
	msg, err := b.store.WelcomeMessage(context.Background(), member.GuildID)
	if err != nil {
		log.Printf("Failed to get welcome message for guild %s: %v", member.GuildID, err)
		return
	}
	if msg == nil {
		return
	}

	content := renderTemplate(msg.Message, member.User, b.guildName(s, member.GuildID))
	if _, err := s.ChannelMessageSend(msg.Channel.ID, content); err != nil {
		log.Printf("Failed to send welcome message in %s: %v", msg.Channel.ID, err)
	}
}

func (b *Bot) sendLeaveMessage(s *discordgo.Session, member *discordgo.Member) {
	msg, err := b.store.LeaveMessage(context.Background(), member.GuildID)
	if err != nil {
		log.Printf("Failed to get leave message for guild %s: %v", member.GuildID, err)
		return
	}
	if msg == nil {
		return
	}

	content := renderTemplate(msg.Message, member.User, b.guildName(s, member.GuildID))
	if _, err := s.ChannelMessageSend(msg.Channel.ID, content); err != nil {
		log.Printf("Failed to send leave message in %s: %v", msg.Channel.ID, err)
	}
}

func (b *Bot) grantAutoRoles(member *discordgo.Member) {
	roles, err := b.store.AutoRoles(context.Background(), member.GuildID)
	if err != nil {
		log.Printf("Failed to get auto roles for guild %s: %v", member.GuildID, err)
		return
	}

	for _, role := range roles {
		if err := b.session.GuildMemberRoleAdd(member.GuildID, member.User.ID, role.ID); err != nil {
			log.Printf("Failed to auto-assign role %s to %s: %v", role.ID, member.User.ID, err)
		}
	}
}

func (b *Bot) guildName(s *discordgo.Session, guildID string) string {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		guild, err = s.Guild(guildID)
		if err != nil {
			return ""
		}
	}
	return guild.Name
}

func renderTemplate(template string, user *discordgo.User, serverName string) string {
	r := strings.NewReplacer(
		"{mention}", "<@"+user.ID+">",
		"{username}", user.Username,
		"{server_name}", serverName,
	)
	return r.Replace(template)
}

func (b *Bot) onMessageReactionAdd(s *discordgo.Session, event *discordgo.MessageReactionAdd) {
	b.dispatcher.HandleAdd(event)
}

func (b *Bot) onMessageReactionRemove(s *discordgo.Session, event *discordgo.MessageReactionRemove) {
	b.dispatcher.HandleRemove(event)
}

func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	// Only the bot leaving (or being moved out of) a channel matters here.
	if event.UserID != b.SelfID() {
		return
	}
	if event.ChannelID == "" {
		b.voice.HandleDisconnect(event.GuildID)
	}
}

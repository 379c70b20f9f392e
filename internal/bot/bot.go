package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/yone9212/momijibot/internal/backend"
	"github.com/yone9212/momijibot/internal/commands"
	"github.com/yone9212/momijibot/internal/config"
	"github.com/yone9212/momijibot/internal/media"
	"github.com/yone9212/momijibot/internal/reactions"
	"github.com/yone9212/momijibot/internal/rules"
	"github.com/yone9212/momijibot/internal/voice"
)

type Bot struct {
	session    *discordgo.Session
	store      *backend.Client
	index      *rules.Index
	sync       *rules.Synchronizer
	dispatcher *reactions.Dispatcher
	voice      *voice.Manager
	resolver   media.Resolver
	library    *media.Library
}

func New(cfg *config.Config, store *backend.Client, index *rules.Index) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session:  session,
		store:    store,
		index:    index,
		sync:     rules.NewSynchronizer(index, store, session),
		voice:    voice.NewManager(voice.NewDiscordJoiner(session)),
		resolver: media.NewFFmpeg(cfg.FFmpegPath),
		library:  media.NewLibrary(cfg.SoundsDir),
	}
	bot.dispatcher = reactions.NewDispatcher(session, index, bot.SelfID)

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onGuildDelete)
	session.AddHandler(bot.onGuildMemberAdd)
	session.AddHandler(bot.onGuildMemberRemove)
	session.AddHandler(bot.onMessageReactionAdd)
	session.AddHandler(bot.onMessageReactionRemove)
	session.AddHandler(bot.onVoiceStateUpdate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions

	// Keep carrier messages around so reaction events resolve from cache.
	session.State.MaxMessageCount = 500

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	log.Println("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

// Session exposes the underlying discord session for the control-plane API.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// SelfID returns the bot's own user ID once the session is ready.
func (b *Bot) SelfID() string {
	if b.session.State.User == nil {
		return ""
	}
	return b.session.State.User.ID
}

func (b *Bot) registerGuildCommands(guildID string) error {
	_, err := b.session.ApplicationCommandBulkOverwrite(b.SelfID(), guildID, commands.GetCommands())
	if err != nil {
		return err
	}
	log.Printf("Registered application commands for guild %s", guildID)
	return nil
}

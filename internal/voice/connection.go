package voice

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ErrConnectionDestroyed is returned by WriteOpus once the connection has
// been torn down.
var ErrConnectionDestroyed = errors.New("voice connection destroyed")

// Connection is a guild voice connection as seen by the playback manager.
type Connection interface {
	// ChannelID is the voice channel the connection joined.
	ChannelID() string
	// Destroyed reports whether Destroy has been called.
	Destroyed() bool
	// Destroy tears the connection down. Safe to call more than once.
	Destroy()
	// Speaking toggles the speaking indicator.
	Speaking(b bool) error
	// WriteOpus sends one encoded audio frame.
	WriteOpus(frame []byte) error
}

// Joiner joins a guild voice channel.
type Joiner func(guildID, channelID string) (Connection, error)

type discordConnection struct {
	vc        *discordgo.VoiceConnection
	channelID string
	closed    chan struct{}
	closeOnce sync.Once
}

// NewDiscordJoiner returns a Joiner backed by the given session.
func NewDiscordJoiner(s *discordgo.Session) Joiner {
	return func(guildID, channelID string) (Connection, error) {
		vc, err := s.ChannelVoiceJoin(guildID, channelID, false, true)
		if err != nil {
			return nil, err
		}
		return &discordConnection{
			vc:        vc,
			channelID: channelID,
			closed:    make(chan struct{}),
		}, nil
	}
}

func (c *discordConnection) ChannelID() string {
	return c.channelID
}

func (c *discordConnection) Destroyed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *discordConnection) Destroy() {
	c.closeOnce.Do(func() {
		close(c.closed)
		// Disconnect can fail if already disconnected, but usually fine
		c.vc.Disconnect()
	})
}

func (c *discordConnection) Speaking(b bool) error {
	return c.vc.Speaking(b)
}

func (c *discordConnection) WriteOpus(frame []byte) error {
	select {
	case c.vc.OpusSend <- frame:
		return nil
	case <-c.closed:
		return ErrConnectionDestroyed
	}
}

// Package voice keeps at most one live playback session per guild and
// guarantees stream and connection teardown on every exit path.
package voice

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// session is a guild's current playback state: the audio stream feeding the
// player and the voice connection the player writes to.
type session struct {
	mu     sync.Mutex
	stream io.ReadCloser
	player *Player
	conn   Connection
}

type Manager struct {
	join     Joiner
	mu       sync.Mutex
	sessions map[string]*session
}

func NewManager(join Joiner) *Manager {
	return &Manager{
		join:     join,
		sessions: make(map[string]*session),
	}
}

func (m *Manager) sessionFor(guildID string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[guildID]
	if !ok {
		s = &session{}
		m.sessions[guildID] = s
	}
	return s
}

// Play starts or replaces playback for a guild. The previous stream is
// destroyed unconditionally; the connection is reused only when it is still
// alive and joined to the requested channel. On a join failure the incoming
// stream is closed and the registry is left unchanged.
func (m *Manager) Play(guildID, channelID string, stream io.ReadCloser) error {
	s := m.sessionFor(guildID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
	if s.player != nil {
		s.player.Stop()
		s.player = nil
	}

	conn := s.conn
	if conn != nil && (conn.Destroyed() || conn.ChannelID() != channelID) {
		conn.Destroy()
		conn = nil
		s.conn = nil
	}
	if conn == nil {
		joined, err := m.join(guildID, channelID)
		if err != nil {
			stream.Close()
			return fmt.Errorf("failed to join voice channel %s: %w", channelID, err)
		}
		conn = joined
	}

	player := newPlayer(stream, conn)
	s.stream = stream
	s.player = player
	s.conn = conn

	go player.run(func(err error) {
		if err != nil {
			log.Printf("Playback error in guild %s: %v", guildID, err)
		}
		m.finish(guildID, player)
	})

	return nil
}

// Stop tears down the guild's playback session, if any.
func (m *Manager) Stop(guildID string) {
	s := m.sessionFor(guildID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown()
}

// HandleDisconnect is called when the bot is dropped from a guild's voice
// channel. The connection is gone; the stream and player still need
// destroying.
func (m *Manager) HandleDisconnect(guildID string) {
	s := m.sessionFor(guildID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil && s.conn == nil {
		return
	}
	log.Printf("Voice disconnect in guild %s, tearing down session", guildID)
	s.teardown()
}

// finish runs once per player lifetime when the player reaches a terminal
// state. A player superseded by a newer Play call no longer owns the
// session and must not touch it.
func (m *Manager) finish(guildID string, p *Player) {
	s := m.sessionFor(guildID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != p {
		return
	}
	s.teardown()
}

// teardown destroys the session's stream, player and connection. Callers
// must hold the session lock.
func (s *session) teardown() {
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
	if s.player != nil {
		s.player.Stop()
		s.player = nil
	}
	if s.conn != nil {
		if !s.conn.Destroyed() {
			s.conn.Destroy()
		}
		s.conn = nil
	}
}

package voice

import (
	"bytes"
	"errors"
	"os"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu        sync.Mutex
	channelID string
	destroyed bool
	frames    int
}

func (c *fakeConn) ChannelID() string { return c.channelID }

func (c *fakeConn) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

func (c *fakeConn) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = true
}

func (c *fakeConn) Speaking(b bool) error { return nil }

func (c *fakeConn) WriteOpus(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrConnectionDestroyed
	}
	c.frames++
	return nil
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

type fakeJoiner struct {
	mu    sync.Mutex
	conns []*fakeConn
	err   error
}

func (j *fakeJoiner) join(guildID, channelID string) (Connection, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return nil, j.err
	}
	conn := &fakeConn{channelID: channelID}
	j.conns = append(j.conns, conn)
	return conn, nil
}

func (j *fakeJoiner) joinCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.conns)
}

type fakeStream struct {
	mu     sync.Mutex
	reader *bytes.Reader
	closed bool
}

// pcmStream returns a stream holding n full PCM frames.
func pcmStream(n int) *fakeStream {
	return &fakeStream{reader: bytes.NewReader(make([]byte, n*frameSize*channels*2))}
}

func (s *fakeStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, os.ErrClosed
	}
	return s.reader.Read(p)
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}


// blockingStream never yields data; Read blocks until the stream is closed.
// It stands in for a long-running live audio source.
type blockingStream struct {
	closed    chan struct{}
	closeOnce sync.Once
}

func newBlockingStream() *blockingStream {
	return &blockingStream{closed: make(chan struct{})}
}

func (s *blockingStream) Read(p []byte) (int, error) {
	<-s.closed
	return 0, os.ErrClosed
}

func (s *blockingStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *blockingStream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("Timed out waiting for %s", what)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPlayReusesConnectionForSameChannel(t *testing.T) {
	joiner := &fakeJoiner{}
	m := NewManager(joiner.join)

	first := newBlockingStream()
	if err := m.Play("guild1", "vc1", first); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}
	second := newBlockingStream()
	if err := m.Play("guild1", "vc1", second); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}

	if joiner.joinCount() != 1 {
		t.Errorf("Expected connection reuse, got %d joins", joiner.joinCount())
	}
	if !first.isClosed() {
		t.Error("Expected the prior stream to be destroyed")
	}
	if second.isClosed() {
		t.Error("Expected the current stream to stay open")
	}
}

func TestPlayRejoinsForDifferentChannel(t *testing.T) {
	joiner := &fakeJoiner{}
	m := NewManager(joiner.join)

	m.Play("guild1", "vc1", newBlockingStream())
	m.Play("guild1", "vc2", newBlockingStream())

	if joiner.joinCount() != 2 {
		t.Fatalf("Expected a rejoin for the new channel, got %d joins", joiner.joinCount())
	}
	if !joiner.conns[0].Destroyed() {
		t.Error("Expected the stale connection to be destroyed")
	}
	if joiner.conns[1].Destroyed() {
		t.Error("Expected the new connection to be live")
	}
}

func TestIdleTeardownAndCleanRestart(t *testing.T) {
	joiner := &fakeJoiner{}
	m := NewManager(joiner.join)

	stream := pcmStream(3)
	if err := m.Play("guild1", "vc1", stream); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}

	waitFor(t, "idle teardown", func() bool {
		return joiner.conns[0].Destroyed() && stream.isClosed()
	})
	if joiner.conns[0].frameCount() != 3 {
		t.Errorf("Expected 3 frames sent, got %d", joiner.conns[0].frameCount())
	}

	// A fresh play starts from a clean idle state with a new connection.
	if err := m.Play("guild1", "vc1", newBlockingStream()); err != nil {
		t.Fatalf("Play after teardown returned error: %v", err)
	}
	if joiner.joinCount() != 2 {
		t.Errorf("Expected a fresh join after teardown, got %d joins", joiner.joinCount())
	}
	if joiner.conns[1].Destroyed() {
		t.Error("Expected the fresh connection to be live (no stale teardown fired)")
	}
}

func TestPlayJoinFailureClosesStream(t *testing.T) {
	joiner := &fakeJoiner{err: errors.New("no permission")}
	m := NewManager(joiner.join)

	stream := pcmStream(10)
	if err := m.Play("guild1", "vc1", stream); err == nil {
		t.Fatal("Expected join failure to surface")
	}
	if !stream.isClosed() {
		t.Error("Expected the stream to be closed on join failure")
	}
}

func TestStopTearsDownSession(t *testing.T) {
	joiner := &fakeJoiner{}
	m := NewManager(joiner.join)

	stream := newBlockingStream()
	m.Play("guild1", "vc1", stream)
	m.Stop("guild1")

	if !stream.isClosed() {
		t.Error("Expected stream closed after Stop")
	}
	if !joiner.conns[0].Destroyed() {
		t.Error("Expected connection destroyed after Stop")
	}
}

func TestHandleDisconnectTearsDownSession(t *testing.T) {
	joiner := &fakeJoiner{}
	m := NewManager(joiner.join)

	stream := newBlockingStream()
	m.Play("guild1", "vc1", stream)
	m.HandleDisconnect("guild1")

	if !stream.isClosed() {
		t.Error("Expected stream closed after voice disconnect")
	}
	if !joiner.conns[0].Destroyed() {
		t.Error("Expected connection destroyed after voice disconnect")
	}

	// A disconnect with no session is a no-op.
	m.HandleDisconnect("guild2")
}

func TestGuildsAreIndependent(t *testing.T) {
	joiner := &fakeJoiner{}
	m := NewManager(joiner.join)

	m.Play("guild1", "vc1", newBlockingStream())
	m.Play("guild2", "vc9", newBlockingStream())
	m.Stop("guild1")

	if !joiner.conns[0].Destroyed() {
		t.Error("Expected guild1 connection destroyed")
	}
	if joiner.conns[1].Destroyed() {
		t.Error("Expected guild2 session to be unaffected")
	}
}

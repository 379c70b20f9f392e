package voice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"layeh.com/gopus"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// Player pulls 48kHz s16le stereo PCM from a stream, encodes it to Opus and
// writes frames to a voice connection until the stream ends, an error
// occurs or Stop is called.
type Player struct {
	stream io.Reader
	conn   Connection

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newPlayer(stream io.Reader, conn Connection) *Player {
	return &Player{
		stream: stream,
		conn:   conn,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Stop asks the player to finish. Safe to call more than once.
func (p *Player) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
}

// Done is closed once the player has fully exited.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// run plays until a terminal state and then invokes onExit exactly once.
// A nil error means the idle terminal state (stream drained or stopped).
func (p *Player) run(onExit func(err error)) {
	defer close(p.done)
	onExit(p.play())
}

func (p *Player) play() error {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	if err := p.conn.Speaking(true); err != nil {
		log.Printf("Failed to set speaking state: %v", err)
	}
	defer func() {
		if err := p.conn.Speaking(false); err != nil {
			log.Printf("Failed to clear speaking state: %v", err)
		}
	}()

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-p.stop:
			return nil
		default:
		}

		if _, err := io.ReadFull(p.stream, pcmBuf); err != nil {
			// Draining the stream or having it closed under us by a
			// replacement play are both idle exits, not errors.
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		if err := p.conn.WriteOpus(opus); err != nil {
			if errors.Is(err, ErrConnectionDestroyed) {
				return nil
			}
			return err
		}
	}
}

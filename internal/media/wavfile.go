package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
)

// Library resolves named sounds against a directory of WAV files.
type Library struct {
	dir string
}

func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Open decodes the named WAV file into a PCM stream. Files must be 48kHz
// 16-bit; mono files are upmixed to stereo.
func (l *Library) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("invalid sound name: %s", name)
	}
	if !strings.HasSuffix(name, ".wav") {
		name += ".wav"
	}

	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		return nil, fmt.Errorf("sound not found: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", name)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	if buf.Format.SampleRate != sampleRate {
		return nil, fmt.Errorf("%s has sample rate %d, need %d", name, buf.Format.SampleRate, sampleRate)
	}
	if decoder.BitDepth != 16 {
		return nil, fmt.Errorf("%s has bit depth %d, need 16", name, decoder.BitDepth)
	}

	var pcm bytes.Buffer
	switch buf.Format.NumChannels {
	case channels:
		for _, sample := range buf.Data {
			writeSample(&pcm, sample)
		}
	case 1:
		// Upmix mono by duplicating each sample into both channels.
		for _, sample := range buf.Data {
			writeSample(&pcm, sample)
			writeSample(&pcm, sample)
		}
	default:
		return nil, fmt.Errorf("%s has %d channels, need 1 or 2", name, buf.Format.NumChannels)
	}

	return io.NopCloser(bytes.NewReader(pcm.Bytes())), nil
}

func writeSample(w *bytes.Buffer, sample int) {
	var frame [2]byte
	binary.LittleEndian.PutUint16(frame[:], uint16(int16(sample)))
	w.Write(frame[:])
}

package media

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

const (
	channels   = 2
	sampleRate = 48000
)

// FFmpeg resolves URLs and file paths by shelling out to ffmpeg, which
// handles fetching and decoding and emits raw PCM on stdout.
type FFmpeg struct {
	// Path to the ffmpeg binary. Defaults to "ffmpeg" on PATH.
	Path string
}

func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{Path: path}
}

func (f *FFmpeg) Open(ctx context.Context, input string) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, f.Path,
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", input,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("command start error: %w", err)
	}

	return &processStream{reader: stdout, cmd: cmd}, nil
}

// processStream ties the decoded audio stream to the decoder process so
// closing the stream also reaps the process.
type processStream struct {
	reader io.ReadCloser
	cmd    *exec.Cmd
}

func (s *processStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *processStream) Close() error {
	s.reader.Close()
	s.cmd.Process.Kill()
	return s.cmd.Wait()
}

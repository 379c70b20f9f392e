// Package media turns playback inputs (URLs, named sounds) into raw PCM
// audio streams. Search and transcoding intelligence lives outside the bot;
// these are only the boundary adapters.
package media

import (
	"context"
	"io"
)

// A Resolver opens an input as a 48kHz signed 16-bit little-endian stereo
// PCM stream. The caller owns the returned stream and must close it.
type Resolver interface {
	Open(ctx context.Context, input string) (io.ReadCloser, error)
}

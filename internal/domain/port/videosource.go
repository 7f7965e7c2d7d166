package port

import (
	"context"
	"errors"
)

// ErrSourceUnavailable is returned by VideoSource.Open when the video cannot
// be opened or decoded. It is fatal to the whole run; no partial summary is
// produced.
var ErrSourceUnavailable = errors.New("video source unavailable")

// FrameStream is a lazy, finite, one-shot sequence of decoded frames. Next
// returns the raw bytes of the next frame (JPEG) or io.EOF when the video is
// exhausted. Close releases the underlying decoder and must be called on
// every exit path.
type FrameStream interface {
	FrameRate() float64
	Next() ([]byte, error)
	Close() error
}

// VideoSource opens a video file for sequential frame decoding.
type VideoSource interface {
	Open(ctx context.Context, path string) (FrameStream, error)
}

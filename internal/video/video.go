// Package video writes rendered frames to animation files.
package video

import (
	"context"
	"errors"
	"fmt"
	"image"
)

var (
	ErrUnknownFormat = errors.New("video: unknown format")
	ErrNoFFmpeg      = errors.New("video: ffmpeg binary not found")
	ErrClosed        = errors.New("video: encoder closed")
)

// Encoder accepts frames in display order.
type Encoder interface {
	AddFrame(img image.Image) error
	Close() error
}

type Options struct {
	FPS    int
	Width  int
	Height int
	// FFmpeg is the ffmpeg executable used by the mp4 encoder.
	FFmpeg string
}

// Ext returns the file suffix for a video format.
func Ext(format string) string {
	return "." + format
}

// Open creates an encoder for format writing to path.
func Open(ctx context.Context, format, path string, opts Options) (Encoder, error) {
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("video: fps must be positive, got %d", opts.FPS)
	}
	switch format {
	case "mp4":
		return NewFFmpeg(ctx, path, opts)
	case "avi":
		return NewMJPEG(path, opts)
	case "gif":
		return NewGIF(path, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

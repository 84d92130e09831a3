package video

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

// MJPEG writes Motion-JPEG frames into an AVI container.
type MJPEG struct {
	w      mjpeg.AviWriter
	buf    bytes.Buffer
	opts   jpeg.Options
	bounds image.Rectangle
	closed bool
}

func NewMJPEG(path string, opts Options) (*MJPEG, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("video: avi needs a frame size, got %dx%d", opts.Width, opts.Height)
	}
	w, err := mjpeg.New(path, int32(opts.Width), int32(opts.Height), int32(opts.FPS))
	if err != nil {
		return nil, fmt.Errorf("create avi: %w", err)
	}
	return &MJPEG{
		w:      w,
		opts:   jpeg.Options{Quality: 90},
		bounds: image.Rect(0, 0, opts.Width, opts.Height),
	}, nil
}

func (m *MJPEG) AddFrame(img image.Image) error {
	if m.closed {
		return ErrClosed
	}
	if img.Bounds().Size() != m.bounds.Size() {
		return fmt.Errorf("video: frame is %v, avi expects %v", img.Bounds().Size(), m.bounds.Size())
	}
	m.buf.Reset()
	if err := jpeg.Encode(&m.buf, img, &m.opts); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return m.w.AddFrame(m.buf.Bytes())
}

func (m *MJPEG) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return m.w.Close()
}

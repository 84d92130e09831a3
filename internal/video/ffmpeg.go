package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg pipes PNG frames into an external ffmpeg process that encodes
// H.264 video.
type FFmpeg struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	enc    png.Encoder
	closed bool
}

func NewFFmpeg(ctx context.Context, path string, opts Options) (*FFmpeg, error) {
	bin := opts.FFmpeg
	if bin == "" {
		bin = "ffmpeg"
	}
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFFmpeg, err)
	}

	args := []string{
		"-y", "-loglevel", "error",
		"-f", "image2pipe",
		"-framerate", strconv.Itoa(opts.FPS),
		"-c:v", "png",
		"-i", "-",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		// yuv420p needs even dimensions
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		path,
	}

	f := &FFmpeg{enc: png.Encoder{CompressionLevel: png.BestSpeed}}
	f.cmd = exec.CommandContext(ctx, resolved, args...)
	f.cmd.Stderr = &f.stderr
	f.stdin, err = f.cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := f.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return f, nil
}

func (f *FFmpeg) AddFrame(img image.Image) error {
	if f.closed {
		return ErrClosed
	}
	if err := f.enc.Encode(f.stdin, img); err != nil {
		return fmt.Errorf("write frame to ffmpeg: %w%s", err, f.detail())
	}
	return nil
}

func (f *FFmpeg) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	// always reap the process, even when the pipe fails to close
	closeErr := f.stdin.Close()
	if err := f.cmd.Wait(); err != nil {
		return errors.Join(closeErr, fmt.Errorf("ffmpeg: %w%s", err, f.detail()))
	}
	return closeErr
}

func (f *FFmpeg) detail() string {
	msg := strings.TrimSpace(f.stderr.String())
	if msg == "" {
		return ""
	}
	return ": " + msg
}

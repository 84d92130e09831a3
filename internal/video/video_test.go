package video

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidFrame(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestOpen_UnknownFormat(t *testing.T) {
	_, err := Open(context.Background(), "webm", filepath.Join(t.TempDir(), "a.webm"), Options{FPS: 10})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestOpen_RejectsZeroFPS(t *testing.T) {
	_, err := Open(context.Background(), "gif", filepath.Join(t.TempDir(), "a.gif"), Options{})
	assert.Error(t, err)
}

func TestExt(t *testing.T) {
	assert.Equal(t, ".mp4", Ext("mp4"))
	assert.Equal(t, ".avi", Ext("avi"))
	assert.Equal(t, ".gif", Ext("gif"))
}

func TestGIF_WritesAllFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	enc, err := Open(context.Background(), "gif", path, Options{FPS: 10, Width: 8, Height: 6})
	require.NoError(t, err)

	for _, c := range []color.Color{color.Black, color.White, color.RGBA{R: 255, A: 255}} {
		require.NoError(t, enc.AddFrame(solidFrame(8, 6, c)))
	}
	require.NoError(t, enc.Close())
	assert.ErrorIs(t, enc.AddFrame(solidFrame(8, 6, color.Black)), ErrClosed)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 3)
	assert.Equal(t, []int{10, 10, 10}, anim.Delay)
}

func TestMJPEG_WritesAVI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.avi")
	enc, err := Open(context.Background(), "avi", path, Options{FPS: 10, Width: 16, Height: 12})
	require.NoError(t, err)

	require.NoError(t, enc.AddFrame(solidFrame(16, 12, color.White)))
	require.NoError(t, enc.AddFrame(solidFrame(16, 12, color.Black)))
	assert.Error(t, enc.AddFrame(solidFrame(10, 10, color.Black)), "size mismatch must be rejected")
	require.NoError(t, enc.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "AVI ", string(data[8:12]))
}

func TestMJPEG_NeedsSize(t *testing.T) {
	_, err := NewMJPEG(filepath.Join(t.TempDir(), "a.avi"), Options{FPS: 10})
	assert.Error(t, err)
}

func TestFFmpeg_MissingBinary(t *testing.T) {
	_, err := Open(context.Background(), "mp4", filepath.Join(t.TempDir(), "a.mp4"), Options{
		FPS:    10,
		FFmpeg: "pinnviz-no-such-ffmpeg-binary",
	})
	assert.ErrorIs(t, err, ErrNoFFmpeg)
}

var errPipe = errors.New("pipe broken")

type failingPipe struct{}

func (failingPipe) Write(p []byte) (int, error) { return 0, errPipe }
func (failingPipe) Close() error { return errPipe }

func TestFFmpegClose_WaitsWhenPipeFails(t *testing.T) {
	// the test binary itself stands in for ffmpeg and exits right away
	cmd := exec.Command(os.Args[0], "-test.run=^$")
	require.NoError(t, cmd.Start())

	f := &FFmpeg{cmd: cmd, stdin: failingPipe{}}
	err := f.Close()
	assert.ErrorIs(t, err, errPipe)
	assert.NotNil(t, cmd.ProcessState, "process was not reaped")

	assert.NoError(t, f.Close())
}

package video

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
)

// GIF collects paletted frames and writes a looping GIF on Close.
type GIF struct {
	path   string
	delay  int
	anim   gif.GIF
	closed bool
}

func NewGIF(path string, opts Options) *GIF {
	delay := 100 / opts.FPS
	if delay < 1 {
		delay = 1
	}
	return &GIF{path: path, delay: delay, anim: gif.GIF{LoopCount: 0}}
}

func (g *GIF) AddFrame(img image.Image) error {
	if g.closed {
		return ErrClosed
	}
	pimg := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), img, img.Bounds().Min)
	g.anim.Image = append(g.anim.Image, pimg)
	g.anim.Delay = append(g.anim.Delay, g.delay)
	return nil
}

func (g *GIF) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	f, err := os.Create(g.path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &g.anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

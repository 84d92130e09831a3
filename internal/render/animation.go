package render

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/san-kum/pinnviz/internal/colormap"
	"github.com/san-kum/pinnviz/internal/field"
	"github.com/san-kum/pinnviz/internal/video"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Frames are rasterized at screen resolution, independent of figure DPI.
const animationDPI = 100

// FrameCount returns how many frames the animation renders for a grid with
// nt time steps. Without clamping, asking for more frames than nt fails.
func FrameCount(requested, nt int, clamp bool) (int, error) {
	if requested <= nt {
		return requested, nil
	}
	if clamp {
		return nt, nil
	}
	return 0, fmt.Errorf("animation needs %d frames but grid has %d time steps: %w", requested, nt, field.ErrIndexOutOfRange)
}

// frameSize is the pixel size of an animation frame.
func (r *Renderer) frameSize() (int, int) {
	a := r.cfg.Animation
	w, h := a.Width, a.Height
	if w <= 0 {
		w = int(math.Round(r.cfg.WidthInches * animationDPI))
	}
	if h <= 0 {
		h = int(math.Round(r.cfg.HeightInches * animationDPI))
	}
	return w, h
}

type frameRenderer struct {
	truth, pred *field.Grid
	cm          *colormap.Jet
	w, h        vg.Length
}

func newFrameRenderer(truth, pred *field.Grid, predMin, predMax float64, wpx, hpx int) *frameRenderer {
	return &frameRenderer{
		truth: truth,
		pred:  pred,
		cm:    colormap.NewJet(predMin, predMax),
		w:     vg.Length(wpx) / animationDPI * vg.Inch,
		h:     vg.Length(hpx) / animationDPI * vg.Inch,
	}
}

// render draws ground truth and prediction for time index k side by side
// under a shared colorbar.
func (fr *frameRenderer) render(k int) (image.Image, error) {
	truth, err := fr.truth.Frame(k)
	if err != nil {
		return nil, err
	}
	pred, err := fr.pred.Frame(k)
	if err != nil {
		return nil, err
	}

	c := vgimg.NewWith(vgimg.UseWH(fr.w, fr.h), vgimg.UseDPI(animationDPI))
	dc := draw.New(c)
	superTitle(dc, fmt.Sprintf("Time %dms", k))

	body, strip := splitColorBar(draw.Crop(dc, 0, 0, 0, -vg.Points(24)))
	tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Millimeter * 3}
	heatPlot(truth, fr.cm, "Ground Truth", "", "").Draw(tiles.At(body, 0, 0))
	heatPlot(pred, fr.cm, "Prediction", "", "").Draw(tiles.At(body, 1, 0))
	colorBarPlot(fr.cm, "V").Draw(strip)

	return c.Image(), nil
}

// Animation writes "<prefix>_New_2D_Animation.<video>". Frames are rendered
// by a bounded worker group and handed to the encoder in order.
func (r *Renderer) Animation(ctx context.Context, vsav *field.Grid, rec *field.Reconstruction) (string, int, error) {
	a := r.cfg.Animation
	n, err := FrameCount(a.Frames(), vsav.Shape().NT, a.Clamp)
	if err != nil {
		return "", 0, err
	}
	if rec.Pred.Shape() != vsav.Shape() {
		return "", 0, fmt.Errorf("prediction %s vs ground truth %s: %w", rec.Pred.Shape(), vsav.Shape(), field.ErrShapeMismatch)
	}

	wpx, hpx := r.frameSize()
	fr := newFrameRenderer(vsav, rec.Pred, rec.PredMin, rec.PredMax, wpx, hpx)

	path := ArtifactPath(r.cfg.Prefix, AnimationName, video.Ext(a.Video))
	if err := ensureDir(path); err != nil {
		return "", 0, err
	}
	enc, err := video.Open(ctx, a.Video, path, video.Options{
		FPS:    a.FPS,
		Width:  wpx,
		Height: hpx,
		FFmpeg: a.FFmpeg,
	})
	if err != nil {
		return "", 0, err
	}

	workers := max(a.Workers, 1)
	batch := workers * 4
	for start := 0; start < n; start += batch {
		end := min(start+batch, n)
		imgs := make([]image.Image, end-start)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for k := start; k < end; k++ {
			k := k
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				img, err := fr.render(k)
				if err != nil {
					return fmt.Errorf("frame %d: %w", k, err)
				}
				imgs[k-start] = img
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			enc.Close()
			return "", 0, err
		}

		for i, img := range imgs {
			if err := enc.AddFrame(img); err != nil {
				enc.Close()
				return "", 0, fmt.Errorf("frame %d: %w", start+i, err)
			}
		}
		if end%500 == 0 || end == n {
			Logf("animation: %d/%d frames", end, n)
		}
	}

	if err := enc.Close(); err != nil {
		return "", 0, err
	}
	return path, n, nil
}

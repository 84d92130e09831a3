package render

import (
	"context"
	"image/gif"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/pinnviz/internal/config"
	"github.com/san-kum/pinnviz/internal/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestMain(m *testing.M) {
	SetLogger(nil)
	os.Exit(m.Run())
}

// wave builds a ground-truth field with a pulse travelling along x and a
// prediction offset from it. Every trainEvery-th point is observed.
func wave(shape field.Shape, trainEvery int) Input {
	vsav := field.NewGrid(shape)
	for x := 0; x < shape.NX; x++ {
		for y := 0; y < shape.NY; y++ {
			for t := 0; t < shape.NT; t++ {
				phase := float64(t) - 2*float64(x) - 0.5*float64(y)
				vsav.Set(x, y, t, -80+100*math.Exp(-phase*phase/8))
			}
		}
	}

	var in Input
	in.Vsav = vsav
	for x := 0; x < shape.NX; x++ {
		for y := 0; y < shape.NY; y++ {
			for t := 0; t < shape.NT; t++ {
				// (y, t, x) columns walk the grid in row-major order under the default key
				coord := []float64{float64(y), float64(t), float64(x)}
				v := vsav.At(x, y, t)
				if (x+y+t)%trainEvery == 0 {
					in.Train.Coords = append(in.Train.Coords, coord)
					in.Train.Values = append(in.Train.Values, v)
				} else {
					in.Test.Coords = append(in.Test.Coords, coord)
					in.Test.Values = append(in.Test.Values, v+5)
				}
			}
		}
	}
	in.AllT = make([]float64, shape.NT)
	for t := range in.AllT {
		in.AllT[t] = float64(t)
	}
	return in
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Prefix = filepath.Join(t.TempDir(), "out", "run")
	cfg.Format = "png"
	cfg.DPI = 30
	return cfg
}

func TestPlotResults_WritesFigures(t *testing.T) {
	shape := field.Shape{NX: 8, NY: 6, NT: 20}
	in := wave(shape, 4)
	cfg := testConfig(t)

	r, err := New(cfg)
	require.NoError(t, err)

	rep, err := r.PlotResults(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, shape, rep.Shape)
	assert.Equal(t, 6, rep.CellX)
	assert.Equal(t, 4, rep.CellY)
	assert.Equal(t, 13, rep.SnapshotFrame)
	assert.Equal(t, 0, rep.Frames)
	require.Equal(t, []string{
		cfg.Prefix + "_Action_Potential.png",
		cfg.Prefix + "_Snapshot_2.png",
	}, rep.Artifacts)

	for _, path := range rep.Artifacts {
		f, err := os.Open(path)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err, path)
		assert.Equal(t, 192, img.Bounds().Dx(), path)
		assert.Equal(t, 144, img.Bounds().Dy(), path)
	}

	assert.InDelta(t, 5.0, rep.Metrics["max_abs"], 1e-9)
	assert.Greater(t, rep.Observed, 0)
}

func TestPlotResults_DefaultTIFF(t *testing.T) {
	in := wave(field.Shape{NX: 4, NY: 4, NT: 10}, 3)
	cfg := testConfig(t)
	cfg.Format = "tiff"
	cfg.DPI = 20

	r, err := New(cfg)
	require.NoError(t, err)
	rep, err := r.PlotResults(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, rep.Artifacts, 2)
	assert.True(t, strings.HasSuffix(rep.Artifacts[0], "_Action_Potential.tiff"))
	assert.True(t, strings.HasSuffix(rep.Artifacts[1], "_Snapshot_2.tiff"))

	f, err := os.Open(rep.Artifacts[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := tiff.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 96, img.Bounds().Dy())
}

func TestPlotResults_VectorFormat(t *testing.T) {
	in := wave(field.Shape{NX: 4, NY: 3, NT: 6}, 2)
	cfg := testConfig(t)
	cfg.Format = "svg"

	r, err := New(cfg)
	require.NoError(t, err)
	rep, err := r.PlotResults(context.Background(), in)
	require.NoError(t, err)

	data, err := os.ReadFile(rep.Artifacts[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestPlotResults_BoundsComeFromPrediction(t *testing.T) {
	in := wave(field.Shape{NX: 5, NY: 5, NT: 12}, 3)
	in.Train.Values[0] = 1000

	r, err := New(testConfig(t))
	require.NoError(t, err)
	rep, err := r.PlotResults(context.Background(), in)
	require.NoError(t, err)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range in.Test.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	assert.Equal(t, lo, rep.PredMin)
	assert.Equal(t, hi, rep.PredMax)
	assert.Less(t, rep.PredMax, 1000.0)
}

func TestPlotResults_ShapeErrors(t *testing.T) {
	r, err := New(testConfig(t))
	require.NoError(t, err)

	in := wave(field.Shape{NX: 4, NY: 4, NT: 8}, 2)
	in.Test.Coords = in.Test.Coords[1:]
	in.Test.Values = in.Test.Values[1:]
	_, err = r.PlotResults(context.Background(), in)
	assert.ErrorIs(t, err, field.ErrShapeMismatch)

	in = wave(field.Shape{NX: 4, NY: 4, NT: 8}, 2)
	in.AllT = in.AllT[:5]
	_, err = r.PlotResults(context.Background(), in)
	assert.ErrorIs(t, err, field.ErrShapeMismatch)

	_, err = r.PlotResults(context.Background(), Input{})
	assert.Error(t, err)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DPI = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestActionPotentialSeries(t *testing.T) {
	shape := field.Shape{NX: 4, NY: 8, NT: 10}
	in := wave(shape, 3)

	r, err := New(testConfig(t))
	require.NoError(t, err)
	rec, err := r.Reconstruct(in)
	require.NoError(t, err)

	s, err := ActionPotentialSeries(in.Vsav, rec, in.AllT, 0.75)
	require.NoError(t, err)
	assert.Equal(t, 3, s.CellX)
	assert.Equal(t, 6, s.CellY)
	assert.Equal(t, "Action Potential at (3, 6) node", s.Title())
	require.Len(t, s.Truth, shape.NT)
	require.Len(t, s.Pred, shape.NT)

	var wantObserved int
	for tt := 0; tt < shape.NT; tt++ {
		if (3+6+tt)%3 == 0 {
			wantObserved++
		}
		assert.Equal(t, in.Vsav.At(3, 6, tt), s.Truth[tt].Y)
	}
	assert.Len(t, s.Observed, wantObserved)
	for _, o := range s.Observed {
		assert.NotEqual(t, field.Sentinel, o.Y)
		assert.Equal(t, in.Vsav.At(3, 6, int(o.X)), o.Y)
	}
}

func TestActionPotentialSeries_NilTimeAxis(t *testing.T) {
	in := wave(field.Shape{NX: 2, NY: 2, NT: 5}, 2)
	rec, err := field.DefaultReorderer().Reorder(in.Vsav.Shape(), in.Train, in.Test)
	require.NoError(t, err)

	s, err := ActionPotentialSeries(in.Vsav, rec, nil, 0.75)
	require.NoError(t, err)
	assert.Len(t, s.Truth, 5)
}

func TestAnimation_GIF(t *testing.T) {
	shape := field.Shape{NX: 6, NY: 5, NT: 20}
	in := wave(shape, 3)
	cfg := testConfig(t)
	cfg.Animation.Enabled = true
	cfg.Animation.Video = "gif"
	cfg.Animation.Seconds = 1
	cfg.Animation.Workers = 3
	cfg.Animation.Width = 400
	cfg.Animation.Height = 300

	r, err := New(cfg)
	require.NoError(t, err)
	rep, err := r.PlotResults(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 10, rep.Frames)
	path := rep.Artifacts[len(rep.Artifacts)-1]
	assert.Equal(t, cfg.Prefix+"_New_2D_Animation.gif", path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	require.Len(t, anim.Image, 10)
	assert.Equal(t, 400, anim.Image[0].Bounds().Dx())
	assert.Equal(t, 300, anim.Image[0].Bounds().Dy())
}

func TestAnimation_TooManyFrames(t *testing.T) {
	in := wave(field.Shape{NX: 4, NY: 4, NT: 8}, 2)
	cfg := testConfig(t)
	cfg.Animation.Enabled = true
	cfg.Animation.Video = "gif"
	cfg.Animation.Seconds = 1

	r, err := New(cfg)
	require.NoError(t, err)
	_, err = r.PlotResults(context.Background(), in)
	assert.ErrorIs(t, err, field.ErrIndexOutOfRange)

	_, statErr := os.Stat(cfg.Prefix + "_New_2D_Animation.gif")
	assert.True(t, os.IsNotExist(statErr), "no video should be written")
}

func TestAnimation_CanceledContext(t *testing.T) {
	in := wave(field.Shape{NX: 4, NY: 4, NT: 30}, 2)
	cfg := testConfig(t)
	cfg.Animation.Enabled = true
	cfg.Animation.Video = "gif"
	cfg.Animation.Seconds = 2

	r, err := New(cfg)
	require.NoError(t, err)
	rec, err := r.Reconstruct(in)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = r.Animation(ctx, in.Vsav, rec)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlotResults_HTML(t *testing.T) {
	in := wave(field.Shape{NX: 5, NY: 4, NT: 10}, 2)
	cfg := testConfig(t)
	cfg.HTML = true

	r, err := New(cfg)
	require.NoError(t, err)
	rep, err := r.PlotResults(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, rep.Artifacts, 4)
	ap, err := os.ReadFile(cfg.Prefix + "_Action_Potential.html")
	require.NoError(t, err)
	assert.Contains(t, string(ap), "Ground Truth")
	assert.Contains(t, string(ap), "Observed")

	snap, err := os.ReadFile(cfg.Prefix + "_Snapshot_2.html")
	require.NoError(t, err)
	assert.Contains(t, string(snap), "Prediction at 0.006s")
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		requested, nt int
		clamp         bool
		want          int
		wantErr       bool
	}{
		{5000, 6000, false, 5000, false},
		{5000, 5000, false, 5000, false},
		{5000, 100, true, 100, false},
		{5000, 100, false, 0, true},
	}

	for _, tt := range tests {
		got, err := FrameCount(tt.requested, tt.nt, tt.clamp)
		if tt.wantErr {
			assert.ErrorIs(t, err, field.ErrIndexOutOfRange)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSnapshotFrameAndTitle(t *testing.T) {
	assert.Equal(t, 130, SnapshotFrame(field.Shape{NX: 1, NY: 1, NT: 200}, 0.65))
	assert.Equal(t, 6, SnapshotFrame(field.Shape{NX: 1, NY: 1, NT: 10}, 0.65))
	assert.Equal(t, "Prediction at 0.13s", SnapshotTitle(130))
	assert.Equal(t, "Prediction at 0.0s", SnapshotTitle(0))
	assert.Equal(t, "Prediction at 1.5s", SnapshotTitle(1500))
}

func TestArtifactPath(t *testing.T) {
	assert.Equal(t, "out/heart_Action_Potential.tiff", ArtifactPath("out/heart", ActionPotentialName, FormatExt("tiff")))
	assert.Equal(t, "x_New_2D_Animation.mp4", ArtifactPath("x", AnimationName, ".mp4"))
}

func TestInspectMatchesPlotResults(t *testing.T) {
	in := wave(field.Shape{NX: 8, NY: 6, NT: 20}, 4)
	cfg := testConfig(t)

	r, err := New(cfg)
	require.NoError(t, err)

	insp, err := r.Inspect(in)
	require.NoError(t, err)
	_, statErr := os.Stat(cfg.Prefix + "_Action_Potential.png")
	assert.True(t, os.IsNotExist(statErr), "inspect must not write files")

	rep, err := r.PlotResults(context.Background(), in)
	require.NoError(t, err)

	got := *insp.Report
	got.Artifacts = rep.Artifacts
	assert.Equal(t, *rep, got)
	assert.Equal(t, insp.Rec.ObservedCount(), rep.Observed)
	assert.Len(t, insp.Series.Truth, 20)
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, format)
	})
	Logf("frame %d", 1)
	assert.Equal(t, []string{"frame %d"}, lines)

	SetLogger(nil)
	Logf("dropped")
	assert.Len(t, lines, 1)
}

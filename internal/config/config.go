package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/san-kum/pinnviz/internal/field"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFormat        = "tiff"
	DefaultDPI           = 500
	DefaultWidthInches   = 6.4
	DefaultHeightInches  = 4.8
	DefaultCellFraction  = 0.75
	DefaultFrameFraction = 0.65
	DefaultFPS           = 10
	DefaultSeconds       = 500
	DefaultVideo         = "mp4"
	DefaultFFmpeg        = "ffmpeg"
	DefaultColormap      = "jet"
)

var (
	Formats      = []string{"tiff", "png", "jpg", "svg", "pdf"}
	VideoFormats = []string{"mp4", "avi", "gif"}
	Colormaps    = []string{"jet"}
)

type Config struct {
	Prefix          string                `yaml:"prefix"`
	Format          string                `yaml:"format"`
	DPI             int                   `yaml:"dpi"`
	WidthInches     float64               `yaml:"width_in"`
	HeightInches    float64               `yaml:"height_in"`
	Colormap        string                `yaml:"colormap"`
	HTML            bool                  `yaml:"html"`
	ActionPotential ActionPotentialConfig `yaml:"action_potential"`
	Snapshot        SnapshotConfig        `yaml:"snapshot"`
	Animation       AnimationConfig       `yaml:"animation"`
	Reorder         ReorderConfig         `yaml:"reorder"`
}

type ActionPotentialConfig struct {
	CellFraction float64 `yaml:"cell_fraction"`
}

type SnapshotConfig struct {
	TimeFraction float64 `yaml:"time_fraction"`
}

type AnimationConfig struct {
	Enabled bool    `yaml:"enabled"`
	FPS     int     `yaml:"fps"`
	Seconds float64 `yaml:"duration_s"`
	Video   string  `yaml:"video"`
	FFmpeg  string  `yaml:"ffmpeg"`
	Clamp   bool    `yaml:"clamp"`
	Workers int     `yaml:"workers"`
	// Frame size in pixels; zero derives it from the figure size at 100 DPI.
	Width  int `yaml:"width_px"`
	Height int `yaml:"height_px"`
}

type ReorderConfig struct {
	SortColumns []int   `yaml:"sort_columns"`
	Sentinel    float64 `yaml:"sentinel"`
}

func DefaultConfig() *Config {
	return &Config{
		Prefix:       "pinn",
		Format:       DefaultFormat,
		DPI:          DefaultDPI,
		WidthInches:  DefaultWidthInches,
		HeightInches: DefaultHeightInches,
		Colormap:     DefaultColormap,
		ActionPotential: ActionPotentialConfig{
			CellFraction: DefaultCellFraction,
		},
		Snapshot: SnapshotConfig{
			TimeFraction: DefaultFrameFraction,
		},
		Animation: AnimationConfig{
			FPS:     DefaultFPS,
			Seconds: DefaultSeconds,
			Video:   DefaultVideo,
			FFmpeg:  DefaultFFmpeg,
			Workers: 1,
		},
		Reorder: ReorderConfig{
			SortColumns: slices.Clone(field.DefaultSortColumns),
			Sentinel:    field.Sentinel,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a yaml file on top of base. Keys missing from the file keep
// base's values; base itself is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("unknown format %q (available: %v)", c.Format, Formats)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.WidthInches <= 0 || c.HeightInches <= 0 {
		return fmt.Errorf("figure size must be positive, got %gx%g in", c.WidthInches, c.HeightInches)
	}
	if !slices.Contains(Colormaps, c.Colormap) {
		return fmt.Errorf("unknown colormap %q (available: %v)", c.Colormap, Colormaps)
	}
	if err := checkFraction("action_potential.cell_fraction", c.ActionPotential.CellFraction); err != nil {
		return err
	}
	if err := checkFraction("snapshot.time_fraction", c.Snapshot.TimeFraction); err != nil {
		return err
	}
	if err := field.ValidateSortColumns(c.Reorder.SortColumns); err != nil {
		return fmt.Errorf("reorder: %w", err)
	}
	if !c.Animation.Enabled {
		return nil
	}
	if c.Animation.FPS <= 0 {
		return fmt.Errorf("animation fps must be positive, got %d", c.Animation.FPS)
	}
	if c.Animation.Seconds <= 0 {
		return fmt.Errorf("animation duration must be positive, got %g", c.Animation.Seconds)
	}
	if !slices.Contains(VideoFormats, c.Animation.Video) {
		return fmt.Errorf("unknown video format %q (available: %v)", c.Animation.Video, VideoFormats)
	}
	if c.Animation.Workers < 1 {
		return fmt.Errorf("animation workers must be at least 1, got %d", c.Animation.Workers)
	}
	return nil
}

func checkFraction(name string, v float64) error {
	if v < 0 || v >= 1 {
		return fmt.Errorf("%s must be in [0, 1), got %g", name, v)
	}
	return nil
}

// Frames is the number of animation frames: fps times duration.
func (a AnimationConfig) Frames() int {
	return int(float64(a.FPS) * a.Seconds)
}

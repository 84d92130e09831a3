package config

import (
	"slices"
	"sort"
)

// Presets are partial configurations layered over DefaultConfig.
var Presets = map[string]func(*Config){
	"publication": func(c *Config) {
		c.Format = "tiff"
		c.DPI = 500
	},
	"draft": func(c *Config) {
		c.Format = "png"
		c.DPI = 100
	},
	"preview": func(c *Config) {
		c.Format = "png"
		c.DPI = 72
		c.HTML = true
		c.Animation.Enabled = true
		c.Animation.Video = "gif"
		c.Animation.Seconds = 10
		c.Animation.Clamp = true
	},
	"movie": func(c *Config) {
		c.Animation.Enabled = true
		c.Animation.Video = "avi"
		c.Animation.Clamp = true
	},
}

// GetPreset returns DefaultConfig with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// Apply layers the named preset onto cfg. It reports whether the preset exists.
func Apply(cfg *Config, name string) bool {
	apply, ok := Presets[name]
	if ok {
		apply(cfg)
	}
	return ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Reorder.SortColumns = slices.Clone(c.Reorder.SortColumns)
	return &out
}

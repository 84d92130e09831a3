package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/pinnviz/internal/config"
	"github.com/san-kum/pinnviz/internal/dataset"
	"github.com/san-kum/pinnviz/internal/render"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario is a list of datasets to render in one go
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	// directory of the scenario file; relative inputs resolve against it
	dir string
}

// ScenarioStep renders one dataset. Zero fields keep the base configuration.
type ScenarioStep struct {
	Input     string `yaml:"input"`
	Prefix    string `yaml:"prefix"`
	Preset    string `yaml:"preset"`
	Format    string `yaml:"format"`
	DPI       int    `yaml:"dpi"`
	HTML      *bool  `yaml:"html"`
	Animation *bool  `yaml:"animation"`
	Video     string `yaml:"video"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyScenario)
	}
	for i, step := range scenario.Steps {
		if step.Input == "" {
			return nil, fmt.Errorf("%s: step %d has no input", path, i+1)
		}
	}
	scenario.dir = filepath.Dir(path)
	return &scenario, nil
}

// InputPath resolves the step's input against the scenario file.
func (s *Scenario) InputPath(step ScenarioStep) string {
	if filepath.IsAbs(step.Input) || s.dir == "" {
		return step.Input
	}
	return filepath.Join(s.dir, step.Input)
}

// Config layers the step's preset and fields onto base. override, when set,
// runs last so command line flags still win over the step.
func (step ScenarioStep) Config(base *config.Config, override func(*config.Config)) (*config.Config, error) {
	cfg := base.Clone()
	if step.Preset != "" && !config.Apply(cfg, step.Preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", step.Preset, config.ListPresets())
	}
	if step.Prefix != "" {
		cfg.Prefix = step.Prefix
	}
	if step.Format != "" {
		cfg.Format = step.Format
	}
	if step.DPI != 0 {
		cfg.DPI = step.DPI
	}
	if step.HTML != nil {
		cfg.HTML = *step.HTML
	}
	if step.Animation != nil {
		cfg.Animation.Enabled = *step.Animation
	}
	if step.Video != "" {
		cfg.Animation.Video = step.Video
	}
	if override != nil {
		override(cfg)
	}
	return cfg, cfg.Validate()
}

type StepResult struct {
	Input  string
	Config *config.Config
	Report *render.Report
}

// RunScenario renders every step in order and stops at the first failure.
// override is passed to ScenarioStep.Config. onStep, when set, sees each
// result as soon as it is ready.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, override func(*config.Config), onStep func(StepResult) error) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		input := scenario.InputPath(step)
		render.Logf("step %d/%d: %s", i+1, len(scenario.Steps), input)

		cfg, err := step.Config(base, override)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		r, err := render.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		d, err := dataset.Load(input)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		rep, err := r.PlotResults(ctx, d.Input())
		if err != nil {
			return results, fmt.Errorf("step %d render: %w", i+1, err)
		}

		res := StepResult{Input: input, Config: cfg, Report: rep}
		results = append(results, res)
		if onStep != nil {
			if err := onStep(res); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}

	return results, nil
}

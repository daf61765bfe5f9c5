package pipeline

import (
	"fmt"

	"github.com/zlisto/financial-analyst-bot/pkg/adapter"
)

// Pipeline is an ordered sequence of stages plus the workers assigned to
// them. Each stage runs exactly once per run, strictly after every stage it
// lists as context.
type Pipeline struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description,omitempty"`
	DefaultAdapter string   `yaml:"default_adapter,omitempty"`
	DefaultModel   string   `yaml:"default_model,omitempty"`
	Stages         []*Stage `yaml:"stages"`

	// Adapters maps adapter name to implementation. Populated by the
	// caller, never from a manifest.
	Adapters map[string]adapter.Adapter `yaml:"-"`
}

// Validate checks the pipeline definition for errors. Context references
// must point at earlier stages, which is what guarantees that by the time a
// stage runs, everything it reads has already recorded output.
func (p *Pipeline) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("pipeline name is required")
	}
	if len(p.Stages) == 0 {
		return fmt.Errorf("pipeline must define at least one stage")
	}

	seen := make(map[string]struct{})
	for _, stage := range p.Stages {
		if stage.Name == "" {
			return fmt.Errorf("stage name is required")
		}
		if stage.Goal == "" {
			return fmt.Errorf("stage %s must have a goal", stage.Name)
		}
		if _, ok := seen[stage.Name]; ok {
			return fmt.Errorf("duplicate stage name: %s", stage.Name)
		}

		for _, ref := range stage.Context {
			if ref == stage.Name {
				return fmt.Errorf("stage %s cannot list itself as context", stage.Name)
			}
			if _, ok := seen[ref]; !ok {
				return fmt.Errorf("stage %s references context %s which is not an earlier stage", stage.Name, ref)
			}
		}

		seen[stage.Name] = struct{}{}
	}

	return nil
}

package pipeline

import (
	"fmt"
	"strings"

	"github.com/zlisto/financial-analyst-bot/pkg/artifact"
)

// Context is the append-only store of stage outputs for a single run. An
// entry is recorded once when its stage completes and never mutated; later
// stages only read. It is scoped to one run and never reused.
type Context struct {
	outputs map[string]*artifact.Artifact
	order   []string
}

// NewContext creates an empty run context.
func NewContext() *Context {
	return &Context{outputs: make(map[string]*artifact.Artifact)}
}

// Record stores a stage's output. Recording the same stage twice is a bug in
// the caller and returns an error.
func (c *Context) Record(stage string, art *artifact.Artifact) error {
	if art == nil {
		return fmt.Errorf("cannot record nil artifact for stage %s", stage)
	}
	if _, ok := c.outputs[stage]; ok {
		return fmt.Errorf("stage %s already recorded output", stage)
	}
	c.outputs[stage] = art
	c.order = append(c.order, stage)
	return nil
}

// Output returns the recorded artifact for a stage.
func (c *Context) Output(stage string) (*artifact.Artifact, bool) {
	art, ok := c.outputs[stage]
	return art, ok
}

// Stages returns stage names in completion order.
func (c *Context) Stages() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Concat joins the outputs of the named stages, in the order given, into a
// single text block. Every named stage must have recorded output.
func (c *Context) Concat(stages []string) (string, error) {
	parts := make([]string, 0, len(stages))
	for _, name := range stages {
		art, ok := c.outputs[name]
		if !ok {
			return "", fmt.Errorf("stage %s has no recorded output", name)
		}
		parts = append(parts, art.Content)
	}
	return strings.Join(parts, "\n\n"), nil
}

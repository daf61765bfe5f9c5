package adapter

import (
	"context"

	"github.com/zlisto/financial-analyst-bot/pkg/artifact"
)

// Adapter is the opaque worker capability assigned to a pipeline stage:
// given a model and a fully rendered prompt it returns free-form text.
// Any concrete LLM backend can be substituted without touching pipeline logic.
type Adapter interface {
	// Generate sends a prompt to the model and returns the output artifact.
	// The call may be arbitrarily slow; cancellation is via ctx only.
	Generate(ctx context.Context, model string, prompt string) (*artifact.Artifact, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models, preferred first.
	Models() []string
}

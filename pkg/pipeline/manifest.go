package pipeline

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadManifest reads a pipeline definition from a YAML file. Adapters are
// not part of the manifest and must be attached by the caller.
func LoadManifest(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pipeline Pipeline
	if err := yaml.Unmarshal(data, &pipeline); err != nil {
		return nil, err
	}

	return &pipeline, nil
}

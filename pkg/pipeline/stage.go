package pipeline

// Stage is one unit of the linear analysis pipeline. Stages are immutable
// after construction; the runner owns execution.
type Stage struct {
	// Name identifies the stage and keys its output in the run context.
	Name string `yaml:"name"`

	// Role and Backstory describe the worker persona placed in front of
	// the instruction.
	Role      string `yaml:"role"`
	Backstory string `yaml:"backstory,omitempty"`

	// Goal is the instruction text. It may reference {{ .Input }} (the
	// pipeline input) and {{ .Date }}.
	Goal string `yaml:"goal"`

	// ExpectedOutput describes what the stage should produce. Advisory
	// only; no schema is enforced on worker output.
	ExpectedOutput string `yaml:"expected_output,omitempty"`

	// Context lists upstream stages whose outputs are concatenated, in
	// this order, into the stage's prompt. Only earlier stages may be
	// referenced.
	Context []string `yaml:"context,omitempty"`

	// Adapter and Model select the worker. Empty values fall back to the
	// pipeline defaults.
	Adapter string `yaml:"adapter,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

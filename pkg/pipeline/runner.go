package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/zlisto/financial-analyst-bot/pkg/adapter"
	"github.com/zlisto/financial-analyst-bot/pkg/artifact"
	"github.com/zlisto/financial-analyst-bot/pkg/evidence"
)

// RunOptions configures pipeline execution.
type RunOptions struct {
	// Input is the raw text threaded into stage goals via {{ .Input }}.
	Input string

	// RunsDir, when set, enables JSON evidence records under RunsDir/<run-id>.
	RunsDir string

	Logger *log.Logger
}

// StageResult captures execution results for one stage.
type StageResult struct {
	Name     string
	Artifact *artifact.Artifact
	Duration time.Duration
}

// RunResult captures pipeline outputs.
type RunResult struct {
	RunID   string
	Stages  map[string]*StageResult
	Context *Context

	// Final is the artifact of the last stage.
	Final *artifact.Artifact
}

// Run executes the pipeline once. Stages run strictly in declaration order,
// exactly once each, and a worker failure aborts the run immediately with no
// retries. Nothing from a failed run is reused.
func Run(ctx context.Context, p *Pipeline, opts RunOptions) (*RunResult, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(p.Adapters) == 0 {
		return nil, fmt.Errorf("no adapters configured")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[pipeline] ", log.LstdFlags)
	}

	runID := uuid.New().String()

	var writer *evidence.Writer
	if opts.RunsDir != "" {
		w, err := evidence.NewWriter(opts.RunsDir, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare run record: %w", err)
		}
		writer = w
		record := evidence.RunRecord{
			ID:        runID,
			Timestamp: time.Now().UTC(),
			Pipeline:  p.Name,
			InputHash: artifact.HashString(opts.Input),
		}
		if err := writer.WriteRun(record); err != nil {
			return nil, err
		}
	}

	runCtx := NewContext()
	results := make(map[string]*StageResult)

	for _, stage := range p.Stages {
		logger.Printf("stage %s starting", stage.Name)
		start := time.Now()

		art, err := runStage(ctx, stage, p, opts.Input, runCtx)
		duration := time.Since(start)

		if writer != nil {
			record := evidence.StageRecord{
				Name:           stage.Name,
				DurationMillis: duration.Milliseconds(),
			}
			if art != nil {
				record.Adapter = art.Adapter
				record.Model = art.Model
				record.PromptHash = artifact.HashString(art.Prompt)
				record.OutputHash = art.Hash
			}
			if err != nil {
				record.Error = err.Error()
			}
			if writeErr := writer.WriteStage(record); writeErr != nil {
				return nil, writeErr
			}
		}

		if err != nil {
			return nil, err
		}

		if err := runCtx.Record(stage.Name, art); err != nil {
			return nil, err
		}
		results[stage.Name] = &StageResult{Name: stage.Name, Artifact: art, Duration: duration}
		logger.Printf("stage %s done in %s", stage.Name, duration.Round(time.Millisecond))
	}

	final := p.Stages[len(p.Stages)-1]
	finalResult := results[final.Name]

	return &RunResult{
		RunID:   runID,
		Stages:  results,
		Context: runCtx,
		Final:   finalResult.Artifact,
	}, nil
}

func runStage(ctx context.Context, stage *Stage, p *Pipeline, input string, runCtx *Context) (*artifact.Artifact, error) {
	adapterName := stage.Adapter
	if adapterName == "" {
		adapterName = p.DefaultAdapter
	}
	if adapterName == "" {
		adapterName = pickSingleAdapter(p.Adapters)
	}
	worker, ok := p.Adapters[adapterName]
	if !ok {
		return nil, fmt.Errorf("adapter %s not found for stage %s", adapterName, stage.Name)
	}

	model := stage.Model
	if model == "" {
		model = p.DefaultModel
	}
	if model == "" {
		models := worker.Models()
		if len(models) > 0 {
			model = models[0]
		}
	}

	goal, err := renderGoal(stage.Goal, input)
	if err != nil {
		return nil, fmt.Errorf("render goal for stage %s: %w", stage.Name, err)
	}

	contextBlock := ""
	if len(stage.Context) > 0 {
		contextBlock, err = runCtx.Concat(stage.Context)
		if err != nil {
			return nil, fmt.Errorf("build context for stage %s: %w", stage.Name, err)
		}
	}

	prompt := buildPrompt(stage, goal, contextBlock)

	art, err := worker.Generate(ctx, model, prompt)
	if err != nil {
		return nil, fmt.Errorf("stage %s adapter error: %w", stage.Name, err)
	}
	return art, nil
}

// goalData is the template data available to stage goals.
type goalData struct {
	Input string
	Date  string
}

func renderGoal(goal, input string) (string, error) {
	tmpl, err := template.New("goal").Option("missingkey=error").Parse(goal)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	data := goalData{Input: input, Date: time.Now().Format("2006-01-02 15:04")}
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func buildPrompt(stage *Stage, goal, contextBlock string) string {
	var sb strings.Builder
	if stage.Role != "" {
		sb.WriteString("You are " + stage.Role + ".")
		if stage.Backstory != "" {
			sb.WriteString(" " + stage.Backstory)
		}
		sb.WriteString("\n\n")
	}
	sb.WriteString(goal)
	if contextBlock != "" {
		sb.WriteString("\n\nContext from previous stages:\n\n")
		sb.WriteString(contextBlock)
	}
	if stage.ExpectedOutput != "" {
		sb.WriteString("\n\nExpected output: " + stage.ExpectedOutput)
	}
	return sb.String()
}

func pickSingleAdapter(adapters map[string]adapter.Adapter) string {
	if len(adapters) != 1 {
		return ""
	}
	for name := range adapters {
		return name
	}
	return ""
}

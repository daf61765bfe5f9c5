package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zlisto/financial-analyst-bot/pkg/adapter"
	"github.com/zlisto/financial-analyst-bot/pkg/artifact"
)

// recordingAdapter echoes a canned output per call and remembers every prompt.
type recordingAdapter struct {
	outputs []string
	prompts []string
	failAt  int // 1-based call index that fails; 0 disables
}

func (a *recordingAdapter) Name() string     { return "recording" }
func (a *recordingAdapter) Models() []string { return []string{"rec-1"} }

func (a *recordingAdapter) Generate(_ context.Context, model, prompt string) (*artifact.Artifact, error) {
	a.prompts = append(a.prompts, prompt)
	call := len(a.prompts)
	if a.failAt != 0 && call == a.failAt {
		return nil, errors.New("worker exploded")
	}
	out := "output-" + string(rune('0'+call))
	if call <= len(a.outputs) {
		out = a.outputs[call-1]
	}
	return artifact.New(out, a.Name(), model, prompt), nil
}

func linearPipeline(a adapter.Adapter) *Pipeline {
	return &Pipeline{
		Name: "chain",
		Stages: []*Stage{
			{Name: "search", Role: "Searcher", Goal: "Find articles about {{ .Input }}"},
			{Name: "read", Role: "Reader", Goal: "Summarize the articles", Context: []string{"search"}},
			{Name: "synthesize", Role: "Synthesizer", Goal: "Combine summaries", Context: []string{"read"}},
			{Name: "render", Role: "Designer", Goal: "Render HTML", Context: []string{"search", "read", "synthesize"}},
		},
		Adapters: map[string]adapter.Adapter{"recording": a},
	}
}

func TestRunExecutesStagesInOrderExactlyOnce(t *testing.T) {
	rec := &recordingAdapter{outputs: []string{"s-out", "r-out", "y-out", "html-out"}}
	p := linearPipeline(rec)

	result, err := Run(context.Background(), p, RunOptions{Input: "bitcoin"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(rec.prompts) != 4 {
		t.Fatalf("expected 4 worker invocations, got %d", len(rec.prompts))
	}
	if got := result.Context.Stages(); strings.Join(got, ",") != "search,read,synthesize,render" {
		t.Fatalf("unexpected completion order: %v", got)
	}
	if result.Final.Content != "html-out" {
		t.Fatalf("unexpected final output: %q", result.Final.Content)
	}
	if result.RunID == "" {
		t.Fatalf("expected run ID")
	}
}

func TestRunThreadsDeclaredContextIntoPrompts(t *testing.T) {
	rec := &recordingAdapter{outputs: []string{"s-out", "r-out", "y-out", "html-out"}}
	p := linearPipeline(rec)

	if _, err := Run(context.Background(), p, RunOptions{Input: "bitcoin"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	// The search stage sees the rendered input and no context block.
	if !strings.Contains(rec.prompts[0], "Find articles about bitcoin") {
		t.Fatalf("input not rendered into goal: %q", rec.prompts[0])
	}
	if strings.Contains(rec.prompts[0], "Context from previous stages") {
		t.Fatalf("search stage should not receive context: %q", rec.prompts[0])
	}

	// The read stage sees exactly the search output.
	if !strings.Contains(rec.prompts[1], "Context from previous stages:\n\ns-out") {
		t.Fatalf("read stage missing search context: %q", rec.prompts[1])
	}
	if strings.Contains(rec.prompts[1], "r-out") || strings.Contains(rec.prompts[1], "y-out") {
		t.Fatalf("read stage received outputs it did not declare: %q", rec.prompts[1])
	}

	// The render stage sees all three upstream outputs, declaration order.
	if !strings.Contains(rec.prompts[3], "s-out\n\nr-out\n\ny-out") {
		t.Fatalf("render stage context wrong or out of order: %q", rec.prompts[3])
	}
}

func TestRunFailsFastOnWorkerError(t *testing.T) {
	rec := &recordingAdapter{failAt: 2}
	p := linearPipeline(rec)

	_, err := Run(context.Background(), p, RunOptions{Input: "bitcoin"})
	if err == nil {
		t.Fatalf("expected run to fail")
	}
	if !strings.Contains(err.Error(), "stage read adapter error") {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.prompts) != 2 {
		t.Fatalf("expected no invocations after the failing stage, got %d", len(rec.prompts))
	}
}

func TestRunWritesEvidenceRecords(t *testing.T) {
	rec := &recordingAdapter{}
	p := linearPipeline(rec)
	runs := t.TempDir()

	result, err := Run(context.Background(), p, RunOptions{Input: "bitcoin", RunsDir: runs})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	runDir := filepath.Join(runs, result.RunID)
	if _, err := os.Stat(filepath.Join(runDir, "run.json")); err != nil {
		t.Fatalf("missing run.json: %v", err)
	}
	for _, stage := range []string{"search", "read", "synthesize", "render"} {
		if _, err := os.Stat(filepath.Join(runDir, "stages", stage+".json")); err != nil {
			t.Fatalf("missing stage record for %s: %v", stage, err)
		}
	}
}

func TestRunRequiresAdapters(t *testing.T) {
	p := linearPipeline(&recordingAdapter{})
	p.Adapters = nil
	if _, err := Run(context.Background(), p, RunOptions{}); err == nil {
		t.Fatalf("expected error with no adapters")
	}
}

func TestRenderGoalRejectsUnknownFields(t *testing.T) {
	if _, err := renderGoal("hello {{ .Nope }}", "x"); err == nil {
		t.Fatalf("expected template error for unknown field")
	}

	got, err := renderGoal("query: {{ .Input }}", "btc")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "query: btc" {
		t.Fatalf("unexpected render: %q", got)
	}
}

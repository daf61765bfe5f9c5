package evidence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriterWritesRunAndStageRecords(t *testing.T) {
	base := t.TempDir()

	w, err := NewWriter(base, "run-1")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	run := RunRecord{ID: "run-1", Timestamp: time.Now().UTC(), Pipeline: "bitcoin-analysis", InputHash: "abc"}
	if err := w.WriteRun(run); err != nil {
		t.Fatalf("write run: %v", err)
	}

	stage := StageRecord{Name: "search", Adapter: "mock", Model: "mock-1", OutputHash: "def", DurationMillis: 12}
	if err := w.WriteStage(stage); err != nil {
		t.Fatalf("write stage: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "run-1", "run.json"))
	if err != nil {
		t.Fatalf("read run.json: %v", err)
	}
	var gotRun RunRecord
	if err := json.Unmarshal(data, &gotRun); err != nil {
		t.Fatalf("unmarshal run.json: %v", err)
	}
	if gotRun.ID != "run-1" || gotRun.Pipeline != "bitcoin-analysis" {
		t.Fatalf("unexpected run record: %+v", gotRun)
	}

	data, err = os.ReadFile(filepath.Join(base, "run-1", "stages", "search.json"))
	if err != nil {
		t.Fatalf("read stage record: %v", err)
	}
	var gotStage StageRecord
	if err := json.Unmarshal(data, &gotStage); err != nil {
		t.Fatalf("unmarshal stage record: %v", err)
	}
	if gotStage.Adapter != "mock" || gotStage.DurationMillis != 12 {
		t.Fatalf("unexpected stage record: %+v", gotStage)
	}
}

func TestWriterRejectsMissingArguments(t *testing.T) {
	if _, err := NewWriter("", "run"); err == nil {
		t.Fatalf("expected error for empty base directory")
	}
	if _, err := NewWriter(t.TempDir(), ""); err == nil {
		t.Fatalf("expected error for empty run ID")
	}

	w, err := NewWriter(t.TempDir(), "run")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WriteStage(StageRecord{}); err == nil {
		t.Fatalf("expected error for unnamed stage record")
	}
}

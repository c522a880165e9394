package ledger_test

import (
	"testing"
	"time"

	"github.com/p-n-ai/pai-lingo/internal/ledger"
)

func TestMemoryStore_RunLifecycle(t *testing.T) {
	store := ledger.NewMemoryStore()

	run, err := store.StartRun("grammer-study-questions.json")
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	if run.ID == "" {
		t.Error("StartRun() returned empty ID")
	}
	if run.Status != ledger.RunRunning {
		t.Errorf("Status = %q, want running", run.Status)
	}

	counts := ledger.Counts{Total: 3, Patched: 1, Partial: 1, Unresolved: 1}
	if err := store.FinishRun(run.ID, counts, ledger.RunFinished); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt should be set")
	}
	if got.Counts != counts {
		t.Errorf("Counts = %+v, want %+v", got.Counts, counts)
	}
	if got.Status != ledger.RunFinished {
		t.Errorf("Status = %q, want finished", got.Status)
	}
}

func TestMemoryStore_AbortedRun(t *testing.T) {
	store := ledger.NewMemoryStore()
	run, _ := store.StartRun("doc.json")

	if err := store.FinishRun(run.ID, ledger.Counts{Total: 4, Patched: 1}, ledger.RunAborted); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}
	got, _ := store.GetRun(run.ID)
	if got.Status != ledger.RunAborted || got.FinishedAt == nil || got.Counts.Patched != 1 {
		t.Errorf("GetRun() = %+v, want aborted run with partial counts", got)
	}
}

func TestMemoryStore_Errors(t *testing.T) {
	store := ledger.NewMemoryStore()

	if _, err := store.StartRun(""); err == nil {
		t.Error("StartRun() should require a document")
	}
	if err := store.FinishRun("missing", ledger.Counts{}, ledger.RunFinished); err == nil {
		t.Error("FinishRun() should fail for unknown run")
	}
	run, _ := store.StartRun("doc.json")
	if err := store.FinishRun(run.ID, ledger.Counts{}, ledger.RunRunning); err == nil {
		t.Error("FinishRun() should reject running as a final status")
	}
	if _, err := store.GetRun("missing"); err == nil {
		t.Error("GetRun() should fail for unknown run")
	}
}

func TestMemoryStore_ListRunsNewestFirst(t *testing.T) {
	store := ledger.NewMemoryStore()

	var ids []string
	for range 3 {
		run, err := store.StartRun("doc.json")
		if err != nil {
			t.Fatalf("StartRun() error = %v", err)
		}
		ids = append(ids, run.ID)
		time.Sleep(time.Millisecond)
	}

	runs, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("ListRuns() order = [%s %s], want [%s %s]", runs[0].ID, runs[1].ID, ids[2], ids[1])
	}
}

func TestMemoryEventLogger_LogEvent(t *testing.T) {
	logger := ledger.NewMemoryEventLogger()

	err := logger.LogEvent(ledger.Event{
		RunID:     "run-1",
		EventType: ledger.EventPatched,
		Address:   "topic[0].sentence[0].option[1]",
		Data: map[string]any{
			"inserted": []string{"fr", "es"},
		},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}
	if err := logger.LogEvent(ledger.Event{RunID: "run-1"}); err == nil {
		t.Error("LogEvent() without type should fail")
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].EventType != ledger.EventPatched {
		t.Errorf("EventType = %q, want %s", events[0].EventType, ledger.EventPatched)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestPostgresEventLogger_LogEvent_NilPool(t *testing.T) {
	logger := ledger.NewPostgresEventLogger(nil)

	err := logger.LogEvent(ledger.Event{
		RunID:     "run-1",
		EventType: ledger.EventStale,
	})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
}

func TestNewPostgresStore_NilPool(t *testing.T) {
	if _, err := ledger.NewPostgresStore(nil); err == nil {
		t.Fatal("expected error for nil pool")
	}
}

package ai

import (
	"testing"
)

func TestInMemoryBudget_NoLimitSet(t *testing.T) {
	b := NewInMemoryBudget()

	ok, err := b.Check("run-1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !ok {
		t.Error("Check() = false, want true (no limit means unlimited)")
	}
}

func TestInMemoryBudget_Limits(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		records []int
		wantOK  bool
	}{
		{"within", 1000, []int{500}, true},
		{"over", 100, []int{150}, false},
		{"exact", 100, []int{100}, false},
		{"accumulated", 1000, []int{100, 200, 300}, true},
		{"accumulated over", 500, []int{100, 200, 300}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewInMemoryBudget()
			b.SetLimit("run-1", tt.limit)
			for _, tokens := range tt.records {
				if err := b.Record("run-1", tokens); err != nil {
					t.Fatalf("Record() error = %v", err)
				}
			}

			ok, err := b.Check("run-1")
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("Check() = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestInMemoryBudget_Usage(t *testing.T) {
	b := NewInMemoryBudget()
	b.SetLimit("run-1", 1000)
	b.Record("run-1", 250)
	b.Record("run-1", 350)

	used, limit, err := b.Usage("run-1")
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if used != 600 {
		t.Errorf("used = %d, want 600", used)
	}
	if limit != 1000 {
		t.Errorf("limit = %d, want 1000", limit)
	}
}

func TestInMemoryBudget_RemoveLimit(t *testing.T) {
	b := NewInMemoryBudget()
	b.SetLimit("run-1", 10)
	b.Record("run-1", 20)
	b.SetLimit("run-1", 0)

	if ok, _ := b.Check("run-1"); !ok {
		t.Error("Check() = false after removing the limit, want true")
	}
}

func TestInMemoryBudget_NegativeTokens(t *testing.T) {
	b := NewInMemoryBudget()

	if err := b.Record("run-1", -10); err == nil {
		t.Fatal("Record() should return error for negative tokens")
	}
}

func TestInMemoryBudget_IsolatedScopes(t *testing.T) {
	b := NewInMemoryBudget()
	b.SetLimit("run-1", 100)
	b.SetLimit("run-2", 200)

	b.Record("run-1", 90)
	b.Record("run-2", 150)

	ok1, _ := b.Check("run-1")
	ok2, _ := b.Check("run-2")

	if !ok1 {
		t.Error("run-1 should be within budget (90 < 100)")
	}
	if !ok2 {
		t.Error("run-2 should be within budget (150 < 200)")
	}
}

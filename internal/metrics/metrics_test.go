package metrics

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestRecordWrite(t *testing.T) {
	m := NewMonitor()

	m.RecordWrite(0)
	m.RecordWrite(0)
	m.RecordWrite(1)

	if got := m.Worker(0).Writes; got != 2 {
		t.Errorf("Expected 2 writes for worker 0, got %d", got)
	}
	if got := m.Worker(1).Writes; got != 1 {
		t.Errorf("Expected 1 write for worker 1, got %d", got)
	}
	if m.Worker(0).LastWrite.IsZero() {
		t.Error("Expected last write time to be set")
	}
}

func TestRecordError(t *testing.T) {
	m := NewMonitor()

	m.RecordError(3)
	m.RecordError(3)

	if got := m.Worker(3).Errors; got != 2 {
		t.Errorf("Expected 2 errors for worker 3, got %d", got)
	}
	if got := m.Worker(3).Writes; got != 0 {
		t.Errorf("Expected 0 writes for worker 3, got %d", got)
	}
}

func TestWorker_Unknown(t *testing.T) {
	m := NewMonitor()

	wm := m.Worker(9)
	if wm.ID != 9 || wm.Writes != 0 || wm.Errors != 0 {
		t.Errorf("Expected zero metrics for unknown worker, got %+v", wm)
	}
}

func TestTotals(t *testing.T) {
	m := NewMonitor()

	m.RecordWrite(0)
	m.RecordWrite(1)
	m.RecordWrite(1)
	m.RecordError(2)

	writes, errors := m.Totals()
	if writes != 3 {
		t.Errorf("Expected 3 total writes, got %d", writes)
	}
	if errors != 1 {
		t.Errorf("Expected 1 total error, got %d", errors)
	}
}

func TestSnapshot_Ordered(t *testing.T) {
	m := NewMonitor()

	m.RecordWrite(2)
	m.RecordWrite(0)
	m.RecordWrite(1)

	snap := m.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("Expected 3 workers in snapshot, got %d", len(snap))
	}
	for i, wm := range snap {
		if wm.ID != i {
			t.Errorf("Expected snapshot ordered by id, got id %d at index %d", wm.ID, i)
		}
	}
}

func TestMonitor_ConcurrentRecording(t *testing.T) {
	m := NewMonitor()

	const workers = 4
	const writesEach = 500

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for n := 0; n < writesEach; n++ {
				m.RecordWrite(id)
			}
		}(id)
	}
	wg.Wait()

	writes, _ := m.Totals()
	if writes != workers*writesEach {
		t.Errorf("Expected %d total writes, got %d", workers*writesEach, writes)
	}
}

func TestLogSummary(t *testing.T) {
	m := NewMonitor()
	m.RecordWrite(0)
	m.RecordError(1)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	m.LogSummary(logger)

	out := buf.String()
	if !strings.Contains(out, "total_writes=1") {
		t.Errorf("Expected total_writes=1 in summary, got %q", out)
	}
	if !strings.Contains(out, "total_errors=1") {
		t.Errorf("Expected total_errors=1 in summary, got %q", out)
	}
}

package eventlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestEmitAndClose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)

	l.Emit(StageUpload, "a.csv", "accepted", map[string]any{"size": 42})
	l.Emit(StageParse, "a.csv", "structured", nil)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var events []Event
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		events = append(events, ev)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Stage != StageUpload || events[0].File != "a.csv" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[0].Fields["size"] != float64(42) {
		t.Errorf("fields = %v", events[0].Fields)
	}
	if events[1].Stage != StageParse {
		t.Errorf("second event = %+v", events[1])
	}
	if events[0].Time.IsZero() {
		t.Error("event time not stamped")
	}
}

func TestEmitNeverBlocks(t *testing.T) {
	// A writer that blocks forever would stall a naive implementation.
	blocked := make(chan struct{})
	l := New(blockingWriter{wait: blocked}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < defaultBuffer*4; i++ {
			l.Emit(StageExtract, "big.pdf", "page", nil)
		}
	}()
	wg.Wait() // returning at all proves Emit did not block

	if l.Dropped() == 0 {
		t.Error("expected drops once the buffer filled")
	}

	close(blocked)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

type blockingWriter struct{ wait chan struct{} }

func (w blockingWriter) Write(p []byte) (int, error) {
	<-w.wait
	return len(p), nil
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	for i := 0; i < 2; i++ {
		l, err := Open(path, nil)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		l.Emit(StageSave, "r.csv", "saved", nil)
		if err := l.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Count(strings.TrimSpace(string(data)), "\n") + 1
	if lines != 2 {
		t.Errorf("lines = %d, want 2 (reopen must append)", lines)
	}
}

func TestCloseIdempotent(t *testing.T) {
	l := Nop()
	if err := l.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestEmitAfterClose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)
	l.Emit(StageSave, "r.csv", "saved", nil)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Must not panic; the event is counted as dropped.
	l.Emit(StageError, "late.csv", "too late", nil)
	if l.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", l.Dropped())
	}
	if strings.Contains(buf.String(), "late.csv") {
		t.Error("post-close event must not be written")
	}
}

// Package eventlog appends pipeline events to a JSONL audit file. Emission
// never blocks or fails the caller; when the buffer is full the event is
// dropped and counted.
package eventlog

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Stage names the pipeline step an event came from.
type Stage string

const (
	StageUpload   Stage = "upload"
	StageExtract  Stage = "extract"
	StageRoute    Stage = "route"
	StageParse    Stage = "parse"
	StageMap      Stage = "map"
	StageValidate Stage = "validate"
	StageSave     Stage = "save"
	StageError    Stage = "error"
)

// Event is one audit record.
type Event struct {
	Time    time.Time      `json:"time"`
	Stage   Stage          `json:"stage"`
	File    string         `json:"file,omitempty"`
	Message string         `json:"message,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

const defaultBuffer = 256

// Log is the JSONL appender. The zero value is unusable; construct with New
// or Open.
type Log struct {
	ch      chan Event
	done    chan struct{}
	w       io.Writer
	closer  io.Closer
	log     *slog.Logger
	dropped atomic.Int64
	once    sync.Once

	// mu guards closed so an Emit racing Close never sends on a closed
	// channel. Emits after Close are counted as drops.
	mu     sync.RWMutex
	closed bool
}

// Open creates or appends to the JSONL file at path.
func Open(path string, log *slog.Logger) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	l := New(f, log)
	l.closer = f
	return l, nil
}

// New creates a Log writing to w.
func New(w io.Writer, log *slog.Logger) *Log {
	if log == nil {
		log = slog.Default()
	}
	l := &Log{
		ch:   make(chan Event, defaultBuffer),
		done: make(chan struct{}),
		w:    w,
		log:  log,
	}
	go l.run()
	return l
}

// Emit queues an event. It returns immediately; a full buffer drops the
// event rather than stalling the pipeline.
func (l *Log) Emit(stage Stage, file, message string, fields map[string]any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}

	ev := Event{Time: time.Now().UTC(), Stage: stage, File: file, Message: message, Fields: fields}
	select {
	case l.ch <- ev:
	default:
		l.dropped.Add(1)
	}
}

// Dropped reports how many events were discarded due to a full buffer.
func (l *Log) Dropped() int64 { return l.dropped.Load() }

// Close drains the buffer, stops the writer and closes the underlying file
// if Open created it.
func (l *Log) Close() error {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.ch)
		l.mu.Unlock()
		<-l.done
	})
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func (l *Log) run() {
	defer close(l.done)
	enc := json.NewEncoder(l.w)
	for ev := range l.ch {
		if err := enc.Encode(ev); err != nil {
			l.log.Warn("failed to write event", "stage", ev.Stage, "error", err)
		}
	}
}

// Nop returns a Log that discards everything. Useful in tests and when the
// audit trail is disabled.
func Nop() *Log {
	return New(io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

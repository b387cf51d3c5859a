package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrSinkClosed reports that the consumer went away. The poll loop treats
// this as its shutdown signal — the consumer owns this process's lifetime.
var ErrSinkClosed = errors.New("event sink closed")

// Sink receives lifecycle events. The canonical implementation is Emitter;
// tests and the watch TUI substitute in-memory sinks.
type Sink interface {
	Emit(Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event) error

func (f SinkFunc) Emit(ev Event) error {
	return f(ev)
}

// Emitter writes events as line-delimited JSON. Each event is serialized
// to a complete line before a single Write call, guarded by a mutex, so
// concurrent emitters can never interleave partial lines. Writes are not
// buffered: events are real-time, not batched.
type Emitter struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewEmitter creates an emitter writing to w (typically os.Stdout).
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes one event as a single JSON line. The first write failure
// (broken pipe, closed consumer) latches the emitter closed; every
// subsequent Emit returns ErrSinkClosed without touching the writer.
func (e *Emitter) Emit(ev Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrSinkClosed
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	line = append(line, '\n')

	if _, err := e.w.Write(line); err != nil {
		e.closed = true
		return fmt.Errorf("%w: %v", ErrSinkClosed, err)
	}
	return nil
}

// Closed reports whether the sink has disconnected.
func (e *Emitter) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

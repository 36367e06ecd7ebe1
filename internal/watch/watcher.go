// Package watch runs the background event loop over the IPC event
// channel: one goroutine per watcher, blocking on receive and invoking
// a caller-supplied callback per decoded firmware event.
package watch

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/rbright/keywire/internal/fsm"
	"github.com/rbright/keywire/internal/zmkproto"
)

// EventSource yields one decoded firmware event per call, blocking
// until an event arrives or the stream fails.
type EventSource interface {
	ReceiveEvent() (*zmkproto.Event, error)
}

// Watcher owns exclusive read access to one event channel while
// running. Events reach the callback in exact arrival order; callback
// execution time directly delays the next receive — there is no
// internal buffering or backpressure.
type Watcher struct {
	source EventSource
	logger *slog.Logger

	mu    sync.Mutex
	state fsm.State
	done  chan struct{}
}

// New builds an idle watcher over source. The logger handles stop
// causes when a Start call supplies no error handler; it may be nil.
func New(source EventSource, logger *slog.Logger) *Watcher {
	return &Watcher{source: source, logger: logger, state: fsm.StateIdle}
}

// Start launches the watch loop. It fails when a loop is already
// running. A watcher stopped by a stream error can be started again
// after the caller reconnects the event channel; there is no automatic
// reconnect.
//
// The loop calls callback synchronously for every event. On the first
// receive or decode failure it stops and reports the cause exactly once
// through onError. With a nil onError the cause is logged at warn level
// and dropped.
func (w *Watcher) Start(callback func(*zmkproto.Event), onError func(error)) error {
	if callback == nil {
		return errors.New("watch callback must not be nil")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	trigger := fsm.EventStart
	if w.state == fsm.StateStopped {
		trigger = fsm.EventRestart
	}
	next, err := fsm.Transition(w.state, trigger)
	if err != nil {
		return err
	}
	w.state = next

	w.done = make(chan struct{})
	go w.run(callback, onError, w.done)
	return nil
}

// State returns the current lifecycle state.
func (w *Watcher) State() fsm.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Wait blocks until the current watch loop exits. It returns
// immediately for a watcher that never started.
func (w *Watcher) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()

	if done == nil {
		return
	}
	<-done
}

func (w *Watcher) run(callback func(*zmkproto.Event), onError func(error), done chan struct{}) {
	defer close(done)

	for {
		ev, err := w.source.ReceiveEvent()
		if err != nil {
			w.stop(err, onError)
			return
		}
		callback(ev)
	}
}

// stop records the Running -> Stopped transition and reports the cause
// exactly once.
func (w *Watcher) stop(cause error, onError func(error)) {
	w.mu.Lock()
	if next, err := fsm.Transition(w.state, fsm.EventStreamErr); err == nil {
		w.state = next
	}
	w.mu.Unlock()

	if onError != nil {
		onError(cause)
		return
	}
	if w.logger != nil {
		w.logger.Warn("event watch stopped", "error", cause.Error())
	}
}

package shell

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"go.uber.org/zap"
)

// Signaler is a process that can receive a forwarded interrupt.
type Signaler interface {
	Signal(os.Signal) error
}

// Router forwards interrupts to the pipeline stage currently running. With no
// pipeline running an interrupt ends the session.
//
// A Router is installed once per session so no signal is lost between
// pipelines.
type Router struct {
	terminal io.Writer
	onIdle   func()
	log      *zap.Logger

	mu          sync.Mutex
	active      bool
	current     Signaler
	interrupted bool
}

// NewRouter creates a router that echoes to terminal. onIdle is called when
// an interrupt arrives while the shell is waiting at its prompt.
func NewRouter(terminal io.Writer, onIdle func(), log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		terminal: terminal,
		onIdle:   onIdle,
		log:      log,
	}
}

// Install routes the process's interrupt signals through the router until
// the returned function is called.
func (r *Router) Install() (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range ch {
			r.Interrupt()
		}
	}()

	return func() {
		signal.Stop(ch)
		close(ch)
		<-done
	}
}

// Interrupt handles one interrupt.
func (r *Router) Interrupt() {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()

		r.log.Debug("interrupt while idle")
		fmt.Fprintln(r.terminal, "^C")
		if r.onIdle != nil {
			r.onIdle()
		}
		return
	}

	r.interrupted = true
	if r.current != nil {
		if err := r.current.Signal(os.Interrupt); err != nil {
			r.log.Warn("forwarding interrupt", zap.Error(err))
		} else {
			r.log.Debug("forwarded interrupt")
		}
	}
	r.mu.Unlock()

	fmt.Fprintln(r.terminal)
}

// Begin marks the start of a foreground pipeline.
func (r *Router) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = true
	r.current = nil
	r.interrupted = false
}

// End marks the end of the foreground pipeline.
func (r *Router) End() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = false
	r.current = nil
}

// Mark makes child the receiver of forwarded interrupts. A child started
// after the pipeline was interrupted receives the interrupt immediately.
func (r *Router) Mark(child Signaler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = child
	if r.interrupted {
		if err := child.Signal(os.Interrupt); err != nil {
			r.log.Warn("forwarding interrupt", zap.Error(err))
		}
	}
}

// Clear releases child after it exited, it's a no-op if child isn't
// current.
func (r *Router) Clear(child Signaler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == child {
		r.current = nil
	}
}

// Current returns the child receiving interrupts, if any.
func (r *Router) Current() Signaler {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

// Interrupted reports whether an interrupt arrived since Begin.
func (r *Router) Interrupted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.interrupted
}

package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalCounter counts received signals and calls onForce once the count
// reaches forceAfter.
//
// The first interrupt cancels the running job; a second one exits without
// waiting for cleanup.
type SignalCounter struct {
	mu         sync.Mutex
	count      int
	forceAfter int
	onForce    func()
}

// NewSignalCounter creates a counter that calls onForce on the
// forceAfter-th signal.
func NewSignalCounter(forceAfter int, onForce func()) *SignalCounter {
	return &SignalCounter{forceAfter: forceAfter, onForce: onForce}
}

// Increment records a signal and returns the new count.
func (s *SignalCounter) Increment() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	if s.count == s.forceAfter && s.onForce != nil {
		s.onForce()
	}
	return s.count
}

// Count returns the number of signals seen.
func (s *SignalCounter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Signal is the os.Signal received first, or nil.
type Signal struct {
	mu  sync.Mutex
	sig os.Signal
}

// Get returns the first recorded signal.
func (s *Signal) Get() os.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sig
}

func (s *Signal) set(sig os.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sig == nil {
		s.sig = sig
	}
}

// WatchSignals returns a context canceled on the first SIGINT or SIGTERM.
// The second signal calls onForce. Call stop to release the handler.
func WatchSignals(parent context.Context, onForce func()) (ctx context.Context, received *Signal, stop func()) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	ctx, received, stop = watch(parent, ch, onForce)
	return ctx, received, func() {
		signal.Stop(ch)
		stop()
	}
}

func watch(parent context.Context, ch <-chan os.Signal, onForce func()) (context.Context, *Signal, func()) {
	ctx, cancel := context.WithCancel(parent)
	counter := NewSignalCounter(2, onForce)
	received := &Signal{}
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-ch:
				received.set(sig)
				counter.Increment()
				cancel()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return ctx, received, func() {
		once.Do(func() {
			close(done)
			cancel()
		})
	}
}

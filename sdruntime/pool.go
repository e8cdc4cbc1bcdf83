package sdruntime

import (
	"context"
	"sync"
)

// Opener creates a Session for the pool.
type Opener func() (*Session, error)

// Pool bounds the number of concurrent sd processes. Sessions are opened
// lazily on Acquire up to maxSize and reused after Release.
type Pool struct {
	mu       sync.Mutex
	sessions chan *Session
	maxSize  int
	open     Opener
	closed   bool
	created  int
}

// NewPool creates a pool of at most maxSize sessions.
func NewPool(maxSize int, open Opener) (*Pool, error) {
	if maxSize <= 0 || open == nil {
		return nil, ErrInvalidParams
	}

	return &Pool{
		sessions: make(chan *Session, maxSize),
		maxSize:  maxSize,
		open:     open,
	}, nil
}

// Acquire returns an idle session, opens a new one while below capacity, or
// waits until one is released.
//
// Returns ErrPoolClosed if the pool is closed and ErrAcquireTimeout if ctx
// ends first.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	select {
	case s := <-p.sessions:
		p.mu.Unlock()
		return s, nil
	default:
	}

	if p.created < p.maxSize {
		p.created++
		p.mu.Unlock()

		s, err := p.open()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}
		return s, nil
	}
	p.mu.Unlock()

	select {
	case s, ok := <-p.sessions:
		if !ok {
			return nil, ErrPoolClosed
		}
		return s, nil
	case <-ctx.Done():
		return nil, ErrAcquireTimeout
	}
}

// Release returns a session to the pool. Sessions released after Close are
// closed instead. Passing nil is a no-op.
func (p *Pool) Release(s *Session) {
	if s == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || !s.IsValid() {
		s.Close()
		p.created--
		return
	}

	select {
	case p.sessions <- s:
	default:
		s.Close()
		p.created--
	}
}

// Close shuts down the pool. Close is safe to call multiple times.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.sessions)
	for s := range p.sessions {
		s.Close()
		p.created--
	}

	return nil
}

// Idle returns the number of sessions waiting in the pool.
func (p *Pool) Idle() int {
	return len(p.sessions)
}

// Created returns the number of open sessions, idle or acquired.
func (p *Pool) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

// MaxSize returns the capacity of the pool.
func (p *Pool) MaxSize() int {
	return p.maxSize
}

// IsClosed returns whether the pool has been closed.
func (p *Pool) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// BuilderFactory creates the builder for a new session id.
type BuilderFactory func(id string) (*Builder, error)

type session struct {
	builder  *Builder
	lastSeen time.Time
}

// Sessions keeps live builders in memory keyed by session id. Idle sessions
// are evicted after ttl; their drafts stay in the draft backend and are
// hydrated again on the next request.
type Sessions struct {
	mu      sync.Mutex
	items   map[string]*session
	factory BuilderFactory
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

func NewSessions(factory BuilderFactory, ttl time.Duration, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		items:   map[string]*session{},
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Get returns the builder for id, creating it when needed.
func (s *Sessions) Get(id string) (*Builder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[id]; ok {
		it.lastSeen = s.now()
		return it.builder, nil
	}
	b, err := s.factory(id)
	if err != nil {
		return nil, err
	}
	s.items[id] = &session{builder: b, lastSeen: s.now()}
	s.logger.Debug("session opened", slog.String("session", id))
	return b, nil
}

// Lookup returns a live builder without creating one.
func (s *Sessions) Lookup(id string) (*Builder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return it.builder, nil
}

// Rehydrate reloads a live session's document from its drafts. Sessions
// that are not live are ignored.
func (s *Sessions) Rehydrate(id string) {
	b, err := s.Lookup(id)
	if err != nil {
		return
	}
	b.Document().Rehydrate()
	s.logger.Info("session rehydrated", slog.String("session", id))
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Evict drops sessions idle for longer than ttl and returns how many went.
func (s *Sessions) Evict() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, it := range s.items {
		if it.lastSeen.Before(cutoff) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// Run evicts idle sessions until ctx is done.
func (s *Sessions) Run(ctx context.Context) error {
	if s.ttl <= 0 {
		<-ctx.Done()
		return nil
	}
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.Evict(); n > 0 {
				s.logger.Info("evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

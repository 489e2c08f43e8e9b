package usecase

import (
	"sync"
	"time"
)

// IDSource issues time-based ids that strictly increase within a process,
// even when several are requested in the same millisecond.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// DefaultIDs is shared by every document in the process.
var DefaultIDs = NewIDSource(nil)

func (s *IDSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe makes later ids greater than id. Used when hydrating drafts
// written by an earlier process.
func (s *IDSource) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last {
		s.last = id
	}
}

// Package draft persists resume drafts slot by slot so an editing session
// survives restarts without a round-trip to the resume service.
package draft

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
)

// Key names one durable slot. Each top-level document field owns exactly
// one key.
type Key string

const (
	KeyPersonalInfo   Key = "resumePersonalInfo"
	KeyEducation      Key = "resumeEducation"
	KeyExperience     Key = "resumeExperience"
	KeySkills         Key = "resumeSkills"
	KeyProjects       Key = "resumeProjects"
	KeyCertifications Key = "resumeCertifications"
	KeyTemplate       Key = "resumeTemplate"
)

// Keys lists every slot used by a resume document.
var Keys = []Key{
	KeyPersonalInfo,
	KeyEducation,
	KeyExperience,
	KeySkills,
	KeyProjects,
	KeyCertifications,
	KeyTemplate,
}

// ErrNotFound is returned by backends for absent slots.
var ErrNotFound = errors.New("draft: slot not found")

// Backend stores raw slot values for a single namespace.
type Backend interface {
	Get(key Key) ([]byte, error)
	Put(key Key, value []byte) error
	Delete(keys ...Key) error
}

// Provider hands out one Backend per namespace (editing session).
type Provider interface {
	Backend(namespace string) Backend
}

// Store serializes slot values on top of a Backend. Failures never reach
// the caller: the in-memory document stays authoritative.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

func NewStore(b Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: b, logger: logger}
}

// Load reads key into a fresh T. Missing, null or malformed slots yield def.
func Load[T any](s *Store, key Key, def T) T {
	raw, err := s.backend.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("draft: load failed", slog.String("key", string(key)), slog.String("error", err.Error()))
		}
		return def
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return def
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("draft: malformed slot, using default", slog.String("key", string(key)), slog.String("error", err.Error()))
		return def
	}
	return v
}

// Save writes v to key. Errors are logged and dropped.
func (s *Store) Save(key Key, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("draft: encode failed", slog.String("key", string(key)), slog.String("error", err.Error()))
		return
	}
	if err := s.backend.Put(key, b); err != nil {
		s.logger.Warn("draft: save failed", slog.String("key", string(key)), slog.String("error", err.Error()))
	}
}

// Clear removes the given slots.
func (s *Store) Clear(keys ...Key) {
	if err := s.backend.Delete(keys...); err != nil {
		s.logger.Warn("draft: clear failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

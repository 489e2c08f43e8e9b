package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-builder/internal/draft"
	"resume-builder/internal/model"
)

func TestSessions(t *testing.T) {
	mem := draft.NewMemory()
	created := 0
	factory := func(id string) (*Builder, error) {
		created++
		doc := NewDocument(draft.NewStore(mem.Backend(id), discardLogger()), nil, discardLogger())
		return NewBuilder(doc, BuilderConfig{Logger: discardLogger()}), nil
	}
	now := time.Unix(1_700_000_000, 0)
	s := NewSessions(factory, time.Minute, discardLogger())
	s.now = func() time.Time { return now }

	a1, err := s.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := s.Get("a")
	if a1 != a2 || created != 1 {
		t.Fatalf("Get is not memoized (created=%d)", created)
	}
	if _, err := s.Lookup("b"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Lookup(b) err = %v", err)
	}
	a1.Document().AddSkill("Go")

	now = now.Add(2 * time.Minute)
	if n := s.Evict(); n != 1 || s.Len() != 0 {
		t.Fatalf("evicted %d, %d left", n, s.Len())
	}

	// drafts survive eviction
	again, _ := s.Get("a")
	if again == a1 || len(again.Document().ResumeData().Skills) != 1 {
		t.Errorf("rehydrated session skills = %v", again.Document().ResumeData().Skills)
	}
}

func TestSessionsRehydrate(t *testing.T) {
	mem := draft.NewMemory()
	s := NewSessions(func(id string) (*Builder, error) {
		return NewBuilder(NewDocument(draft.NewStore(mem.Backend(id), nil), nil, discardLogger()), BuilderConfig{}), nil
	}, time.Hour, discardLogger())

	b, _ := s.Get("x")
	// another process writes the template slot
	other := draft.NewStore(mem.Backend("x"), nil)
	other.Save(draft.KeyTemplate, model.TemplateTech)

	s.Rehydrate("x")
	if b.Document().Template() != model.TemplateTech {
		t.Errorf("template = %q after rehydrate", b.Document().Template())
	}
	s.Rehydrate("not-live")
	if s.Len() != 1 {
		t.Error("Rehydrate created a session")
	}
}

func TestSessionsRunStopsWithContext(t *testing.T) {
	s := NewSessions(nil, time.Minute, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

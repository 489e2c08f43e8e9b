package migration

import "testing"

func TestMigrationsOrder(t *testing.T) {
	ms := Migrations()
	if len(ms) == 0 {
		t.Fatal("no migrations")
	}
	if ms[0].Name != "create_resume_drafts" {
		t.Errorf("first migration = %q, table must exist before its index", ms[0].Name)
	}
	seen := map[string]bool{}
	for _, m := range ms {
		if m.Up == nil {
			t.Errorf("migration %q has no Up", m.Name)
		}
		if seen[m.Name] {
			t.Errorf("duplicate migration %q", m.Name)
		}
		seen[m.Name] = true
	}
}

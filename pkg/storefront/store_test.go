package storefront

import (
	"testing"
)

func TestMemoryStore_CopiesData(t *testing.T) {
	s := NewMemoryStore()
	if data, err := s.Load(); err != nil || data != nil {
		t.Fatalf("Load() on empty store = %v, %v", data, err)
	}
	in := []byte(`{"a":1}`)
	_ = s.Save(in)
	in[2] = 'z'
	data, _ := s.Load()
	if string(data) != `{"a":1}` {
		t.Errorf("Load() = %s", data)
	}
}

func TestBadgerStore_InMemory(t *testing.T) {
	s, err := OpenBadgerStore("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if data, err := s.Load(); err != nil || data != nil {
		t.Fatalf("Load() on empty store = %v, %v", data, err)
	}
	tr := NewTracker(s, nil)
	_ = tr.Record("アウター")
	_ = tr.Record("アウター")
	if got, _ := tr.Preferred(); got != "アウター" {
		t.Errorf("Preferred() = %q", got)
	}
}

func TestBadgerStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := NewTracker(s, nil).Record("トップス"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	data, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"トップス":1}` {
		t.Errorf("Load() = %s", data)
	}
}

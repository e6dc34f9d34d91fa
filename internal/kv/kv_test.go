package kv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type prefs struct {
	Q     string `json:"q"`
	Month string `json:"month"`
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	if _, err := s.Get(KeyFilters); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}

	if err := SetJSON(s, KeyFilters, prefs{Q: "coffee", Month: "2025-09"}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var got prefs
	if err := GetJSON(s, KeyFilters, &got); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got.Q != "coffee" || got.Month != "2025-09" {
		t.Errorf("GetJSON = %+v", got)
	}

	if err := s.Set(KeyDarkMode, []byte("true")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete(KeyFilters); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(KeyFilters); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete: err = %v, want ErrNotFound", err)
	}
	if v, err := s.Get(KeyDarkMode); err != nil || string(v) != "true" {
		t.Errorf("Get(%s) = %q, %v", KeyDarkMode, v, err)
	}
	if err := s.Delete("never-set"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	_ = m.Set("k", buf)
	buf[0] = 'z'
	v, _ := m.Get("k")
	if string(v) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", v)
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.toml")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	exerciseStore(t, s)

	// A second handle sees what the first wrote.
	s2, _ := OpenFile(path)
	if v, err := s2.Get(KeyDarkMode); err != nil || string(v) != "true" {
		t.Errorf("reopened Get = %q, %v", v, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("state file mode = %o, want 600", perm)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	if err := os.WriteFile(path, []byte("entries = [[[ not toml"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, _ := OpenFile(path)
	if _, err := s.Get(KeyBudgets); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get on corrupt file: err = %v, want parse error", err)
	}
	if err := s.Set(KeyBudgets, []byte("{}")); err == nil {
		t.Error("Set on corrupt file succeeded")
	}
}

func TestGetJSONDecodeError(t *testing.T) {
	m := NewMemory()
	_ = m.Set(KeyFilters, []byte("{not json"))
	var p prefs
	if err := GetJSON(m, KeyFilters, &p); err == nil {
		t.Error("GetJSON decoded garbage")
	}
}

package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	want := []byte(`{"nodes":[]}`)
	if err := s.Save(context.Background(), want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Load() = %s, want %s", got, want)
	}
	if s.Location() != path {
		t.Errorf("Location() = %s, want %s", s.Location(), path)
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	data, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if data != nil {
		t.Errorf("Load() = %s, want nil for a missing file", data)
	}
}

func TestFileStore_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "team.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	if err := s.Save(context.Background(), []byte("{}")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("chart file not created: %v", err)
	}
}

func TestFileStore_OverwriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "team.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	if err := s.Save(context.Background(), []byte("v1")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Save(context.Background(), []byte("v2")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, _ := s.Load(context.Background())
	if string(got) != "v2" {
		t.Errorf("Load() = %s, want v2", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestFileStore_RejectsBadPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("NewFileStore(\"\") succeeded, want error")
	}
	if _, err := NewFileStore("bad\x00path.json"); err == nil {
		t.Error("NewFileStore() accepted a path with a null byte")
	}
}

func TestMemStore_RoundTrip(t *testing.T) {
	s := NewMemStore()

	if data, err := s.Load(context.Background()); err != nil || data != nil {
		t.Fatalf("Load() = %v, %v before first save, want nil, nil", data, err)
	}

	orig := []byte("payload")
	if err := s.Save(context.Background(), orig); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !bytes.Equal(got, orig) {
		t.Errorf("Load() = %s, want %s", got, orig)
	}

	// The store must be isolated from caller mutations.
	orig[0] = 'X'
	got[1] = 'Y'
	again, _ := s.Load(context.Background())
	if string(again) != "payload" {
		t.Errorf("Load() = %s after caller mutations, want payload", again)
	}
}

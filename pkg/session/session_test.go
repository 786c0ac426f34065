package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/errors"
)

func TestSessionAddRemoveReset(t *testing.T) {
	s := New(DefaultTTL)
	if s.ID == "" {
		t.Fatal("New() should assign an ID")
	}

	a, err := s.Add(Entry{Name: "a.png", Data: []byte("a"), Category: catalog.Back, Copies: 2})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Add(Entry{Name: "b.png", Data: []byte("b"), Category: catalog.Front5, Copies: 5}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if s.Len() != 2 || s.Copies() != 7 {
		t.Errorf("Len, Copies = %d, %d; want 2, 7", s.Len(), s.Copies())
	}
	if a.ID == "" || a.AddedAt.IsZero() {
		t.Error("Add should fill ID and AddedAt")
	}

	if !s.Remove(a.ID) {
		t.Error("Remove(existing) = false")
	}
	if s.Remove(a.ID) {
		t.Error("Remove(removed) = true")
	}
	if s.Entries[0].Name != "b.png" {
		t.Errorf("remaining entry = %s, want b.png", s.Entries[0].Name)
	}

	s.Reset()
	if s.Len() != 0 || s.Copies() != 0 {
		t.Errorf("after Reset: Len %d, Copies %d", s.Len(), s.Copies())
	}
}

func TestSessionAddValidation(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		code  errors.Code
	}{
		{"zero copies", Entry{Name: "a.png", Data: []byte("x"), Copies: 0}, errors.ErrCodeInvalidRequest},
		{"path in name", Entry{Name: "../a.png", Data: []byte("x"), Copies: 1}, errors.ErrCodeInvalidInput},
		{"no content", Entry{Name: "a.png", Copies: 1}, errors.ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(DefaultTTL)
			if _, err := s.Add(tt.entry); !errors.Is(err, tt.code) {
				t.Errorf("Add() error = %v, want %s", err, tt.code)
			}
			if s.Len() != 0 {
				t.Error("rejected entry should not be stored")
			}
		})
	}
}

func TestEntryOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, []byte("png bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := Entry{Name: "logo.png", Path: path}.Open()
	if err != nil || string(data) != "png bytes" {
		t.Errorf("Open(path) = %q, %v", data, err)
	}
	data, err = Entry{Name: "inline", Data: []byte("inline")}.Open()
	if err != nil || string(data) != "inline" {
		t.Errorf("Open(data) = %q, %v", data, err)
	}
	if _, err := (Entry{Name: "gone", Path: path + ".missing"}).Open(); !errors.Is(err, errors.ErrCodeDecodeFailure) {
		t.Errorf("Open(missing) error = %v", err)
	}
}

func testStores(t *testing.T) map[string]Store {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{"memory": NewMemoryStore(), "file": fs}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			if got, err := store.Get(ctx, "missing"); got != nil || err != nil {
				t.Errorf("Get(missing) = %v, %v; want nil, nil", got, err)
			}

			s := New(time.Hour)
			_, _ = s.Add(Entry{Name: "a.png", Data: []byte{1, 2, 3}, Category: catalog.Front7, Copies: 3})
			if err := store.Set(ctx, s); err != nil {
				t.Fatalf("Set: %v", err)
			}

			got, err := store.Get(ctx, s.ID)
			if err != nil || got == nil {
				t.Fatalf("Get = %v, %v", got, err)
			}
			if got.Len() != 1 || got.Entries[0].Category != catalog.Front7 || string(got.Entries[0].Data) != "\x01\x02\x03" {
				t.Errorf("round-tripped session = %+v", got.Entries)
			}

			// Mutating the returned copy must not leak into the store.
			got.Reset()
			again, _ := store.Get(ctx, s.ID)
			if again.Len() != 1 {
				t.Error("store should hold its own copy")
			}

			if err := store.Delete(ctx, s.ID); err != nil {
				t.Errorf("Delete: %v", err)
			}
			if got, _ := store.Get(ctx, s.ID); got != nil {
				t.Error("session should be gone after Delete")
			}
		})
	}
}

func TestStoresExpiry(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			old := New(time.Hour)
			old.ExpiresAt = time.Now().Add(-time.Minute)
			fresh := New(time.Hour)
			_ = store.Set(ctx, old)
			_ = store.Set(ctx, fresh)

			if err := store.Cleanup(ctx); err != nil {
				t.Fatalf("Cleanup: %v", err)
			}
			if got, _ := store.Get(ctx, old.ID); got != nil {
				t.Error("expired session should be removed")
			}
			if got, _ := store.Get(ctx, fresh.ID); got == nil {
				t.Error("fresh session should survive Cleanup")
			}
		})
	}
}

func TestCLIStore(t *testing.T) {
	ctx := context.Background()
	c, err := NewCLIStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	s, err := c.Load(ctx)
	if err != nil || s.Len() != 0 {
		t.Fatalf("Load on fresh store = %v, %v", s, err)
	}
	_, _ = s.Add(Entry{Name: "back.png", Path: "/tmp/back.png", Category: catalog.Back, Copies: 10})
	if err := c.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(c.Path()); err != nil {
		t.Errorf("session file missing: %v", err)
	}

	again, _ := c.Load(ctx)
	if again.Copies() != 10 {
		t.Errorf("reloaded copies = %d, want 10", again.Copies())
	}

	if err := c.Delete(ctx); err != nil {
		t.Fatal(err)
	}
	empty, _ := c.Load(ctx)
	if empty.Len() != 0 {
		t.Error("Load after Delete should start empty")
	}
}

// Package session accumulates design requests across several interactions
// before a single montage run.
//
// A [Session] is an explicit, caller-owned list of entries. The CLI keeps one
// in a JSON file so that "gangsheet session add" can be called once per
// design; the HTTP server keeps one per client in a [Store]. Nothing is held
// in package-level state: whoever owns the session passes it to the run and
// calls [Session.Reset] when the batch is done.
//
// Stores:
//   - [MemoryStore]: in-process map, for the server and tests
//   - [FileStore]: JSON files under ~/.config/gangsheet/sessions/, for the CLI
package session

import (
	"context"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/errors"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 7 * 24 * time.Hour

// Entry is one accumulated design request. Exactly one of Path and Data is
// set: the CLI records file paths, the server records uploaded bytes.
type Entry struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Path     string           `json:"path,omitempty"`
	Data     []byte           `json:"data,omitempty"`
	Category catalog.Category `json:"category"`
	Copies   int              `json:"copies"`
	AddedAt  time.Time        `json:"added_at"`
}

// Open returns the encoded design bytes.
func (e Entry) Open() ([]byte, error) {
	if e.Data != nil {
		return e.Data, nil
	}
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "read %s", e.Name)
	}
	return data, nil
}

// Session is an ordered list of design requests.
type Session struct {
	ID        string    `json:"id"`
	Entries   []Entry   `json:"entries"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New creates an empty session with a random ID.
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Add appends an entry after checking its copy count and name. The entry's
// ID and timestamp are filled in and the stored entry is returned.
func (s *Session) Add(e Entry) (Entry, error) {
	if err := errors.ValidateCopies(e.Copies); err != nil {
		return Entry{}, err
	}
	if err := errors.ValidateAssetName(e.Name); err != nil {
		return Entry{}, err
	}
	if e.Path == "" && e.Data == nil {
		return Entry{}, errors.New(errors.ErrCodeInvalidRequest, "%s has no content", e.Name)
	}
	e.ID = uuid.NewString()
	e.AddedAt = time.Now()
	s.Entries = append(s.Entries, e)
	s.touch()
	return e, nil
}

// Remove deletes the entry with the given ID and reports whether it existed.
func (s *Session) Remove(id string) bool {
	i := slices.IndexFunc(s.Entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return false
	}
	s.Entries = slices.Delete(s.Entries, i, i+1)
	s.touch()
	return true
}

// Reset drops every entry, keeping the session itself.
func (s *Session) Reset() {
	s.Entries = nil
	s.touch()
}

// Len returns the number of entries.
func (s *Session) Len() int { return len(s.Entries) }

// Copies returns the total number of copies requested.
func (s *Session) Copies() int {
	n := 0
	for _, e := range s.Entries {
		n += e.Copies
	}
	return n
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
	if !s.ExpiresAt.IsZero() {
		s.ExpiresAt = s.UpdatedAt.Add(DefaultTTL)
	}
}

// Store persists sessions.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error

	// Close releases resources.
	Close() error
}

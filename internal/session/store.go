package session

import (
	"context"
	"sync"
)

// User is the canonical authenticated-user snapshot. PhotoURL is the single
// canonical photo field; the two wire spellings (photoUrl / photourl) are
// translated at the API serialization boundary, never here.
type User struct {
	ID       string
	Name     string
	Email    string
	PhotoURL string
	Age      int
	Gender   string
	About    string
	Skills   []string
	Role     string
}

// Store is the goroutine-safe holder of the current session user. A nil
// snapshot means "not authenticated".
type Store struct {
	mu   sync.RWMutex
	user *User
}

// NewStore returns an empty store with no authenticated user.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the snapshot wholesale with a fresh server snapshot.
func (s *Store) Set(u User) {
	s.mu.Lock()
	cp := u
	cp.Skills = append([]string(nil), u.Skills...)
	s.user = &cp
	s.mu.Unlock()
}

// Clear drops the snapshot, returning the store to the unauthenticated state.
func (s *Store) Clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// Current returns a copy of the snapshot and whether a user is set.
func (s *Store) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	cp := *s.user
	cp.Skills = append([]string(nil), s.user.Skills...)
	return cp, true
}

// Authenticated reports whether a session user is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Prober fetches the server's view of the current session user. The API
// client satisfies it.
type Prober interface {
	ProfileView(ctx context.Context) (User, error)
}

// Probe refreshes the snapshot from the server. On any error the snapshot is
// left untouched; the caller distinguishes "not logged in" from transport
// failures by inspecting the error.
func (s *Store) Probe(ctx context.Context, p Prober) error {
	u, err := p.ProfileView(ctx)
	if err != nil {
		return err
	}
	s.Set(u)
	return nil
}

// Update applies fn to a copy of the current user and stores the result.
// It is a no-op when no user is set. Profile edits merge through here; full
// server snapshots go through Set.
func (s *Store) Update(fn func(*User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	cp := *s.user
	cp.Skills = append([]string(nil), s.user.Skills...)
	fn(&cp)
	s.user = &cp
}

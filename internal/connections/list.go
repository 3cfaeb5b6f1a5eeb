// Package connections holds the accepted-connections list and the navigation
// bundle a chat view needs when opened from it.
package connections

import (
	"context"
	"fmt"
	"sync"

	"github.com/ArponRoy7/codemate-go/internal/api"
	"github.com/ArponRoy7/codemate-go/internal/session"
)

// List is the accepted-connections collection. It is goroutine-safe.
type List struct {
	api *api.Client

	mu    sync.Mutex
	users []session.User
}

// New creates an empty List.
func New(client *api.Client) *List {
	return &List{api: client}
}

// Load fetches the connections from the server, replacing the local list.
func (l *List) Load(ctx context.Context) error {
	users, err := l.api.Connections(ctx)
	if err != nil {
		return fmt.Errorf("load connections: %w", err)
	}
	l.mu.Lock()
	l.users = users
	l.mu.Unlock()
	return nil
}

// Users returns a copy of the list in order.
func (l *List) Users() []session.User {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]session.User, len(l.users))
	copy(out, l.users)
	return out
}

// PushFront inserts a freshly accepted connection at the head of the list.
// A user already present is moved to the front rather than duplicated.
func (l *List) PushFront(u session.User) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.users {
		if existing.ID == u.ID {
			l.users = append(l.users[:i], l.users[i+1:]...)
			break
		}
	}
	l.users = append([]session.User{u}, l.users...)
}

// Find looks a connection up by user ID.
func (l *List) Find(id string) (session.User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range l.users {
		if u.ID == id {
			return u, true
		}
	}
	return session.User{}, false
}

// NavProfile returns the display bundle to hand a chat view opened from this
// list, or nil when the user is not a connection. Handing it over lets the
// chat skip its profile lookup.
func (l *List) NavProfile(id string) *api.Profile {
	u, ok := l.Find(id)
	if !ok || u.Name == "" || u.PhotoURL == "" {
		return nil
	}
	return &api.Profile{Name: u.Name, PhotoURL: u.PhotoURL}
}

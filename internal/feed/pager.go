// Package feed holds the paginated discovery feed state: the current page of
// candidate users, the search/sort parameters, and the optimistic card
// removal that follows an interested/ignored action.
package feed

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ArponRoy7/codemate-go/internal/api"
	"github.com/ArponRoy7/codemate-go/internal/session"
)

// DefaultLimit is the page size used when the caller does not pick one.
const DefaultLimit = 10

// Pager drives the discovery feed one page at a time. It is goroutine-safe.
type Pager struct {
	api *api.Client

	mu        sync.Mutex
	page      int
	limit     int
	search    string
	sortBy    string
	sortOrder string

	users       []session.User
	currentPage int
	pageSize    int
	totalUsers  int
}

// New creates a Pager positioned on page 1. A non-positive limit falls back
// to DefaultLimit.
func New(client *api.Client, limit int) *Pager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Pager{api: client, page: 1, limit: limit}
}

// Load fetches the current page from the server, replacing the local cards
// and pagination metadata.
func (p *Pager) Load(ctx context.Context) error {
	p.mu.Lock()
	q := api.FeedQuery{
		Page:      p.page,
		Limit:     p.limit,
		Search:    p.search,
		SortBy:    p.sortBy,
		SortOrder: p.sortOrder,
	}
	p.mu.Unlock()

	page, err := p.api.Feed(ctx, q)
	if err != nil {
		return fmt.Errorf("load feed page %d: %w", q.Page, err)
	}

	p.mu.Lock()
	p.users = page.Users
	p.currentPage = page.CurrentPage
	p.pageSize = page.PageSize
	p.totalUsers = page.TotalUsers
	p.mu.Unlock()
	return nil
}

// Users returns a copy of the current page's cards.
func (p *Pager) Users() []session.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]session.User, len(p.users))
	copy(out, p.users)
	return out
}

// HasNext reports whether another page exists beyond the current one.
func (p *Pager) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasNextLocked()
}

func (p *Pager) hasNextLocked() bool {
	return p.currentPage*p.pageSize < p.totalUsers
}

// HasPrev reports whether a previous page exists.
func (p *Pager) HasPrev() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentPage > 1
}

// RangeText renders the pagination summary, e.g. "1–2 of 5".
func (p *Pager) RangeText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.users) == 0 {
		return fmt.Sprintf("0 of %d", p.totalUsers)
	}
	first := (p.currentPage-1)*p.pageSize + 1
	last := first + len(p.users) - 1
	return fmt.Sprintf("%d–%d of %d", first, last, p.totalUsers)
}

// Next advances to the next page and loads it. Without a next page it is a
// no-op.
func (p *Pager) Next(ctx context.Context) error {
	p.mu.Lock()
	if !p.hasNextLocked() {
		p.mu.Unlock()
		return nil
	}
	p.page = p.currentPage + 1
	p.mu.Unlock()
	return p.Load(ctx)
}

// Prev steps back one page and loads it. On page 1 it is a no-op.
func (p *Pager) Prev(ctx context.Context) error {
	p.mu.Lock()
	if p.currentPage <= 1 {
		p.mu.Unlock()
		return nil
	}
	p.page = p.currentPage - 1
	p.mu.Unlock()
	return p.Load(ctx)
}

// SetSearch replaces the search term and resets pagination to page 1. The
// caller reloads afterwards.
func (p *Pager) SetSearch(term string) {
	p.mu.Lock()
	p.search = term
	p.page = 1
	p.mu.Unlock()
}

// SetSort replaces the sort parameters and resets pagination to page 1.
func (p *Pager) SetSort(by, order string) {
	p.mu.Lock()
	p.sortBy = by
	p.sortOrder = order
	p.page = 1
	p.mu.Unlock()
}

// Act fires an interested or ignored action at the given card. The card is
// removed locally no matter how the request ends: duplicates are already
// swallowed by the API layer, and any other failure is logged without
// restoring the card. When the removal empties the page and more users
// remain, the pager advances and reloads.
func (p *Pager) Act(ctx context.Context, action api.RequestAction, userID string) error {
	err := p.api.SendRequest(ctx, action, userID)
	if err != nil {
		log.Printf("[feed] %s action on %s failed: %v", action, userID, err)
	}

	p.mu.Lock()
	p.removeLocked(userID)
	refill := len(p.users) == 0 && p.hasNextLocked()
	if refill {
		p.page = p.currentPage + 1
	}
	p.mu.Unlock()

	if refill {
		if loadErr := p.Load(ctx); loadErr != nil && err == nil {
			err = loadErr
		}
	}
	return err
}

func (p *Pager) removeLocked(userID string) {
	for i, u := range p.users {
		if u.ID == userID {
			p.users = append(p.users[:i], p.users[i+1:]...)
			return
		}
	}
}

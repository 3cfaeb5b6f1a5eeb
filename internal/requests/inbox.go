// Package requests holds the inbox of pending incoming connection requests
// and the accept/reject flow.
package requests

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ArponRoy7/codemate-go/internal/api"
	"github.com/ArponRoy7/codemate-go/internal/connections"
)

// Inbox is the received-requests collection. It is goroutine-safe.
type Inbox struct {
	api   *api.Client
	conns *connections.List

	mu    sync.Mutex
	items []api.ReceivedRequest
}

// New creates an empty Inbox. conns may be nil when no connections list is
// kept; accepted senders are then simply dropped from local state.
func New(client *api.Client, conns *connections.List) *Inbox {
	return &Inbox{api: client, conns: conns}
}

// Load fetches the pending requests, replacing the local list.
func (b *Inbox) Load(ctx context.Context) error {
	items, err := b.api.ReceivedRequests(ctx)
	if err != nil {
		return fmt.Errorf("load requests: %w", err)
	}
	b.mu.Lock()
	b.items = items
	b.mu.Unlock()
	return nil
}

// Items returns a copy of the pending requests in order.
func (b *Inbox) Items() []api.ReceivedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]api.ReceivedRequest, len(b.items))
	copy(out, b.items)
	return out
}

// Review accepts or rejects the request with the given ID. The item leaves
// the inbox whatever the server says; a failure is logged and returned but
// never restores the card. A successful accept pushes the sender onto the
// front of the connections list.
func (b *Inbox) Review(ctx context.Context, status api.ReviewStatus, requestID string) error {
	b.mu.Lock()
	var reviewed *api.ReceivedRequest
	for i := range b.items {
		if b.items[i].ID == requestID {
			reviewed = &b.items[i]
			break
		}
	}
	b.mu.Unlock()
	if reviewed == nil {
		return fmt.Errorf("review request: no pending request %s", requestID)
	}
	sender := reviewed.From

	err := b.api.ReviewRequest(ctx, status, requestID)
	if err != nil {
		log.Printf("[requests] review %s %s failed: %v", status, requestID, err)
	}

	b.mu.Lock()
	for i := range b.items {
		if b.items[i].ID == requestID {
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}
	b.mu.Unlock()

	if err == nil && status == api.ReviewAccepted && b.conns != nil {
		b.conns.PushFront(sender)
	}
	return err
}

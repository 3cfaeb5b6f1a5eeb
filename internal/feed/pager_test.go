package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ArponRoy7/codemate-go/internal/api"
)

// feedServer serves /user/feed from an in-memory user list, honoring page
// and limit, and records interested/ignored posts.
type feedServer struct {
	mu      sync.Mutex
	total   int
	actions []string // "action:userID"
	dupFor  string   // userID whose request already exists
}

func (s *feedServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/feed":
			s.mu.Lock()
			total := s.total
			s.mu.Unlock()
			page := atoiDefault(r.URL.Query().Get("page"), 1)
			limit := atoiDefault(r.URL.Query().Get("limit"), 10)

			start := (page - 1) * limit
			var users []map[string]string
			for i := start; i < total && i < start+limit; i++ {
				users = append(users, map[string]string{
					"_id":  fmt.Sprintf("u%d", i+1),
					"name": fmt.Sprintf("User %d", i+1),
				})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"users":       users,
				"currentPage": page,
				"pageSize":    limit,
				"totalUsers":  total,
			})
		case len(r.URL.Path) > len("/request/send/"):
			// /request/send/{action}/{userID}
			rest := r.URL.Path[len("/request/send/"):]
			s.mu.Lock()
			s.actions = append(s.actions, rest)
			dup := s.dupFor != "" && rest == "interested/"+s.dupFor
			s.mu.Unlock()
			if dup {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message": "connection request already exists"}`))
				return
			}
			w.Write([]byte(`{"message": "ok"}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func atoiDefault(s string, def int) int {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 1 {
		return def
	}
	return n
}

func newTestPager(t *testing.T, srv *feedServer, limit int) *Pager {
	t.Helper()
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)
	return New(api.New(ts.URL, 3*time.Second), limit)
}

func TestPagerRangeAndNavigation(t *testing.T) {
	srv := &feedServer{total: 5}
	p := newTestPager(t, srv, 2)

	ctx := context.Background()
	if err := p.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := p.RangeText(); got != "1–2 of 5" {
		t.Errorf("range = %q, want %q", got, "1–2 of 5")
	}
	if !p.HasNext() {
		t.Error("expected next page from page 1 of 5 users")
	}
	if p.HasPrev() {
		t.Error("unexpected prev on page 1")
	}

	if err := p.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := p.RangeText(); got != "3–4 of 5" {
		t.Errorf("page 2 range = %q", got)
	}

	if err := p.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := p.RangeText(); got != "5–5 of 5" {
		t.Errorf("page 3 range = %q", got)
	}
	if p.HasNext() {
		t.Error("unexpected next on last page")
	}
	if !p.HasPrev() {
		t.Error("expected prev on last page")
	}

	// Next on the last page is a no-op.
	if err := p.Next(ctx); err != nil {
		t.Fatalf("next past end: %v", err)
	}
	if got := p.RangeText(); got != "5–5 of 5" {
		t.Errorf("range moved past end: %q", got)
	}
}

func TestPagerSetSearchResetsPage(t *testing.T) {
	srv := &feedServer{total: 5}
	p := newTestPager(t, srv, 2)

	ctx := context.Background()
	if err := p.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := p.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}

	p.SetSearch("dev")
	if err := p.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := p.RangeText(); got != "1–2 of 5" {
		t.Errorf("search did not reset to page 1: %q", got)
	}
}

func TestActRemovesCardDespiteDuplicate(t *testing.T) {
	srv := &feedServer{total: 5, dupFor: "u1"}
	p := newTestPager(t, srv, 2)

	ctx := context.Background()
	if err := p.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Server says the request already exists; the card still goes away
	// and no error surfaces.
	if err := p.Act(ctx, api.ActionInterested, "u1"); err != nil {
		t.Fatalf("act: %v", err)
	}
	for _, u := range p.Users() {
		if u.ID == "u1" {
			t.Error("acted-on card still present")
		}
	}
}

func TestActAdvancesWhenPageEmpties(t *testing.T) {
	srv := &feedServer{total: 5}
	p := newTestPager(t, srv, 2)

	ctx := context.Background()
	if err := p.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := p.Act(ctx, api.ActionIgnored, "u1"); err != nil {
		t.Fatalf("act: %v", err)
	}
	if n := len(p.Users()); n != 1 {
		t.Fatalf("expected 1 card left, got %d", n)
	}

	// Emptying the page pulls in the next one.
	if err := p.Act(ctx, api.ActionInterested, "u2"); err != nil {
		t.Fatalf("act: %v", err)
	}
	users := p.Users()
	if len(users) != 2 || users[0].ID != "u3" {
		t.Errorf("expected page advance to u3/u4, got %+v", users)
	}

	srv.mu.Lock()
	n := len(srv.actions)
	srv.mu.Unlock()
	if n != 2 {
		t.Errorf("expected 2 recorded actions, got %d", n)
	}
}

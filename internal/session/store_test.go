package session

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestSetAndCurrent(t *testing.T) {
	s := NewStore()

	if s.Authenticated() {
		t.Fatal("new store should not be authenticated")
	}
	if _, ok := s.Current(); ok {
		t.Fatal("expected no current user")
	}

	s.Set(User{ID: "u1", Name: "Arpon", Skills: []string{"go", "react"}})

	u, ok := s.Current()
	if !ok {
		t.Fatal("expected a current user")
	}
	if u.ID != "u1" || u.Name != "Arpon" {
		t.Errorf("unexpected user: %+v", u)
	}

	// Mutating the returned copy must not affect the store.
	u.Skills[0] = "mutated"
	again, _ := s.Current()
	if again.Skills[0] != "go" {
		t.Error("Current returned a live reference to internal state")
	}
}

func TestSetReplacesWholesale(t *testing.T) {
	s := NewStore()
	s.Set(User{ID: "u1", About: "old bio", Skills: []string{"go"}})
	s.Set(User{ID: "u1", Name: "Fresh"})

	u, _ := s.Current()
	if u.About != "" {
		t.Errorf("expected wholesale replace, but About survived: %q", u.About)
	}
	if len(u.Skills) != 0 {
		t.Errorf("expected wholesale replace, but Skills survived: %v", u.Skills)
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Set(User{ID: "u1"})
	s.Clear()

	if s.Authenticated() {
		t.Fatal("expected unauthenticated after Clear")
	}
}

func TestUpdateMerges(t *testing.T) {
	s := NewStore()
	s.Set(User{ID: "u1", Name: "Arpon", About: "bio"})

	s.Update(func(u *User) {
		u.About = "new bio"
	})

	u, _ := s.Current()
	if u.About != "new bio" {
		t.Errorf("expected merged About, got %q", u.About)
	}
	if u.Name != "Arpon" {
		t.Errorf("unrelated field changed: %q", u.Name)
	}
}

func TestUpdateNoUserIsNoop(t *testing.T) {
	s := NewStore()
	s.Update(func(u *User) { u.Name = "ghost" })
	if s.Authenticated() {
		t.Fatal("Update on empty store must not create a user")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	s.Set(User{ID: "u1"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Set(User{ID: "u1", Name: "x"})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Current()
		}()
	}
	wg.Wait()
}

type fakeProber struct {
	user User
	err  error
}

func (f fakeProber) ProfileView(ctx context.Context) (User, error) {
	return f.user, f.err
}

func TestProbeSetsSnapshot(t *testing.T) {
	s := NewStore()
	if err := s.Probe(context.Background(), fakeProber{user: User{ID: "u1", Name: "Arpan"}}); err != nil {
		t.Fatalf("probe: %v", err)
	}
	u, ok := s.Current()
	if !ok || u.Name != "Arpan" {
		t.Errorf("snapshot after probe = %+v, %v", u, ok)
	}
}

func TestProbeFailureLeavesSnapshot(t *testing.T) {
	s := NewStore()
	s.Set(User{ID: "u1", Name: "Arpan"})

	probeErr := errors.New("boom")
	if err := s.Probe(context.Background(), fakeProber{err: probeErr}); !errors.Is(err, probeErr) {
		t.Fatalf("probe error = %v", err)
	}
	if u, ok := s.Current(); !ok || u.Name != "Arpan" {
		t.Errorf("failed probe disturbed the snapshot: %+v, %v", u, ok)
	}
}

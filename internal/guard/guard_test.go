package guard

import (
	"testing"

	"github.com/ArponRoy7/codemate-go/internal/session"
)

func TestDecide_UnauthenticatedRedirectsPreservingPath(t *testing.T) {
	store := session.NewStore()

	d := Decide(store, "/connections", Options{})

	if d.Allow {
		t.Fatal("expected denial for unauthenticated user")
	}
	if d.RedirectTo != DefaultRedirect {
		t.Errorf("expected redirect to %q, got %q", DefaultRedirect, d.RedirectTo)
	}
	if d.From != "/connections" {
		t.Errorf("expected original path preserved, got %q", d.From)
	}
}

func TestDecide_AuthenticatedAllows(t *testing.T) {
	store := session.NewStore()
	store.Set(session.User{ID: "u1"})

	d := Decide(store, "/feed", Options{})
	if !d.Allow {
		t.Fatalf("expected allow, got %+v", d)
	}
}

func TestDecide_LoadingPendsBeforeAuthCheck(t *testing.T) {
	store := session.NewStore()

	d := Decide(store, "/feed", Options{Loading: true})
	if !d.Pending {
		t.Fatal("expected pending decision while loading")
	}
	if d.Allow || d.RedirectTo != "" {
		t.Errorf("loading must defer both allow and redirect: %+v", d)
	}
}

func TestDecide_RoleCheck(t *testing.T) {
	store := session.NewStore()
	store.Set(session.User{ID: "u1", Role: "member"})

	d := Decide(store, "/admin", Options{RequiredRole: "admin"})
	if d.Allow {
		t.Fatal("expected denial for wrong role")
	}
	if d.RedirectTo != "/" {
		t.Errorf("role failures redirect home, got %q", d.RedirectTo)
	}

	store.Set(session.User{ID: "u1", Role: "admin"})
	if d := Decide(store, "/admin", Options{RequiredRole: "admin"}); !d.Allow {
		t.Fatalf("expected allow for matching role, got %+v", d)
	}
}

func TestDecide_CustomRedirect(t *testing.T) {
	store := session.NewStore()

	d := Decide(store, "/premium", Options{RedirectTo: "/welcome"})
	if d.RedirectTo != "/welcome" {
		t.Errorf("expected custom redirect, got %q", d.RedirectTo)
	}
}

// Scenario: the probe 401s, the user logs in, and navigation resumes at the
// originally requested path.
func TestDecide_ReturnAfterLogin(t *testing.T) {
	store := session.NewStore()

	d := Decide(store, "/chat/u42", Options{})
	if d.Allow {
		t.Fatal("expected redirect before login")
	}

	store.Set(session.User{ID: "u1"})
	resumed := Decide(store, d.From, Options{})
	if !resumed.Allow || resumed.From != "/chat/u42" {
		t.Fatalf("expected resumed navigation to the original path, got %+v", resumed)
	}
}

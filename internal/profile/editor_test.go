package profile

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ArponRoy7/codemate-go/internal/api"
	"github.com/ArponRoy7/codemate-go/internal/session"
)

func seedStore() *session.Store {
	store := session.NewStore()
	store.Set(session.User{
		ID:     "u1",
		Name:   "Arpan",
		Age:    27,
		Gender: "male",
		About:  "dev",
		Skills: []string{"Go", "React"},
	})
	return store
}

// startProfileServer records PATCH bodies to /profile/update and echoes the
// changes back under updatedFields.
func startProfileServer(t *testing.T) (*api.Client, func() []map[string]interface{}) {
	t.Helper()
	var mu sync.Mutex
	var bodies []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profile/update" || r.Method != http.MethodPatch {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("bad patch body: %v", err)
		}
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "ok", "updatedFields": ` + string(raw) + `}`))
	}))
	t.Cleanup(srv.Close)
	client := api.New(srv.URL, 3*time.Second)
	return client, func() []map[string]interface{} {
		mu.Lock()
		defer mu.Unlock()
		return append([]map[string]interface{}(nil), bodies...)
	}
}

func TestSaveWithoutChangesSkipsNetwork(t *testing.T) {
	client, patches := startProfileServer(t)
	e, err := NewEditor(client, seedStore())
	if err != nil {
		t.Fatalf("editor: %v", err)
	}

	saved, err := e.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved {
		t.Error("unchanged form reported as saved")
	}
	if n := len(patches()); n != 0 {
		t.Errorf("empty diff made %d requests", n)
	}
}

func TestSaveSkillsReorderIsNoChange(t *testing.T) {
	client, patches := startProfileServer(t)
	e, err := NewEditor(client, seedStore())
	if err != nil {
		t.Fatalf("editor: %v", err)
	}

	// Same skills, different order and casing.
	e.mu.Lock()
	e.form.Skills = []string{"react", "GO"}
	e.mu.Unlock()

	saved, err := e.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved || len(patches()) != 0 {
		t.Error("reordered skills treated as a change")
	}
}

func TestSaveSendsOnlyChangedFields(t *testing.T) {
	client, patches := startProfileServer(t)
	store := seedStore()
	e, err := NewEditor(client, store)
	if err != nil {
		t.Fatalf("editor: %v", err)
	}

	e.SetAbout("building things")
	e.SetPhotoURL("http://img/new.png")

	saved, err := e.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !saved {
		t.Fatal("changed form not saved")
	}

	got := patches()
	if len(got) != 1 {
		t.Fatalf("expected 1 PATCH, got %d", len(got))
	}
	body := got[0]
	if body["about"] != "building things" {
		t.Errorf("about missing from payload: %v", body)
	}
	// Both photo spellings go on the wire.
	if body["photoUrl"] != "http://img/new.png" || body["photourl"] != "http://img/new.png" {
		t.Errorf("photo spellings missing: %v", body)
	}
	for _, key := range []string{"name", "age", "gender", "skills"} {
		if _, present := body[key]; present {
			t.Errorf("unchanged field %q sent", key)
		}
	}

	u, _ := store.Current()
	if u.About != "building things" || u.PhotoURL != "http://img/new.png" {
		t.Errorf("session user not merged: %+v", u)
	}
	// A second save with no further edits is quiet again.
	saved, err = e.Save(context.Background())
	if err != nil || saved {
		t.Errorf("re-save after merge: saved=%v err=%v", saved, err)
	}
}

func TestSaveRejectsBadAge(t *testing.T) {
	client, patches := startProfileServer(t)
	e, err := NewEditor(client, seedStore())
	if err != nil {
		t.Fatalf("editor: %v", err)
	}

	e.SetAge("abc")
	if _, err := e.Save(context.Background()); err == nil {
		t.Fatal("expected error for non-numeric age")
	}
	if len(patches()) != 0 {
		t.Error("invalid age still hit the network")
	}
}

func TestAddSkillRejectsDuplicates(t *testing.T) {
	client, _ := startProfileServer(t)
	e, err := NewEditor(client, seedStore())
	if err != nil {
		t.Fatalf("editor: %v", err)
	}

	if err := e.AddSkill("  go  "); err == nil {
		t.Error("case-insensitive duplicate accepted")
	}
	if err := e.AddSkill(" "); err == nil {
		t.Error("blank skill accepted")
	}
	if err := e.AddSkill("gRPC"); err != nil {
		t.Errorf("new skill rejected: %v", err)
	}
	f := e.Form()
	if len(f.Skills) != 3 || f.Skills[2] != "gRPC" {
		t.Errorf("skills = %v", f.Skills)
	}
}

func TestSetGender(t *testing.T) {
	client, _ := startProfileServer(t)
	e, err := NewEditor(client, seedStore())
	if err != nil {
		t.Fatalf("editor: %v", err)
	}

	if err := e.SetGender("Female "); err != nil {
		t.Errorf("valid gender rejected: %v", err)
	}
	if err := e.SetGender("robot"); err == nil {
		t.Error("invalid gender accepted")
	}
	if g := e.Form().Gender; g != "female" {
		t.Errorf("gender = %q", g)
	}
}

func TestValidateNewPassword(t *testing.T) {
	cases := []struct {
		pw string
		ok bool
	}{
		{"Aa1!aaaa", true},
		{"short1!", false},
		{"alllower1!", false},
		{"ALLUPPER1!", false},
		{"NoDigits!!", false},
		{"NoSymbol11", false},
	}
	for _, tc := range cases {
		err := ValidateNewPassword(tc.pw)
		if tc.ok && err != nil {
			t.Errorf("ValidateNewPassword(%q) = %v, want nil", tc.pw, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("ValidateNewPassword(%q) accepted", tc.pw)
		}
	}
}

func TestChangePasswordValidatesBeforeNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"message": "ok"}`))
	}))
	defer srv.Close()
	client := api.New(srv.URL, 3*time.Second)

	ctx := context.Background()
	if err := ChangePassword(ctx, client, "", "Aa1!aaaa", "Aa1!aaaa"); err == nil {
		t.Error("empty current password accepted")
	}
	if err := ChangePassword(ctx, client, "old", "weak", "weak"); err == nil {
		t.Error("weak password accepted")
	}
	if err := ChangePassword(ctx, client, "old", "Aa1!aaaa", "different"); err == nil {
		t.Error("mismatched confirmation accepted")
	}
	if calls != 0 {
		t.Errorf("validation failures made %d requests", calls)
	}

	if err := ChangePassword(ctx, client, "old", "Aa1!aaaa", "Aa1!aaaa"); err != nil {
		t.Errorf("valid change failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 request, got %d", calls)
	}
}

// Package profile implements the profile editor: a form seeded from the
// session user, a diff-based save that only sends changed fields, and the
// password change flow with its client-side validation.
package profile

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ArponRoy7/codemate-go/internal/api"
	"github.com/ArponRoy7/codemate-go/internal/session"
)

var genders = map[string]bool{"male": true, "female": true, "other": true}

// Form is the editable view of a profile. Age is kept as text the way the
// user types it; it is parsed at save time.
type Form struct {
	Name     string
	PhotoURL string
	Age      string
	Gender   string
	About    string
	Skills   []string
}

// Editor holds the form and the snapshot it was seeded from. It is
// goroutine-safe.
type Editor struct {
	api   *api.Client
	store *session.Store

	mu   sync.Mutex
	base session.User
	form Form
}

// NewEditor seeds an editor from the current session user.
func NewEditor(client *api.Client, store *session.Store) (*Editor, error) {
	u, ok := store.Current()
	if !ok {
		return nil, fmt.Errorf("profile editor: not authenticated")
	}
	return &Editor{api: client, store: store, base: u, form: formFromUser(u)}, nil
}

func formFromUser(u session.User) Form {
	f := Form{
		Name:     u.Name,
		PhotoURL: u.PhotoURL,
		Gender:   u.Gender,
		About:    u.About,
		Skills:   append([]string(nil), u.Skills...),
	}
	if u.Age > 0 {
		f.Age = strconv.Itoa(u.Age)
	}
	return f
}

// Form returns a copy of the current form state.
func (e *Editor) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := e.form
	f.Skills = append([]string(nil), e.form.Skills...)
	return f
}

// SetName replaces the name field.
func (e *Editor) SetName(v string) {
	e.mu.Lock()
	e.form.Name = v
	e.mu.Unlock()
}

// SetPhotoURL replaces the photo URL field.
func (e *Editor) SetPhotoURL(v string) {
	e.mu.Lock()
	e.form.PhotoURL = v
	e.mu.Unlock()
}

// SetAge replaces the age field with the raw text; parsing happens on save.
func (e *Editor) SetAge(v string) {
	e.mu.Lock()
	e.form.Age = strings.TrimSpace(v)
	e.mu.Unlock()
}

// SetGender replaces the gender field; only male, female and other are
// accepted.
func (e *Editor) SetGender(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	if !genders[v] {
		return fmt.Errorf("gender must be male, female or other")
	}
	e.mu.Lock()
	e.form.Gender = v
	e.mu.Unlock()
	return nil
}

// SetAbout replaces the about field.
func (e *Editor) SetAbout(v string) {
	e.mu.Lock()
	e.form.About = v
	e.mu.Unlock()
}

// AddSkill appends a trimmed skill, rejecting blanks and case-insensitive
// duplicates.
func (e *Editor) AddSkill(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("skill is empty")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.form.Skills {
		if strings.EqualFold(s, v) {
			return fmt.Errorf("skill %q already added", v)
		}
	}
	e.form.Skills = append(e.form.Skills, v)
	return nil
}

// RemoveSkill drops a skill by exact value.
func (e *Editor) RemoveSkill(v string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.form.Skills {
		if s == v {
			e.form.Skills = append(e.form.Skills[:i], e.form.Skills[i+1:]...)
			return
		}
	}
}

// sameSkills compares skill lists ignoring case and order.
func sameSkills(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	an := make([]string, len(a))
	bn := make([]string, len(b))
	for i, s := range a {
		an[i] = strings.ToLower(s)
	}
	for i, s := range b {
		bn[i] = strings.ToLower(s)
	}
	sort.Strings(an)
	sort.Strings(bn)
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
	}
	return true
}

// diff builds the partial update against the seeded snapshot.
func (e *Editor) diff() (api.ProfileDiff, error) {
	var d api.ProfileDiff
	if e.form.Name != e.base.Name {
		v := e.form.Name
		d.Name = &v
	}
	if e.form.PhotoURL != e.base.PhotoURL {
		v := e.form.PhotoURL
		d.PhotoURL = &v
	}
	if e.form.Age != "" {
		age, err := strconv.Atoi(e.form.Age)
		if err != nil || age < 0 {
			return api.ProfileDiff{}, fmt.Errorf("age %q is not a number", e.form.Age)
		}
		if age != e.base.Age {
			d.Age = &age
		}
	}
	if e.form.Gender != e.base.Gender {
		v := e.form.Gender
		d.Gender = &v
	}
	if e.form.About != e.base.About {
		v := e.form.About
		d.About = &v
	}
	if !sameSkills(e.form.Skills, e.base.Skills) {
		v := append([]string(nil), e.form.Skills...)
		d.Skills = &v
	}
	return d, nil
}

// Save sends the changed fields to the server and merges the echo into the
// session user. It returns false with a nil error when nothing changed;
// no request goes out in that case.
func (e *Editor) Save(ctx context.Context) (bool, error) {
	e.mu.Lock()
	d, err := e.diff()
	e.mu.Unlock()
	if err != nil {
		return false, err
	}
	if d.Empty() {
		return false, nil
	}

	echo, err := e.api.UpdateProfile(ctx, d)
	if err != nil {
		return false, fmt.Errorf("save profile: %w", err)
	}
	if echo.Empty() {
		echo = d
	}

	e.store.Update(func(u *session.User) { echo.ApplyTo(u) })

	e.mu.Lock()
	echo.ApplyTo(&e.base)
	e.form = formFromUser(e.base)
	e.mu.Unlock()
	return true, nil
}

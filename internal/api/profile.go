package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ArponRoy7/codemate-go/internal/session"
)

// ProfileDiff is a partial profile update. Nil fields are omitted from the
// PATCH payload entirely. The photo URL is carried under both wire spellings
// (photoUrl and photourl) because different backend routes read different
// keys; that translation lives here at the serialization boundary only.
type ProfileDiff struct {
	Name     *string
	PhotoURL *string
	Age      *int
	Gender   *string
	About    *string
	Skills   *[]string
}

// Empty reports whether the diff carries no changes at all.
func (d ProfileDiff) Empty() bool {
	return d.Name == nil && d.PhotoURL == nil && d.Age == nil &&
		d.Gender == nil && d.About == nil && d.Skills == nil
}

// MarshalJSON emits only the set fields, with the photo URL under both
// spellings.
func (d ProfileDiff) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{}
	if d.Name != nil {
		m["name"] = *d.Name
	}
	if d.PhotoURL != nil {
		m["photoUrl"] = *d.PhotoURL
		m["photourl"] = *d.PhotoURL
	}
	if d.Age != nil {
		m["age"] = *d.Age
	}
	if d.Gender != nil {
		m["gender"] = *d.Gender
	}
	if d.About != nil {
		m["about"] = *d.About
	}
	if d.Skills != nil {
		m["skills"] = *d.Skills
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts either photo spelling and tolerates a numeric or
// string age, mirroring the update-echo shapes the backend produces.
func (d *ProfileDiff) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      *string      `json:"name"`
		PhotoURL  *string      `json:"photoUrl"`
		PhotoURL2 *string      `json:"photourl"`
		Age       *json.Number `json:"age"`
		Gender    *string      `json:"gender"`
		About     *string      `json:"about"`
		Skills    *[]string    `json:"skills"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Name = raw.Name
	d.Gender = raw.Gender
	d.About = raw.About
	d.Skills = raw.Skills

	d.PhotoURL = raw.PhotoURL
	if d.PhotoURL == nil {
		d.PhotoURL = raw.PhotoURL2
	}

	d.Age = nil
	if raw.Age != nil {
		if n, err := raw.Age.Int64(); err == nil {
			age := int(n)
			d.Age = &age
		}
	}
	return nil
}

// ApplyTo merges the set fields into a user snapshot.
func (d ProfileDiff) ApplyTo(u *session.User) {
	if d.Name != nil {
		u.Name = *d.Name
	}
	if d.PhotoURL != nil {
		u.PhotoURL = *d.PhotoURL
	}
	if d.Age != nil {
		u.Age = *d.Age
	}
	if d.Gender != nil {
		u.Gender = *d.Gender
	}
	if d.About != nil {
		u.About = *d.About
	}
	if d.Skills != nil {
		u.Skills = append([]string(nil), (*d.Skills)...)
	}
}

// UpdateProfile PATCHes the diff and returns the fields the server echoed
// back, which may arrive under "updatedFields", under "data", or as the bare
// body. When the echo is absent or undecodable the request's own diff is the
// caller's best merge source.
func (c *Client) UpdateProfile(ctx context.Context, diff ProfileDiff) (ProfileDiff, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, "/profile/update", nil, diff, &raw); err != nil {
		return ProfileDiff{}, err
	}

	var wrapper struct {
		UpdatedFields json.RawMessage `json:"updatedFields"`
		Data          json.RawMessage `json:"data"`
	}
	payload := raw
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		if len(wrapper.UpdatedFields) > 0 {
			payload = wrapper.UpdatedFields
		} else if len(wrapper.Data) > 0 {
			payload = wrapper.Data
		}
	}

	var echo ProfileDiff
	if len(payload) > 0 {
		// Best effort; a malformed echo degrades to an empty diff.
		_ = json.Unmarshal(payload, &echo)
	}
	return echo, nil
}

// ChangePassword verifies nothing client-side; validation belongs to the
// profile editor. The backend field names are lowercase by contract.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{
		"oldpassword": oldPassword,
		"newpassword": newPassword,
	}
	return c.do(ctx, http.MethodPatch, "/profile/password", nil, body, nil)
}

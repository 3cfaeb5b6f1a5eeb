package api

import (
	"encoding/json"
	"strings"

	"github.com/ArponRoy7/codemate-go/internal/session"
)

// userDTO tolerates every shape the backend emits for a user: Mongo `_id` or
// plain `id`, a single `name` or a firstName/lastName pair, and both photo
// spellings. Normalization into the canonical session.User happens here and
// nowhere else.
type userDTO struct {
	MongoID   string      `json:"_id"`
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	PhotoURL  string      `json:"photoUrl"`
	PhotoURL2 string      `json:"photourl"`
	Age       json.Number `json:"age"`
	Gender    string      `json:"gender"`
	About     string      `json:"about"`
	Skills    []string    `json:"skills"`
	Role      string      `json:"role"`
}

// toUser folds the DTO into the canonical snapshot.
func (d userDTO) toUser() session.User {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
	}

	photo := d.PhotoURL
	if photo == "" {
		photo = d.PhotoURL2
	}

	age := 0
	if n, err := d.Age.Int64(); err == nil {
		age = int(n)
	}

	id := d.MongoID
	if id == "" {
		id = d.ID
	}

	return session.User{
		ID:       id,
		Name:     name,
		Email:    d.Email,
		PhotoURL: photo,
		Age:      age,
		Gender:   strings.ToLower(strings.TrimSpace(d.Gender)),
		About:    d.About,
		Skills:   d.Skills,
		Role:     d.Role,
	}
}

func toUsers(dtos []userDTO) []session.User {
	users := make([]session.User, 0, len(dtos))
	for _, d := range dtos {
		users = append(users, d.toUser())
	}
	return users
}

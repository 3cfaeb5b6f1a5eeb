package api

import (
	"context"
	"net/http"

	"github.com/ArponRoy7/codemate-go/internal/session"
)

// SignupRequest is the signup form payload. Skills is optional; Age of zero
// is omitted from the wire payload.
type SignupRequest struct {
	Name     string
	Email    string
	Password string
	PhotoURL string
	About    string
	Gender   string
	Age      int
	Skills   []string
}

// Login authenticates with email/password. The server sets the session
// cookie on the jar; the returned snapshot is the interim user from the login
// response, which callers should refresh with ProfileView.
func (c *Client) Login(ctx context.Context, email, password string) (session.User, error) {
	body := map[string]string{"email": email, "password": password}
	var dto userDTO
	if err := c.do(ctx, http.MethodPost, "/login", nil, body, &dto); err != nil {
		return session.User{}, err
	}
	return dto.toUser(), nil
}

// Signup creates an account and establishes the session cookie. Like Login
// it returns an interim snapshot.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (session.User, error) {
	body := map[string]interface{}{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
		"photourl": req.PhotoURL,
		"about":    req.About,
		"gender":   req.Gender,
	}
	if req.Age > 0 {
		body["age"] = req.Age
	}
	if len(req.Skills) > 0 {
		body["skills"] = req.Skills
	}

	var dto userDTO
	if err := c.do(ctx, http.MethodPost, "/signup", nil, body, &dto); err != nil {
		return session.User{}, err
	}
	return dto.toUser(), nil
}

// Logout clears the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/logout", nil, nil, nil)
}

// ProfileView fetches the current session user. A 401 comes back as
// ErrUnauthorized, the "not authenticated" signal for the session probe.
func (c *Client) ProfileView(ctx context.Context) (session.User, error) {
	var dto userDTO
	if err := c.do(ctx, http.MethodGet, "/profile/view", nil, nil, &dto); err != nil {
		return session.User{}, err
	}
	return dto.toUser(), nil
}

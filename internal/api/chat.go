package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// HistoryMessage is one entry of a conversation's fetched history, flattened
// from the richer server shape. CreatedAt stays the wire timestamp string so
// that identity comparisons against live events are exact.
type HistoryMessage struct {
	SenderID   string
	SenderName string
	Text       string
	CreatedAt  string
}

// Presence is a participant's online/last-seen snapshot. LastSeen is empty
// when the server reports null.
type Presence struct {
	Online   bool   `json:"online"`
	LastSeen string `json:"lastSeen"`
}

// Profile is the minimal display profile of a chat target.
type Profile struct {
	Name     string
	PhotoURL string
}

// historySender tolerates the two shapes the backend stores for a message's
// sender: an embedded user object or a bare identifier string.
type historySender struct {
	ID   string
	Name string
}

func (s *historySender) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		s.ID = bare
		s.Name = ""
		return nil
	}
	var obj struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.ID = obj.ID
	s.Name = obj.Name
	return nil
}

// ChatHistory fetches the message history for the conversation with
// targetUserID in server order, oldest first.
func (c *Client) ChatHistory(ctx context.Context, targetUserID string) ([]HistoryMessage, error) {
	var resp struct {
		Messages []struct {
			Sender    historySender `json:"senderId"`
			Text      string        `json:"text"`
			CreatedAt string        `json:"createdAt"`
		} `json:"messages"`
	}
	path := "/chat/" + url.PathEscape(targetUserID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]HistoryMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		out = append(out, HistoryMessage{
			SenderID:   m.Sender.ID,
			SenderName: m.Sender.Name,
			Text:       m.Text,
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}

// GetPresence fetches the target's current presence snapshot.
func (c *Client) GetPresence(ctx context.Context, targetUserID string) (Presence, error) {
	var p Presence
	path := "/presence/" + url.PathEscape(targetUserID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &p); err != nil {
		return Presence{}, err
	}
	return p, nil
}

// LookupUser resolves a user's display profile through the fallback chain:
// the bare /user path first, then the /api-prefixed variant.
func (c *Client) LookupUser(ctx context.Context, targetUserID string) (Profile, error) {
	paths := []string{
		"/user/" + url.PathEscape(targetUserID),
		"/api/user/" + url.PathEscape(targetUserID),
	}

	var dto userDTO
	if err := c.tryPaths(ctx, http.MethodGet, paths, nil, nil, &dto); err != nil {
		return Profile{}, err
	}
	u := dto.toUser()
	return Profile{Name: u.Name, PhotoURL: u.PhotoURL}, nil
}

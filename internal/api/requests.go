package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ArponRoy7/codemate-go/internal/session"
)

// RequestAction is the swipe decision sent from the feed.
type RequestAction string

const (
	ActionInterested RequestAction = "interested"
	ActionIgnored    RequestAction = "ignored"
)

// ReviewStatus is the decision on a received request.
type ReviewStatus string

const (
	ReviewAccepted ReviewStatus = "accepted"
	ReviewRejected ReviewStatus = "rejected"
)

// ReceivedRequest is one pending incoming connection request.
type ReceivedRequest struct {
	ID   string
	From session.User
}

// SendRequest fires an interested/ignored action at a feed user. The server
// reporting that the request "already exists" is treated as success: the
// action is idempotent from the user's point of view.
func (c *Client) SendRequest(ctx context.Context, action RequestAction, userID string) error {
	path := "/request/send/" + string(action) + "/" + url.PathEscape(userID)
	err := c.do(ctx, http.MethodPost, path, nil, nil, nil)
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Message), "already exists") {
		return nil
	}
	return err
}

// ReceivedRequests fetches the pending incoming requests. The backend wraps
// the list as {message, data:[{_id, fromUserId:{...}}]}.
func (c *Client) ReceivedRequests(ctx context.Context) ([]ReceivedRequest, error) {
	var resp struct {
		Data []struct {
			ID   string  `json:"_id"`
			From userDTO `json:"fromUserId"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/requests/received", nil, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]ReceivedRequest, 0, len(resp.Data))
	for _, r := range resp.Data {
		out = append(out, ReceivedRequest{ID: r.ID, From: r.From.toUser()})
	}
	return out, nil
}

// ReviewRequest accepts or rejects a received request by its request ID.
func (c *Client) ReviewRequest(ctx context.Context, status ReviewStatus, requestID string) error {
	path := "/request/review/" + string(status) + "/" + url.PathEscape(requestID)
	return c.do(ctx, http.MethodPost, path, nil, struct{}{}, nil)
}

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ArponRoy7/codemate-go/internal/session"
)

// connectionsPaths is the prioritized candidate list for the accepted-
// connections endpoint. The deployment behind the reverse proxy answers on
// the bare path; older stacks only expose the /api-prefixed one.
var connectionsPaths = []string{"/user/connections", "/api/user/connections"}

// Connections fetches the accepted-connections list through the fallback
// chain. The response is either a bare user array or {connections:[...]}.
func (c *Client) Connections(ctx context.Context) ([]session.User, error) {
	var raw json.RawMessage
	if err := c.tryPaths(ctx, http.MethodGet, connectionsPaths, nil, nil, &raw); err != nil {
		return nil, err
	}

	var dtos []userDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		var wrapped struct {
			Connections []userDTO `json:"connections"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, err
		}
		dtos = wrapped.Connections
	}
	return toUsers(dtos), nil
}

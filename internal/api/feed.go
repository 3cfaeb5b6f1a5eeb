package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ArponRoy7/codemate-go/internal/session"
)

// FeedQuery is the discovery feed request: pagination plus the optional
// search/sort parameters the backend supports.
type FeedQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string // name | age | createdAt
	SortOrder string // asc | desc
}

// FeedPage is one page of the discovery feed with the server's pagination
// metadata.
type FeedPage struct {
	Users       []session.User
	CurrentPage int
	PageSize    int
	TotalUsers  int
}

// Feed fetches one discovery page.
func (c *Client) Feed(ctx context.Context, q FeedQuery) (FeedPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.SortBy != "" {
		query.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		query.Set("sortOrder", q.SortOrder)
	}

	var resp struct {
		Users       []userDTO `json:"users"`
		CurrentPage int       `json:"currentPage"`
		PageSize    int       `json:"pageSize"`
		TotalUsers  int       `json:"totalUsers"`
	}
	if err := c.do(ctx, http.MethodGet, "/feed", query, nil, &resp); err != nil {
		return FeedPage{}, err
	}

	page := FeedPage{
		Users:       toUsers(resp.Users),
		CurrentPage: resp.CurrentPage,
		PageSize:    resp.PageSize,
		TotalUsers:  resp.TotalUsers,
	}
	if page.CurrentPage == 0 {
		page.CurrentPage = q.Page
	}
	if page.PageSize == 0 {
		page.PageSize = len(page.Users)
	}
	return page, nil
}

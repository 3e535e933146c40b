package client

import (
	"context"
	"net/http"
	"net/url"
)

// DirectoryUser is an entry of the user directory.
type DirectoryUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Followers   int    `json:"followers"`
	Posts       int    `json:"posts"`
	IsFollowing bool   `json:"isFollowing"`
}

type usersResponse struct {
	Users []DirectoryUser `json:"users"`
}

// FetchUsers returns the user directory.
func (c *Client) FetchUsers(ctx context.Context) ([]DirectoryUser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/users", nil, "")
	if err != nil {
		return nil, err
	}

	var resp usersResponse
	if err := c.doJSON(ctx, req, "fetch-users", &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

type followRequest struct {
	UserID string `json:"userId"`
}

// Follow toggles the follow relationship with the given user. HTTP 200 is
// the only acknowledgment.
func (c *Client) Follow(ctx context.Context, userID string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/follow", followRequest{UserID: userID}, "")
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, "follow", nil)
}

type followStatusResponse struct {
	IsFollowing bool `json:"isFollowing"`
}

// FollowStatus reports whether the authenticated user follows userID.
func (c *Client) FollowStatus(ctx context.Context, userID string) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/follow/status/"+url.PathEscape(userID), nil, "")
	if err != nil {
		return false, err
	}

	var resp followStatusResponse
	if err := c.doJSON(ctx, req, "follow-status", &resp); err != nil {
		return false, err
	}
	return resp.IsFollowing, nil
}

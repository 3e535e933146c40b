package client

import (
	"context"
	"net/http"
	"net/url"
)

// Profile is the public profile of a user.
type Profile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Bio               string `json:"bio"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// UserData returns the profile of the named user.
func (c *Client) UserData(ctx context.Context, username string) (Profile, error) {
	path := "/api/GetUserData/?userName=" + url.QueryEscape(username)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return Profile{}, err
	}

	var profile Profile
	if err := c.doJSON(ctx, req, "user-data", &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// UserPosts returns the authenticated user's own posts.
func (c *Client) UserPosts(ctx context.Context) ([]Post, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/user/posts", nil, "")
	if err != nil {
		return nil, err
	}

	var resp postsResponse
	if err := c.doJSON(ctx, req, "user-posts", &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// Stats aggregates the profile counters.
type Stats struct {
	Posts     int `json:"posts"`
	Followers int `json:"followers"`
	Following int `json:"following"`
}

// UserStats returns the authenticated user's counters.
func (c *Client) UserStats(ctx context.Context) (Stats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/user/stats", nil, "")
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	if err := c.doJSON(ctx, req, "user-stats", &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

type bioRequest struct {
	Bio string `json:"bio"`
}

// UpdateBio replaces the authenticated user's bio.
func (c *Client) UpdateBio(ctx context.Context, bio string) error {
	req, err := c.newRequest(ctx, http.MethodPut, "/api/profile/bio", bioRequest{Bio: bio}, "")
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, "update-bio", nil)
}

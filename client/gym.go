package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Gym is a discovery entry. The server is loose about field types, so the
// raw shape is normalized in core/gym before reaching screen state.
type Gym struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Rating      float64     `json:"rating"`
	RatingCount int         `json:"ratingCount"`
	Tags        []string    `json:"tags"`
	GymHours    string      `json:"gym_hours"`
}

type gymsResponse struct {
	Gyms []Gym `json:"gyms"`
}

// GymsByProvince returns the gyms of a province. The endpoint has shipped
// both a bare array and a {gyms: [...]} envelope; both are accepted.
func (c *Client) GymsByProvince(ctx context.Context, province string) ([]Gym, error) {
	path := "/api/getGymsByProvince/" + url.PathEscape(province)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch-gyms: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch-gyms returned status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fetch-gyms: decode response: %w", err)
	}

	var gyms []Gym
	if err := json.Unmarshal(raw, &gyms); err == nil {
		return gyms, nil
	}
	var envelope gymsResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("fetch-gyms: unexpected response shape: %w", err)
	}
	return envelope.Gyms, nil
}

// NearbyGyms returns the gyms around the user, as the explore surface shows
// them. Proximity is resolved server-side from the account; this endpoint
// consistently uses the {gyms: [...]} envelope.
func (c *Client) NearbyGyms(ctx context.Context) ([]Gym, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/gyms/nearby", nil, "")
	if err != nil {
		return nil, err
	}

	var resp gymsResponse
	if err := c.doJSON(ctx, req, "nearby-gyms", &resp); err != nil {
		return nil, err
	}
	return resp.Gyms, nil
}

// GymDetails returns a single gym by identifier.
func (c *Client) GymDetails(ctx context.Context, gymID string) (Gym, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/gym/"+url.PathEscape(gymID), nil, "")
	if err != nil {
		return Gym{}, err
	}

	var gym Gym
	if err := c.doJSON(ctx, req, "gym-details", &gym); err != nil {
		return Gym{}, err
	}
	return gym, nil
}

// GymReview is a review left on a gym.
type GymReview struct {
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// GymReviews returns the reviews of a gym, addressed by name.
func (c *Client) GymReviews(ctx context.Context, gymName string) ([]GymReview, error) {
	path := "/api/GetComments/?GymName=" + url.QueryEscape(gymName)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	var reviews []GymReview
	if err := c.doJSON(ctx, req, "gym-reviews", &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

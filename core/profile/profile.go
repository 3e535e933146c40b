// Package profile implements the profile screen's data access: public
// profiles, the user's own posts and counters, and bio updates.
package profile

import (
	"context"
	"strings"

	"github.com/fitcheck/fitcheck-go/client"
	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
)

// API is the slice of the remote client the service depends on.
type API interface {
	UserData(ctx context.Context, username string) (client.Profile, error)
	UserPosts(ctx context.Context) ([]client.Post, error)
	UserStats(ctx context.Context) (client.Stats, error)
	UpdateBio(ctx context.Context, bio string) error
}

// Service exposes profile operations. Profile image upload mechanics live
// outside this toolkit; only resulting URLs travel through the API.
type Service struct {
	api API
}

// New creates a profile service over the given API.
func New(api API) *Service {
	return &Service{api: api}
}

// Get fetches the public profile of the named user.
func (s *Service) Get(ctx context.Context, username string) (client.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return client.Profile{}, apperrors.Validation("username is required")
	}

	profile, err := s.api.UserData(ctx, username)
	if err != nil {
		return client.Profile{}, apperrors.Wrap(err, "fetch profile")
	}
	return profile, nil
}

// OwnPosts fetches the authenticated user's posts.
func (s *Service) OwnPosts(ctx context.Context) ([]client.Post, error) {
	posts, err := s.api.UserPosts(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "fetch own posts")
	}
	return posts, nil
}

// Stats fetches the authenticated user's counters.
func (s *Service) Stats(ctx context.Context) (client.Stats, error) {
	stats, err := s.api.UserStats(ctx)
	if err != nil {
		return client.Stats{}, apperrors.Wrap(err, "fetch stats")
	}
	return stats, nil
}

// UpdateBio replaces the authenticated user's bio.
func (s *Service) UpdateBio(ctx context.Context, bio string) error {
	if err := s.api.UpdateBio(ctx, strings.TrimSpace(bio)); err != nil {
		return apperrors.Wrap(err, "update bio")
	}
	return nil
}

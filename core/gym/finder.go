// Package gym implements gym discovery: province listings normalized from
// the loose server shape, client-side search, details and reviews.
package gym

import (
	"context"
	"strings"
	"sync"

	"github.com/fitcheck/fitcheck-go/client"
	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
)

// API is the slice of the remote client the finder depends on.
type API interface {
	GymsByProvince(ctx context.Context, province string) ([]client.Gym, error)
	NearbyGyms(ctx context.Context) ([]client.Gym, error)
	GymDetails(ctx context.Context, gymID string) (client.Gym, error)
	GymReviews(ctx context.Context, gymName string) ([]client.GymReview, error)
}

// Gym is a normalized discovery entry.
type Gym struct {
	ID          string
	Name        string
	Location    string
	Rating      float64
	RatingCount int
	Tags        []string
	Hours       string
}

// Finder owns the gym list of the discovery screen.
type Finder struct {
	api API

	mu       sync.RWMutex
	province string
	gyms     []Gym
}

// New creates a finder over the given API.
func New(api API) *Finder {
	return &Finder{api: api}
}

// LoadProvince fetches and normalizes the gyms of a province, replacing the
// current list.
func (f *Finder) LoadProvince(ctx context.Context, province string) error {
	fetched, err := f.api.GymsByProvince(ctx, province)
	if err != nil {
		return apperrors.Wrap(err, "load gyms")
	}

	gyms := make([]Gym, 0, len(fetched))
	for _, g := range fetched {
		gyms = append(gyms, normalize(g))
	}

	f.mu.Lock()
	f.province = province
	f.gyms = gyms
	f.mu.Unlock()
	return nil
}

// Province returns the currently loaded province.
func (f *Finder) Province() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.province
}

// Gyms returns a copy of the current gym list.
func (f *Finder) Gyms() []Gym {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Gym, len(f.gyms))
	copy(out, f.gyms)
	return out
}

// Search filters the loaded gyms by name, location or tag, case-insensitive.
// An empty query returns the full list.
func (f *Finder) Search(query string) []Gym {
	query = strings.ToLower(strings.TrimSpace(query))
	all := f.Gyms()
	if query == "" {
		return all
	}

	matched := make([]Gym, 0, len(all))
	for _, g := range all {
		if matches(g, query) {
			matched = append(matched, g)
		}
	}
	return matched
}

// Nearby fetches and normalizes the gyms around the user. The explore list
// is its own view and does not replace the loaded province list.
func (f *Finder) Nearby(ctx context.Context) ([]Gym, error) {
	fetched, err := f.api.NearbyGyms(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "nearby gyms")
	}

	gyms := make([]Gym, 0, len(fetched))
	for _, g := range fetched {
		gyms = append(gyms, normalize(g))
	}
	return gyms, nil
}

// Details fetches a single gym by identifier.
func (f *Finder) Details(ctx context.Context, gymID string) (Gym, error) {
	fetched, err := f.api.GymDetails(ctx, gymID)
	if err != nil {
		return Gym{}, apperrors.Wrap(err, "gym details")
	}
	return normalize(fetched), nil
}

// Reviews fetches the reviews of a gym, addressed by name.
func (f *Finder) Reviews(ctx context.Context, gymName string) ([]client.GymReview, error) {
	reviews, err := f.api.GymReviews(ctx, gymName)
	if err != nil {
		return nil, apperrors.Wrap(err, "gym reviews")
	}
	return reviews, nil
}

func matches(g Gym, query string) bool {
	if strings.Contains(strings.ToLower(g.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(g.Location), query) {
		return true
	}
	for _, tag := range g.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// normalize smooths over the loose server shape: numeric ids become strings
// and missing tag lists become empty slices.
func normalize(g client.Gym) Gym {
	tags := g.Tags
	if tags == nil {
		tags = []string{}
	}
	return Gym{
		ID:          g.ID.String(),
		Name:        g.Name,
		Location:    g.Location,
		Rating:      g.Rating,
		RatingCount: g.RatingCount,
		Tags:        tags,
		Hours:       g.GymHours,
	}
}

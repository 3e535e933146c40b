package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcheck/fitcheck-go/client"
	"github.com/fitcheck/fitcheck-go/pkg/httpclient"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...client.Option) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return client.New(srv.URL, httpclient.New(httpclient.DefaultConfig()), opts...)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	t.Run("attaches the provider token", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode(map[string]any{"posts": []any{}})
		}), client.WithTokenProvider(client.TokenFunc(func() string { return "tok-123" })))

		_, err := c.FetchPosts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok-123", gotAuth)
	})

	t.Run("empty token goes out unauthenticated", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode(map[string]any{"posts": []any{}})
		}))

		_, err := c.FetchPosts(context.Background())
		require.NoError(t, err)
		assert.Empty(t, gotAuth)
	})
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	t.Run("returns token and user on success", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/signin", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "alice@example.com", body["email"])

			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"token":   "tok-123",
				"user":    map[string]any{"id": "42"},
			})
		}))

		result, err := c.SignIn(context.Background(), "alice@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "tok-123", result.Token)
		assert.Equal(t, "42", result.User["id"])
	})

	t.Run("server message is surfaced on rejection", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Invalid credentials",
			})
		}))

		_, err := c.SignIn(context.Background(), "alice@example.com", "wrong")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid credentials")
	})

	t.Run("missing token falls back to a generic message", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
		}))

		_, err := c.SignIn(context.Background(), "alice@example.com", "secret1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Login failed")
	})

	t.Run("non-2xx envelope message is preserved", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Account locked",
			})
		}))

		_, err := c.SignIn(context.Background(), "alice@example.com", "secret1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Account locked")
	})
}

func TestSignUp(t *testing.T) {
	t.Parallel()

	t.Run("rejection without a message falls back", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/signup", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
		}))

		err := c.SignUp(context.Background(), client.SignUpParams{
			Email: "alice@example.com", Password: "secret1", Username: "alice",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Registration failed")
	})

	t.Run("success yields no error", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
		}))

		assert.NoError(t, c.SignUp(context.Background(), client.SignUpParams{
			Email: "alice@example.com", Password: "secret1", Username: "alice",
		}))
	})
}

func TestResolveUsername(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/getUserName", r.URL.Path)
		assert.Equal(t, "Bearer fresh-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "username": "alice"})
	}))

	name, err := c.ResolveUsername(context.Background(), "fresh-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
}

func TestFetchComments(t *testing.T) {
	t.Parallel()

	t.Run("data envelope", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"id": "c1", "text": "nice"}},
			})
		}))

		comments, err := c.FetchComments(context.Background(), "p1")
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "nice", comments[0].Text)
	})

	t.Run("comments envelope", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"comments": []map[string]any{{"id": "c1", "text": "nice"}},
			})
		}))

		comments, err := c.FetchComments(context.Background(), "p1")
		require.NoError(t, err)
		require.Len(t, comments, 1)
	})
}

func TestGymsByProvince(t *testing.T) {
	t.Parallel()

	t.Run("bare array shape", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/getGymsByProvince/Ontario", r.URL.Path)
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 42, "name": "Iron Temple"}})
		}))

		gyms, err := c.GymsByProvince(context.Background(), "Ontario")
		require.NoError(t, err)
		require.Len(t, gyms, 1)
		assert.Equal(t, "42", gyms[0].ID.String())
	})

	t.Run("envelope shape", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"gyms": []map[string]any{{"id": "7", "name": "Flex Factory"}},
			})
		}))

		gyms, err := c.GymsByProvince(context.Background(), "Ontario")
		require.NoError(t, err)
		require.Len(t, gyms, 1)
		assert.Equal(t, "Flex Factory", gyms[0].Name)
	})
}

func TestCreatePost(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	var body map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	err := c.CreatePost(context.Background(), client.CreatePostParams{
		Title:       "Leg day",
		Description: "squats and lunges",
		ImageURL:    "https://cdn.example.com/p.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/posts", gotPath)
	assert.Equal(t, "Leg day", body["title"])
	assert.Equal(t, "https://cdn.example.com/p.jpg", body["image_url"])
}

func TestNearbyGyms(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gyms/nearby", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"gyms": []map[string]any{{"id": 9, "name": "Corner Gym"}},
		})
	}))

	gyms, err := c.NearbyGyms(context.Background())
	require.NoError(t, err)
	require.Len(t, gyms, 1)
	assert.Equal(t, "9", gyms[0].ID.String())
	assert.Equal(t, "Corner Gym", gyms[0].Name)
}

func TestFetchMessages(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/messages/c1", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"chat_id": "c1", "text": "hello", "ownerUsername": "bob"},
		})
	}))

	messages, err := c.FetchMessages(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "bob", messages[0].OwnerUsername)
}

func TestAckEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("like hits the expected path", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))

		require.NoError(t, c.AddPostLike(context.Background(), "p1"))
		assert.Equal(t, "/api/addPostLike/p1", gotPath)
	})

	t.Run("follow posts the user id", func(t *testing.T) {
		t.Parallel()

		var body map[string]string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusOK)
		}))

		require.NoError(t, c.Follow(context.Background(), "u1"))
		assert.Equal(t, "u1", body["userId"])
	})

	t.Run("non-2xx ack surfaces an error", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "bad post id"})
		}))

		err := c.AddPostLike(context.Background(), "p1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad post id")
	})
}

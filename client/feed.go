package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Post is a feed entry as returned by the posts endpoint.
type Post struct {
	PostID            string    `json:"postId"`
	Username          string    `json:"username"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ImageURL          string    `json:"image_url"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
	IsLiked           bool      `json:"is_liked"`
	TotalLikes        int       `json:"total_likes"`
	TotalComments     int       `json:"total_comments"`
}

type postsResponse struct {
	Posts []Post `json:"posts"`
}

// FetchPosts returns the authenticated user's feed.
func (c *Client) FetchPosts(ctx context.Context) ([]Post, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/posts", nil, "")
	if err != nil {
		return nil, err
	}

	var resp postsResponse
	if err := c.doJSON(ctx, req, "fetch-posts", &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// AddPostLike toggles the like state of a post server-side. The endpoint is
// an ack: no body fields are consumed.
func (c *Client) AddPostLike(ctx context.Context, postID string) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/addPostLike/"+url.PathEscape(postID), nil, "")
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, "add-post-like", nil)
}

// Comment is a single post comment.
type Comment struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Text              string    `json:"text"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
}

// CommentParams is the comment submission body.
type CommentParams struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
}

// SubmitComment posts a comment. The endpoint is an ack: the created entity
// is not echoed back, so callers reconcile by refetching the collection.
func (c *Client) SubmitComment(ctx context.Context, postID string, params CommentParams) error {
	path := fmt.Sprintf("/api/post/%s/comment", url.PathEscape(postID))
	req, err := c.newRequest(ctx, http.MethodPost, path, params, "")
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, "submit-comment", nil)
}

type commentsResponse struct {
	Data     []Comment `json:"data"`
	Comments []Comment `json:"comments"`
}

// FetchComments returns the comments of a post. The server has shipped two
// envelope variants for this endpoint; both are accepted.
func (c *Client) FetchComments(ctx context.Context, postID string) ([]Comment, error) {
	path := fmt.Sprintf("/api/post/%s/comments", url.PathEscape(postID))
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	var resp commentsResponse
	if err := c.doJSON(ctx, req, "fetch-comments", &resp); err != nil {
		return nil, err
	}
	if resp.Data != nil {
		return resp.Data, nil
	}
	return resp.Comments, nil
}

// CreatePostParams is the post creation body. Image upload happens out of
// band; only the resulting URL travels here.
type CreatePostParams struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(ctx context.Context, params CreatePostParams) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/posts", params, "")
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, "create-post", nil)
}

package client

import (
	"context"
	"net/http"

	"github.com/fitcheck/fitcheck-go/pkg/apperrors"
)

// User is the profile attribute map associated with a session. The server
// controls its shape; the client only ever reads and writes the username.
type User map[string]any

// Username returns the username attribute, or "" when absent.
func (u User) Username() string {
	if s, ok := u["username"].(string); ok {
		return s
	}
	return ""
}

// SetUsername sets the username attribute.
func (u User) SetUsername(name string) {
	u["username"] = name
}

// SignInResult carries the fields of a successful sign-in.
type SignInResult struct {
	Token string
	User  User
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	envelope
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SignIn calls the sign-in endpoint. A response with success=false, or with
// no token, is an authentication failure carrying the server's message when
// present.
func (c *Client) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/signin", signInRequest{Email: email, Password: password}, "")
	if err != nil {
		return SignInResult{}, err
	}

	var resp signInResponse
	if err := c.doJSON(ctx, req, "sign-in", &resp); err != nil {
		return SignInResult{}, err
	}

	if !resp.Success || resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Login failed"
		}
		return SignInResult{}, apperrors.Authentication(msg)
	}

	user := resp.User
	if user == nil {
		user = User{}
	}
	return SignInResult{Token: resp.Token, User: user}, nil
}

// SignUpParams is the sign-up request body.
type SignUpParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// SignUp calls the sign-up endpoint. No token is expected back: account
// activation may require out-of-band email verification.
func (c *Client) SignUp(ctx context.Context, params SignUpParams) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/signup", params, "")
	if err != nil {
		return err
	}

	var resp envelope
	if err := c.doJSON(ctx, req, "sign-up", &resp); err != nil {
		return err
	}

	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "Registration failed"
		}
		return apperrors.Authentication(msg)
	}
	return nil
}

type usernameResponse struct {
	envelope
	Username string `json:"username"`
}

// ResolveUsername fetches the username bound to the given token. Called with
// an explicit token because it runs inside sign-in, before the session is
// established.
func (c *Client) ResolveUsername(ctx context.Context, token string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/getUserName", struct{}{}, token)
	if err != nil {
		return "", err
	}

	var resp usernameResponse
	if err := c.doJSON(ctx, req, "resolve-username", &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", apperrors.Authentication("username resolution rejected")
	}
	return resp.Username, nil
}

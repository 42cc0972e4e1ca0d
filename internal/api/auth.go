package api

import (
	"context"
	"net/http"
)

// Verify checks the current token. A rejected token is reported as an *Error
// with status 401.
func (c *Client) Verify(ctx context.Context) (VerifyResult, error) {
	var result VerifyResult
	err := c.do(ctx, request{
		method:    http.MethodGet,
		url:       c.endpoint("auth", "verify"),
		fallback:  "Session verification failed",
		operation: "Verify",
	}, &result)
	return result, err
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, request{
		method:    http.MethodPost,
		url:       c.endpoint("auth", "login"),
		jsonBody:  map[string]string{"username": username, "password": password},
		auth:      authNone,
		fallback:  "Login failed",
		operation: "Login",
	}, &result)
	if err == nil && result.Token == "" {
		return LoginResult{}, &Error{Status: http.StatusOK, Message: "Login failed"}
	}
	return result, err
}

// Signup registers an attendee account with its reference photo.
func (c *Client) Signup(ctx context.Context, username, password string, refPhoto Upload) (string, error) {
	body, contentType := streamMultipart(map[string]string{
		"username": username,
		"password": password,
	}, "ref_photo", refPhoto)

	var ack struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.endpoint("auth", "signup"),
		body:        body,
		contentType: contentType,
		auth:        authNone,
		streaming:   true,
		fallback:    "Signup failed",
		operation:   "Signup",
	}, &ack)
	return ack.Message, err
}

// UpdateReferencePhoto replaces the reference photo of the signed-in user.
func (c *Client) UpdateReferencePhoto(ctx context.Context, refPhoto Upload) error {
	body, contentType := streamMultipart(nil, "ref_photo", refPhoto)
	return c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.endpoint("auth", "vip-update-photo"),
		body:        body,
		contentType: contentType,
		streaming:   true,
		fallback:    "Failed to update reference photo",
		operation:   "UpdateReferencePhoto",
	}, nil)
}

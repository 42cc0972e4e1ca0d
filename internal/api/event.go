package api

import (
	"context"
	"net/http"
)

// GrantAccess records the signed-in attendee's VIP access to an album.
func (c *Client) GrantAccess(ctx context.Context, photographer, albumID string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		url:    c.endpoint("grant-access"),
		jsonBody: map[string]string{
			"photographer": photographer,
			"album_id":     albumID,
		},
		fallback:  "Failed to grant access",
		operation: "GrantAccess",
	}, nil)
}

// FindMyPhotos runs the face search of the signed-in attendee against an album.
func (c *Client) FindMyPhotos(ctx context.Context, photographer, albumID string) ([]Photo, error) {
	var result MatchResult
	err := c.do(ctx, request{
		method:    http.MethodGet,
		url:       c.endpoint("find-my-photos", photographer, albumID),
		fallback:  "Could not fetch photos.",
		operation: "FindMyPhotos",
	}, &result)
	if err != nil {
		return nil, err
	}
	return normalizeMatches(result.Matches), nil
}

// EventPhotos lists every photo of an album through the public full-access
// endpoint. No credentials are sent.
func (c *Client) EventPhotos(ctx context.Context, photographer, albumID string) ([]Photo, error) {
	var photos []Photo
	err := c.do(ctx, request{
		method:    http.MethodGet,
		url:       c.endpoint("event", photographer, albumID),
		auth:      authNone,
		fallback:  "Could not fetch photos.",
		operation: "EventPhotos",
	}, &photos)
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// CheckAlbumPassword validates a password protected album.
func (c *Client) CheckAlbumPassword(ctx context.Context, albumID, password string) error {
	return c.do(ctx, request{
		method:    http.MethodPost,
		url:       c.endpoint("check-password", albumID),
		jsonBody:  map[string]string{"password": password},
		auth:      authNone,
		fallback:  "Invalid password",
		operation: "CheckAlbumPassword",
	}, nil)
}

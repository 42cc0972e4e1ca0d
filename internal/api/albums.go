package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// ListAlbums returns the albums visible to the signed-in user. Attendees get
// the albums shared with them.
func (c *Client) ListAlbums(ctx context.Context) ([]Album, error) {
	var albums []Album
	err := c.do(ctx, request{
		method:    http.MethodGet,
		url:       c.endpoint("albums"),
		fallback:  "Failed to fetch albums",
		operation: "ListAlbums",
	}, &albums)
	if err != nil {
		return nil, err
	}
	return albums, nil
}

// CreateAlbum creates an album with the given display name.
func (c *Client) CreateAlbum(ctx context.Context, name string) (Album, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		method:    http.MethodPost,
		url:       c.endpoint("create-album"),
		jsonBody:  map[string]string{"name": name},
		fallback:  "Failed to create album",
		operation: "CreateAlbum",
	}, &raw)
	if err != nil {
		return Album{}, err
	}
	return decodeCreatedAlbum(raw, name), nil
}

// decodeCreatedAlbum accepts both {"album": {...}} and a bare album object.
func decodeCreatedAlbum(raw json.RawMessage, name string) Album {
	var wrapped struct {
		Album *Album `json:"album"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && wrapped.Album != nil {
		return withName(*wrapped.Album, name)
	}
	var bare Album
	if json.Unmarshal(raw, &bare) == nil {
		return withName(bare, name)
	}
	return Album{Name: name}
}

func withName(a Album, name string) Album {
	if a.Name == "" {
		a.Name = name
	}
	return a
}

type deleteResult struct {
	DeletedCount *int `json:"deleted_count"`
}

func (r deleteResult) count(requested int) int {
	if r.DeletedCount == nil {
		return requested
	}
	return *r.DeletedCount
}

// DeleteAlbums deletes albums in one request and returns how many were
// deleted. The requested count is reported when the backend omits it.
func (c *Client) DeleteAlbums(ctx context.Context, albumIDs []string) (int, error) {
	var result deleteResult
	err := c.do(ctx, request{
		method:    http.MethodDelete,
		url:       c.endpoint("albums", "batch"),
		jsonBody:  map[string][]string{"album_ids": albumIDs},
		fallback:  "Failed to delete albums",
		operation: "DeleteAlbums",
	}, &result)
	if err != nil {
		return 0, err
	}
	return result.count(len(albumIDs)), nil
}

// ListPhotos returns the photos of one of the photographer's albums.
func (c *Client) ListPhotos(ctx context.Context, albumID string) ([]Photo, error) {
	var photos []Photo
	err := c.do(ctx, request{
		method:    http.MethodGet,
		url:       c.endpoint("albums", albumID, "photos"),
		fallback:  "Failed to fetch photos",
		operation: "ListPhotos",
	}, &photos)
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// DeletePhotos deletes photos of an album in one request.
func (c *Client) DeletePhotos(ctx context.Context, albumID string, photoIDs []string) (int, error) {
	var result deleteResult
	err := c.do(ctx, request{
		method:    http.MethodDelete,
		url:       c.endpoint("albums", albumID, "photos", "batch"),
		jsonBody:  map[string][]string{"photo_ids": photoIDs},
		fallback:  "Failed to delete photos",
		operation: "DeletePhotos",
	}, &result)
	if err != nil {
		return 0, err
	}
	return result.count(len(photoIDs)), nil
}

// UploadPhoto streams one file into an album.
func (c *Client) UploadPhoto(ctx context.Context, albumID string, file Upload) (UploadResult, error) {
	body, contentType := streamMultipart(map[string]string{"album": albumID}, "file", file)

	var result UploadResult
	err := c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.endpoint("upload-single-file"),
		body:        body,
		contentType: contentType,
		streaming:   true,
		fallback:    "Upload failed",
		operation:   "UploadPhoto",
	}, &result)
	return result, err
}

// ShareLinks fetches the VIP and full-access links of an album.
func (c *Client) ShareLinks(ctx context.Context, photographer, albumID string) (ShareLinks, error) {
	var links ShareLinks
	err := c.do(ctx, request{
		method:    http.MethodGet,
		url:       c.endpoint("album", photographer, albumID, "share"),
		fallback:  "Failed to get share links",
		operation: "ShareLinks",
	}, &links)
	return links, err
}

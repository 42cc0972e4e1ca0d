package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Download is a streaming response body. Size is -1 when unknown.
type Download struct {
	Body io.ReadCloser
	Size int64
}

// Download streams one photo through the backend proxy. The caller closes the
// returned body.
func (c *Client) Download(ctx context.Context, key, filename string) (Download, error) {
	return c.stream(ctx, request{
		method:    http.MethodGet,
		url:       c.endpoint("download"),
		query:     url.Values{"key": {key}, "filename": {filename}},
		fallback:  "Download failed",
		operation: "Download",
		streaming: true,
	})
}

// DownloadZip streams a ZIP archive containing every listed photo.
func (c *Client) DownloadZip(ctx context.Context, keys []string, filename string) (Download, error) {
	return c.stream(ctx, request{
		method: http.MethodPost,
		url:    c.endpoint("download-zip"),
		jsonBody: map[string]any{
			"photo_keys": keys,
			"filename":   filename,
		},
		fallback:  "Download failed",
		operation: "DownloadZip",
		streaming: true,
	})
}

func (c *Client) stream(ctx context.Context, req request) (Download, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return Download{}, err
	}
	return Download{Body: resp.Body, Size: resp.ContentLength}, nil
}

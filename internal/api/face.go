package api

import (
	"context"
	"net/http"
)

// FindSimilarFaces queries the face-recognition service directly with image
// against the embeddings of one album.
func (c *Client) FindSimilarFaces(ctx context.Context, embeddingFile string, image Upload) ([]Photo, error) {
	if c.faceBaseURL == "" {
		return nil, &Error{Message: "face service is not configured"}
	}
	body, contentType := streamMultipart(map[string]string{"embedding_file": embeddingFile}, "file", image)

	var result MatchResult
	err := c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.faceBaseURL + "find_similar_faces/",
		body:        body,
		contentType: contentType,
		auth:        authNone,
		streaming:   true,
		fallback:    "Face search failed",
		operation:   "FindSimilarFaces",
	}, &result)
	if err != nil {
		return nil, err
	}
	return normalizeMatches(result.Matches), nil
}

// EmbeddingFile names the embeddings file the face service keeps per album.
func EmbeddingFile(photographer, albumID string) string {
	return photographer + "-" + albumID + "_embeddings.json"
}

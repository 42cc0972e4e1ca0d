package api

import (
	"io"
	"path"
	"strings"
)

// Role values issued by the backend.
const (
	RolePhotographer = "photographer"
	RoleAttendee     = "attendee"
	RoleVIPAttendee  = "vip_attendee"
)

// Album is an album as listed by the backend.
type Album struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Cover        string `json:"cover,omitempty"`
	PhotoCount   int    `json:"photo_count"`
	Photographer string `json:"photographer,omitempty"`
}

// Photo is a single photo of an album.
type Photo struct {
	ID    string  `json:"id"`
	URL   string  `json:"url"`
	Name  string  `json:"name"`
	Score float64 `json:"score,omitempty"`
}

// VerifyResult is the response of GET /api/auth/verify.
type VerifyResult struct {
	Valid       bool   `json:"valid"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	RefPhotoURL string `json:"ref_photo_url"`
}

// LoginResult is the response of POST /api/auth/login.
type LoginResult struct {
	Token       string `json:"token"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	RefPhotoURL string `json:"ref_photo_url"`
}

// ShareLinks holds both share links of an album.
type ShareLinks struct {
	VIP  string `json:"vip_link"`
	Full string `json:"full_access_link"`
}

// UploadResult acknowledges a single uploaded file.
type UploadResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
}

// MatchResult is the face search response.
type MatchResult struct {
	Matches []Photo `json:"matches"`
}

// Upload is one file handed to UploadPhoto.
type Upload struct {
	Name    string
	Content io.Reader
}

// normalizeMatches fills missing photo identifiers from the URL's last path
// segment so matches can be addressed like regular photos.
func normalizeMatches(matches []Photo) []Photo {
	out := make([]Photo, 0, len(matches))
	for _, m := range matches {
		if m.URL == "" {
			continue
		}
		base := lastSegment(m.URL)
		if m.ID == "" {
			m.ID = base
		}
		if m.Name == "" {
			m.Name = base
		}
		out = append(out, m)
	}
	return out
}

func lastSegment(rawURL string) string {
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return path.Base(strings.TrimRight(trimmed, "/"))
}

// PhotoKey builds the storage key of an event photo as the download proxy
// expects it.
func PhotoKey(photographer, albumID, photoID string) string {
	return path.Join("event_albums", photographer, albumID, photoID)
}

package application

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/example/eventshare/internal/ui"
)

// Texts shown on the album manager page.
const (
	attendeeEmptyAlbums     = "No albums have been shared with you yet. When a photographer grants you access, their albums will appear here."
	photographerEmptyAlbums = "You don't have any albums yet. Click 'Create New Album' to get started!"
	emptyAlbumPhotos        = "This album has no photos yet. Upload some to get started!"
	emptyEventPhotos        = "No photos were found in this album."
	invalidEventLinkMessage = "Error: Invalid event link."
	invalidLinkTypeMessage  = "Error: Invalid link type specified."
	emptyAlbumName          = "Album name cannot be empty."
	noFilesSelected         = "Select at least one photo to upload."
	uploadSucceeded         = "Photos uploaded successfully!"
	uploadFailed            = "Failed to upload some photos"
	noAlbumsSelected        = "No albums selected"
	noPhotosSelected        = "No photos selected"
	noPhotosToDownload      = "There are no photos to download."
	shareNeedsLogin         = "You must be logged in to share."
	defaultPhotographer     = "Photographer"
	unknownPhotographer     = "This album cannot be opened because its photographer is unknown."
	placeholderCoverBase    = "https://placehold.co/400x300/e0e0e0/777?text="
)

// Role chrome.
var (
	attendeeChrome = ui.RoleView{
		TabLabel: "Shared With Me",
		Title:    "Albums Shared With You",
	}
	photographerChrome = ui.RoleView{
		TabLabel:  "Manage Albums",
		Title:     "Your Albums",
		CanCreate: true,
		CanDelete: true,
		CanShare:  true,
	}
)

// Loading message sequences of the event gallery.
var loadingMessages = map[string][]string{
	"default": {
		"Loading event gallery...",
		"Almost ready. Setting the perfect lighting...",
		"Curating your memories...",
	},
	LinkVIP: {
		"Hang tight! We are locating your photos...",
		"Matching faces with the event album...",
		"Bringing your best moments into focus...",
	},
	LinkFull: {
		"Loading the full gallery...",
		"Fetching high-resolution photos...",
		"Arranging your album layout...",
	},
}

func loadingSequence(mode string) []string {
	if seq, ok := loadingMessages[mode]; ok {
		return seq
	}
	return loadingMessages["default"]
}

func photoCount(n int) string {
	return fmt.Sprintf("%d photos", n)
}

func placeholderCover(name string) string {
	return placeholderCoverBase + strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}

func deletePhotosPrompt(n int) string {
	return fmt.Sprintf("Are you sure you want to delete %d photo(s)? This cannot be undone.", n)
}

func deleteAlbumsPrompt(n int) string {
	return fmt.Sprintf("Are you sure you want to delete %d album(s)? All photos in these albums will be permanently deleted.", n)
}

func downloadAllPrompt(n int) string {
	return fmt.Sprintf("You are about to download %d photos as a single ZIP archive. Do you want to continue?", n)
}

func errorMessage(err error) string {
	return "Error: " + err.Error()
}

// Title turns an album identifier into a display title: dashes become spaces
// and the first letter of every word is upper-cased.
func Title(albumID string) string {
	spaced := strings.ReplaceAll(albumID, "-", " ")
	var b strings.Builder
	b.Grow(len(spaced))
	prevWord := false
	for _, r := range spaced {
		word := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		if word && !prevWord {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevWord = word
	}
	return b.String()
}

// Package ui holds the contracts between page controllers and whatever
// surface presents them.
package ui

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/example/eventshare/internal/api"
)

// NoticeKind classifies a transient notice.
type NoticeKind string

// Notice kinds.
const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a toast style message.
type Notice struct {
	ID      string
	Kind    NoticeKind
	Message string
}

// NewNotice returns a notice with a fresh identifier.
func NewNotice(kind NoticeKind, message string) Notice {
	return Notice{ID: uuid.NewString(), Kind: kind, Message: message}
}

// Notifier shows transient notices.
type Notifier interface {
	Notify(notice Notice)
}

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Navigator leaves the current page for target.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// ProgressReporter receives upload progress. Done is called once per batch.
type ProgressReporter interface {
	Progress(completed, total int)
	Done()
}

// ShareDialog presents the share links of an album.
type ShareDialog interface {
	ShowShareLinks(album api.Album, links api.ShareLinks)
}

// RoleView is the chrome that differs between photographers and attendees.
type RoleView struct {
	TabLabel  string
	Title     string
	CanCreate bool
	CanDelete bool
	CanShare  bool
}

// RoleChrome applies a RoleView.
type RoleChrome interface {
	ApplyRole(view RoleView)
}

// LoadingView is the transient status area shown while a page loads.
type LoadingView interface {
	ShowLoading(message string)
	ShowError(message string)
}

// GalleryView is the header of the event gallery.
type GalleryView interface {
	SetTitle(title string)
	ShowError(message string)
}

// AlbumHeader is the header of the album detail view.
type AlbumHeader interface {
	SetAlbum(album api.Album)
}

// Saver stores a downloaded file. size is -1 when unknown.
type Saver interface {
	Save(ctx context.Context, filename string, body io.Reader, size int64) (string, error)
}

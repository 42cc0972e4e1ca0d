package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/example/eventshare/internal/api"
	"github.com/example/eventshare/internal/collection"
	"github.com/example/eventshare/internal/lightbox"
	"github.com/example/eventshare/internal/logging"
	"github.com/example/eventshare/internal/selection"
	"github.com/example/eventshare/internal/session"
	"github.com/example/eventshare/internal/ui"
	"github.com/example/eventshare/internal/view"
)

// AlbumGateway is the part of the backend the album manager uses.
type AlbumGateway interface {
	session.Verifier
	ListAlbums(ctx context.Context) ([]api.Album, error)
	CreateAlbum(ctx context.Context, name string) (api.Album, error)
	DeleteAlbums(ctx context.Context, albumIDs []string) (int, error)
	ListPhotos(ctx context.Context, albumID string) ([]api.Photo, error)
	DeletePhotos(ctx context.Context, albumID string, photoIDs []string) (int, error)
	UploadPhoto(ctx context.Context, albumID string, file api.Upload) (api.UploadResult, error)
	ShareLinks(ctx context.Context, photographer, albumID string) (api.ShareLinks, error)
}

// UploadFile is a file chosen for upload. Open is called when its turn comes.
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// AlbumManagerDeps wires an AlbumManager to its gateway and surface.
type AlbumManagerDeps struct {
	Gateway      AlbumGateway
	Session      *session.Store
	Views        *view.Switcher
	Albums       collection.Container
	Photos       collection.Container
	AlbumToolbar selection.Toolbar
	PhotoToolbar selection.Toolbar
	Lightbox     lightbox.Display
	Scroller     lightbox.Scroller
	Notifier     ui.Notifier
	Confirmer    ui.Confirmer
	Navigator    ui.Navigator
	Progress     ui.ProgressReporter
	Share        ui.ShareDialog
	Chrome       ui.RoleChrome
	Header       ui.AlbumHeader
	Logger       *slog.Logger
}

// AlbumManager drives the album manager page: the album list, the album
// detail view with its photos, upload, share and batch delete.
type AlbumManager struct {
	gateway   AlbumGateway
	session   *session.Store
	views     *view.Switcher
	notifier  ui.Notifier
	confirmer ui.Confirmer
	navigator ui.Navigator
	progress  ui.ProgressReporter
	share     ui.ShareDialog
	chrome    ui.RoleChrome
	header    ui.AlbumHeader
	logger    *slog.Logger

	albumGrid      *collection.Renderer
	photoGrid      *collection.Renderer
	albumSelection *selection.Controller
	photoSelection *selection.Controller
	lightbox       *lightbox.Navigator

	mu       sync.Mutex
	user     session.Session
	albums   []api.Album
	current  *api.Album
	photos   []api.Photo
	uploadMu sync.Mutex
}

// NewAlbumManager constructs the controller for one page load.
func NewAlbumManager(deps AlbumManagerDeps) *AlbumManager {
	albumGrid := collection.NewRenderer(deps.Albums)
	photoGrid := collection.NewRenderer(deps.Photos)
	return &AlbumManager{
		gateway:        deps.Gateway,
		session:        deps.Session,
		views:          deps.Views,
		notifier:       deps.Notifier,
		confirmer:      deps.Confirmer,
		navigator:      deps.Navigator,
		progress:       deps.Progress,
		share:          deps.Share,
		chrome:         deps.Chrome,
		header:         deps.Header,
		logger:         logging.Default(deps.Logger),
		albumGrid:      albumGrid,
		photoGrid:      photoGrid,
		albumSelection: selection.NewController(deps.AlbumToolbar, albumGrid),
		photoSelection: selection.NewController(deps.PhotoToolbar, photoGrid),
		lightbox:       lightbox.New(deps.Lightbox, deps.Scroller),
	}
}

func (m *AlbumManager) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return controllerLogger(ctx, m.logger, "AlbumManager", operation, attrs...)
}

// Lightbox exposes the photo viewer for keyboard and touch input.
func (m *AlbumManager) Lightbox() *lightbox.Navigator { return m.lightbox }

// AlbumSelection exposes the album selection state.
func (m *AlbumManager) AlbumSelection() *selection.Controller { return m.albumSelection }

// PhotoSelection exposes the photo selection state.
func (m *AlbumManager) PhotoSelection() *selection.Controller { return m.photoSelection }

// User returns the verified session.
func (m *AlbumManager) User() session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Albums returns the albums last fetched.
func (m *AlbumManager) Albums() []api.Album {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.Album(nil), m.albums...)
}

// Photos returns the photos of the open album last fetched.
func (m *AlbumManager) Photos() []api.Photo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.Photo(nil), m.photos...)
}

// CurrentAlbum returns the album open in the detail view.
func (m *AlbumManager) CurrentAlbum() (api.Album, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return api.Album{}, false
	}
	return *m.current, true
}

func (m *AlbumManager) isAttendee() bool {
	return m.User().IsAttendee()
}

// Init verifies the session, applies the role chrome and loads the albums.
// Without a valid session the login view is shown and false is returned.
func (m *AlbumManager) Init(ctx context.Context) (bool, error) {
	m.views.SwitchTo(view.Loading)

	user, ok := m.session.Verify(ctx, m.gateway)
	if !ok {
		m.views.SwitchTo(view.Login)
		m.loggerWith(ctx, "Init").InfoContext(ctx, "no valid session")
		return false, nil
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()

	if user.IsAttendee() {
		m.chrome.ApplyRole(attendeeChrome)
	} else {
		m.chrome.ApplyRole(photographerChrome)
	}
	m.views.SwitchTo(view.ManageAlbums)
	return true, m.FetchAlbums(ctx)
}

// FetchAlbums reloads and renders the album list.
func (m *AlbumManager) FetchAlbums(ctx context.Context) (err error) {
	logger := m.loggerWith(ctx, "FetchAlbums")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to fetch albums", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	albums, err := m.gateway.ListAlbums(ctx)
	if err != nil {
		m.report(ctx, err, "")
		return err
	}

	m.mu.Lock()
	m.albums = albums
	attendee := m.user.IsAttendee()
	m.mu.Unlock()

	empty := photographerEmptyAlbums
	if attendee {
		empty = attendeeEmptyAlbums
	}
	actions := collection.Actions{Primary: m.activate}
	if !attendee {
		actions.Secondary = m.shareFromCard
		actions.SecondaryLabel = "Share"
	}
	rendered := m.albumGrid.Render(albumItems(albums, attendee), empty, actions)
	m.albumSelection.Refresh()
	logger.With("album_count", rendered).InfoContext(ctx, "albums fetched")
	return nil
}

func albumItems(albums []api.Album, attendee bool) []collection.Item {
	items := make([]collection.Item, 0, len(albums))
	for _, a := range albums {
		item := collection.Item{
			ID:       a.ID,
			Title:    a.Name,
			Subtitle: photoCount(a.PhotoCount),
			ImageURL: a.Cover,
		}
		if item.ImageURL == "" {
			item.ImageURL = placeholderCover(a.Name)
		}
		if attendee {
			photographer := a.Photographer
			if photographer == "" {
				photographer = defaultPhotographer
			}
			item.Byline = "by " + photographer
		}
		items = append(items, item)
	}
	return items
}

func (m *AlbumManager) activate(ctx context.Context, albumID string) {
	if err := m.ActivateAlbum(ctx, albumID); err != nil {
		m.loggerWith(ctx, "ActivateAlbum", "album_id", albumID).WarnContext(ctx, "album activation failed",
			"error", err, "error_kind", ErrorKind(err))
	}
}

func (m *AlbumManager) shareFromCard(ctx context.Context, albumID string) {
	_ = m.ShareAlbum(ctx, albumID)
}

// ActivateAlbum handles a click on an album card: it toggles the card in
// selection mode, navigates attendees to the VIP gallery and opens the
// detail view for photographers.
func (m *AlbumManager) ActivateAlbum(ctx context.Context, albumID string) error {
	if m.albumSelection.Selecting() {
		m.albumSelection.Toggle(albumID)
		return nil
	}

	if m.isAttendee() {
		album, ok := m.findAlbum(albumID)
		if !ok {
			return ErrNotFound
		}
		if album.Photographer == "" {
			m.notify(ui.NoticeWarning, unknownPhotographer)
			return ErrInvalidEventLink
		}
		link := EventLink{Photographer: album.Photographer, AlbumID: album.ID, Type: LinkVIP}
		if err := m.navigator.Navigate(ctx, link.String()); err != nil {
			m.report(ctx, err, "Error: ")
			return err
		}
		return nil
	}
	return m.OpenAlbum(ctx, albumID)
}

func (m *AlbumManager) findAlbum(albumID string) (api.Album, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.albums {
		if a.ID == albumID {
			return a, true
		}
	}
	return api.Album{}, false
}

func (m *AlbumManager) findPhoto(photoID string) (api.Photo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.photos {
		if p.ID == photoID {
			return p, true
		}
	}
	return api.Photo{}, false
}

// OpenAlbum shows the detail view of one of the photographer's albums.
func (m *AlbumManager) OpenAlbum(ctx context.Context, albumID string) error {
	if m.isAttendee() {
		return ErrNotAllowed
	}
	album, ok := m.findAlbum(albumID)
	if !ok {
		album = api.Album{ID: albumID, Name: Title(albumID)}
	}

	m.albumSelection.Exit()
	m.photoSelection.Exit()

	m.mu.Lock()
	m.current = &album
	m.photos = nil
	m.mu.Unlock()

	m.header.SetAlbum(album)
	m.views.SwitchTo(view.AlbumDetail)
	return m.loadPhotos(ctx)
}

func (m *AlbumManager) loadPhotos(ctx context.Context) (err error) {
	album, ok := m.CurrentAlbum()
	if !ok {
		return ErrNoAlbumOpen
	}

	logger := m.loggerWith(ctx, "LoadPhotos", "album_id", album.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load photos", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	photos, err := m.gateway.ListPhotos(ctx, album.ID)
	if err != nil {
		m.report(ctx, err, "Failed to load photos: ")
		return err
	}

	m.mu.Lock()
	m.photos = photos
	m.mu.Unlock()

	items := make([]collection.Item, 0, len(photos))
	for _, p := range photos {
		items = append(items, collection.Item{ID: p.ID, Title: p.Name, ImageURL: p.URL})
	}
	rendered := m.photoGrid.Render(items, emptyAlbumPhotos, collection.Actions{Primary: m.activatePhoto})
	m.photoSelection.Refresh()
	logger.With("photo_count", rendered).InfoContext(ctx, "photos loaded")
	return nil
}

func (m *AlbumManager) activatePhoto(ctx context.Context, photoID string) {
	if err := m.ActivatePhoto(ctx, photoID); err != nil {
		m.loggerWith(ctx, "ActivatePhoto", "photo_id", photoID).WarnContext(ctx, "photo activation failed",
			"error", err, "error_kind", ErrorKind(err))
	}
}

// BackToAlbums leaves the detail view and refreshes the album list.
func (m *AlbumManager) BackToAlbums(ctx context.Context) error {
	m.photoSelection.Exit()
	m.lightbox.Close()

	m.mu.Lock()
	m.current = nil
	m.photos = nil
	m.mu.Unlock()

	m.views.SwitchTo(view.ManageAlbums)
	return m.FetchAlbums(ctx)
}

// CreateAlbum creates an album and reloads the list.
func (m *AlbumManager) CreateAlbum(ctx context.Context, name string) (album api.Album, err error) {
	logger := m.loggerWith(ctx, "CreateAlbum")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create album", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("album_id", album.ID).InfoContext(ctx, "album created")
	}()

	if m.isAttendee() {
		return api.Album{}, ErrNotAllowed
	}
	name = strings.TrimSpace(name)
	if name == "" {
		err = validationError("name", emptyAlbumName)
		m.notify(ui.NoticeError, emptyAlbumName)
		return api.Album{}, err
	}

	album, err = m.gateway.CreateAlbum(ctx, name)
	if err != nil {
		m.report(ctx, err, "")
		return api.Album{}, err
	}
	m.notify(ui.NoticeSuccess, fmt.Sprintf("Album %q created", album.Name))
	if fetchErr := m.FetchAlbums(ctx); fetchErr != nil {
		logger.WarnContext(ctx, "album list refresh failed", "error", fetchErr)
	}
	return album, nil
}

// UploadPhotos uploads files to the open album one at a time, stopping at the
// first failure. It returns how many files were uploaded.
func (m *AlbumManager) UploadPhotos(ctx context.Context, files []UploadFile) (uploaded int, err error) {
	album, ok := m.CurrentAlbum()
	if !ok {
		return 0, ErrNoAlbumOpen
	}

	logger := m.loggerWith(ctx, "UploadPhotos", "album_id", album.ID, "file_count", len(files))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "upload stopped", "error", err, "error_kind", ErrorKind(err), "uploaded", uploaded)
			return
		}
		logger.With("uploaded", uploaded).InfoContext(ctx, "upload finished")
	}()

	if len(files) == 0 {
		m.notify(ui.NoticeWarning, noFilesSelected)
		return 0, validationError("files", noFilesSelected)
	}

	m.uploadMu.Lock()
	defer m.uploadMu.Unlock()

	total := len(files)
	m.progress.Progress(0, total)
	defer m.progress.Done()

	for _, file := range files {
		if err = m.uploadOne(ctx, album.ID, file); err != nil {
			if api.IsUnauthorized(err) {
				m.expireSession(ctx)
				return uploaded, err
			}
			m.notify(ui.NoticeError, uploadFailed)
			return uploaded, err
		}
		uploaded++
		m.progress.Progress(uploaded, total)
	}

	m.notify(ui.NoticeSuccess, uploadSucceeded)
	if reloadErr := m.loadPhotos(ctx); reloadErr != nil {
		logger.WarnContext(ctx, "photo reload failed", "error", reloadErr)
	}
	return uploaded, nil
}

func (m *AlbumManager) uploadOne(ctx context.Context, albumID string, file UploadFile) error {
	if file.Open == nil {
		return fmt.Errorf("open %s: no content", file.Name)
	}
	content, err := file.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer content.Close()

	_, err = m.gateway.UploadPhoto(ctx, albumID, api.Upload{Name: file.Name, Content: content})
	return err
}

// ShareAlbum fetches the share links of an album and shows them.
func (m *AlbumManager) ShareAlbum(ctx context.Context, albumID string) error {
	user := m.User()
	if user.Username == "" {
		m.notify(ui.NoticeError, shareNeedsLogin)
		return ErrNotSignedIn
	}
	if user.IsAttendee() {
		return ErrNotAllowed
	}

	links, err := m.gateway.ShareLinks(ctx, user.Username, albumID)
	if err != nil {
		m.loggerWith(ctx, "ShareAlbum", "album_id", albumID).ErrorContext(ctx, "failed to get share links", "error", err, "error_kind", ErrorKind(err))
		m.report(ctx, err, "Error: ")
		return err
	}

	album, ok := m.findAlbum(albumID)
	if !ok {
		album = api.Album{ID: albumID, Name: Title(albumID)}
	}
	m.share.ShowShareLinks(album, links)
	return nil
}

// ToggleAlbumSelectMode enters or leaves album selection mode.
func (m *AlbumManager) ToggleAlbumSelectMode() (selection.Mode, error) {
	if m.isAttendee() {
		return selection.Browse, ErrNotAllowed
	}
	return m.albumSelection.ToggleMode(), nil
}

// ToggleAlbum flips the selection of one album.
func (m *AlbumManager) ToggleAlbum(albumID string) bool {
	return m.albumSelection.Toggle(albumID)
}

// DeleteSelectedAlbums confirms and deletes the selected albums.
func (m *AlbumManager) DeleteSelectedAlbums(ctx context.Context) (deleted int, err error) {
	if m.isAttendee() {
		return 0, ErrNotAllowed
	}

	logger := m.loggerWith(ctx, "DeleteSelectedAlbums", "selected", m.albumSelection.Count())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete albums", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	done, err := m.albumSelection.BatchDelete(ctx, m.confirmer, deleteAlbumsPrompt, func(ctx context.Context, ids []string) error {
		n, err := m.gateway.DeleteAlbums(ctx, ids)
		deleted = n
		return err
	})
	switch {
	case errors.Is(err, selection.ErrNothingSelected):
		m.notify(ui.NoticeWarning, noAlbumsSelected)
		return 0, err
	case err != nil:
		m.report(ctx, err, "Error: ")
		return 0, err
	case !done:
		return 0, nil
	}

	m.notify(ui.NoticeSuccess, fmt.Sprintf("Successfully deleted %d album(s)", deleted))
	logger.With("deleted", deleted).InfoContext(ctx, "albums deleted")
	if fetchErr := m.FetchAlbums(ctx); fetchErr != nil {
		logger.WarnContext(ctx, "album list refresh failed", "error", fetchErr)
	}
	return deleted, nil
}

// TogglePhotoSelectMode enters or leaves photo selection mode.
func (m *AlbumManager) TogglePhotoSelectMode() (selection.Mode, error) {
	if _, ok := m.CurrentAlbum(); !ok {
		return selection.Browse, ErrNoAlbumOpen
	}
	return m.photoSelection.ToggleMode(), nil
}

// TogglePhoto flips the selection of one photo.
func (m *AlbumManager) TogglePhoto(photoID string) bool {
	return m.photoSelection.Toggle(photoID)
}

// DeleteSelectedPhotos confirms and deletes the selected photos of the open album.
func (m *AlbumManager) DeleteSelectedPhotos(ctx context.Context) (deleted int, err error) {
	album, ok := m.CurrentAlbum()
	if !ok {
		return 0, ErrNoAlbumOpen
	}

	logger := m.loggerWith(ctx, "DeleteSelectedPhotos", "album_id", album.ID, "selected", m.photoSelection.Count())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete photos", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	done, err := m.photoSelection.BatchDelete(ctx, m.confirmer, deletePhotosPrompt, func(ctx context.Context, ids []string) error {
		n, err := m.gateway.DeletePhotos(ctx, album.ID, ids)
		deleted = n
		return err
	})
	switch {
	case errors.Is(err, selection.ErrNothingSelected):
		m.notify(ui.NoticeWarning, noPhotosSelected)
		return 0, err
	case err != nil:
		m.report(ctx, err, "Error: ")
		return 0, err
	case !done:
		return 0, nil
	}

	m.notify(ui.NoticeSuccess, fmt.Sprintf("Successfully deleted %d photo(s)", deleted))
	logger.With("deleted", deleted).InfoContext(ctx, "photos deleted")
	if reloadErr := m.loadPhotos(ctx); reloadErr != nil {
		logger.WarnContext(ctx, "photo reload failed", "error", reloadErr)
	}
	return deleted, nil
}

// ActivatePhoto handles a click on a photo tile: it toggles the tile in
// selection mode and opens the lightbox otherwise.
func (m *AlbumManager) ActivatePhoto(ctx context.Context, photoID string) error {
	if m.photoSelection.Selecting() {
		m.photoSelection.Toggle(photoID)
		return nil
	}
	if _, ok := m.findPhoto(photoID); !ok {
		return ErrNotFound
	}
	m.lightbox.Open(m.Photos(), photoID)
	return nil
}

// Logout clears the session and shows the login view.
func (m *AlbumManager) Logout(ctx context.Context) error {
	m.albumSelection.Exit()
	m.photoSelection.Exit()
	m.lightbox.Close()

	m.mu.Lock()
	m.user = session.Session{}
	m.albums = nil
	m.current = nil
	m.photos = nil
	m.mu.Unlock()

	err := m.session.Logout(ctx)
	m.views.SwitchTo(view.Login)
	m.loggerWith(ctx, "Logout").InfoContext(ctx, "signed out")
	return err
}

// report surfaces err. Rejected sessions end the session instead of showing
// a notice.
func (m *AlbumManager) report(ctx context.Context, err error, prefix string) {
	if api.IsUnauthorized(err) {
		m.expireSession(ctx)
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	m.notify(ui.NoticeError, prefix+err.Error())
}

func (m *AlbumManager) expireSession(ctx context.Context) {
	if err := m.Logout(ctx); err != nil {
		m.loggerWith(ctx, "ExpireSession").WarnContext(ctx, "failed to clear session", "error", err)
	}
}

func (m *AlbumManager) notify(kind ui.NoticeKind, message string) {
	if m.notifier != nil {
		m.notifier.Notify(ui.NewNotice(kind, message))
	}
}

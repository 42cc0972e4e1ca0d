package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/example/eventshare/internal/api"
	"github.com/example/eventshare/internal/collection"
	"github.com/example/eventshare/internal/lightbox"
	"github.com/example/eventshare/internal/logging"
	"github.com/example/eventshare/internal/session"
	"github.com/example/eventshare/internal/ui"
	"github.com/example/eventshare/internal/view"
)

// Defaults applied by NewEventGallery.
const (
	DefaultLoadingInterval = 1500 * time.Millisecond
	DefaultLoginPath       = "/login.html"
	DefaultSignupPath      = "/signup.html"
)

// EventGateway is the part of the backend the event gallery uses.
type EventGateway interface {
	GrantAccess(ctx context.Context, photographer, albumID string) error
	FindMyPhotos(ctx context.Context, photographer, albumID string) ([]api.Photo, error)
	EventPhotos(ctx context.Context, photographer, albumID string) ([]api.Photo, error)
	Download(ctx context.Context, key, filename string) (api.Download, error)
	DownloadZip(ctx context.Context, keys []string, filename string) (api.Download, error)
}

// EventGalleryDeps wires an EventGallery to its gateway and surface.
type EventGalleryDeps struct {
	Gateway         EventGateway
	Session         *session.Store
	Views           *view.Switcher
	Loading         ui.LoadingView
	Gallery         ui.GalleryView
	Photos          collection.Container
	Lightbox        lightbox.Display
	Scroller        lightbox.Scroller
	Notifier        ui.Notifier
	Confirmer       ui.Confirmer
	Navigator       ui.Navigator
	Saver           ui.Saver
	Logger          *slog.Logger
	LoadingInterval time.Duration
	LoginPath       string
	SignupPath      string
}

// EventGallery drives the event gallery page reached through a share link.
type EventGallery struct {
	gateway    EventGateway
	session    *session.Store
	views      *view.Switcher
	loading    ui.LoadingView
	gallery    ui.GalleryView
	notifier   ui.Notifier
	confirmer  ui.Confirmer
	navigator  ui.Navigator
	saver      ui.Saver
	logger     *slog.Logger
	interval   time.Duration
	loginPath  string
	signupPath string

	photoGrid *collection.Renderer
	lightbox  *lightbox.Navigator

	mu     sync.Mutex
	link   EventLink
	photos []api.Photo
}

// NewEventGallery constructs the controller for one page load.
func NewEventGallery(deps EventGalleryDeps) *EventGallery {
	g := &EventGallery{
		gateway:    deps.Gateway,
		session:    deps.Session,
		views:      deps.Views,
		loading:    deps.Loading,
		gallery:    deps.Gallery,
		notifier:   deps.Notifier,
		confirmer:  deps.Confirmer,
		navigator:  deps.Navigator,
		saver:      deps.Saver,
		logger:     logging.Default(deps.Logger),
		interval:   deps.LoadingInterval,
		loginPath:  deps.LoginPath,
		signupPath: deps.SignupPath,
		photoGrid:  collection.NewRenderer(deps.Photos),
		lightbox:   lightbox.New(deps.Lightbox, deps.Scroller),
	}
	if g.interval <= 0 {
		g.interval = DefaultLoadingInterval
	}
	if g.loginPath == "" {
		g.loginPath = DefaultLoginPath
	}
	if g.signupPath == "" {
		g.signupPath = DefaultSignupPath
	}
	return g
}

func (g *EventGallery) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return controllerLogger(ctx, g.logger, "EventGallery", operation, attrs...)
}

// Lightbox exposes the photo viewer for keyboard and touch input.
func (g *EventGallery) Lightbox() *lightbox.Navigator { return g.lightbox }

// Link returns the link passed to Init.
func (g *EventGallery) Link() EventLink {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.link
}

// Photos returns the photos currently shown.
func (g *EventGallery) Photos() []api.Photo {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]api.Photo(nil), g.photos...)
}

// Init loads the gallery for link. VIP links without a session show the
// guest view; the other outcomes end in the gallery view or, for malformed
// links, in the loading view's error state.
func (g *EventGallery) Init(ctx context.Context, link EventLink) (err error) {
	logger := g.loggerWith(ctx, "Init", "photographer", link.Photographer, "album_id", link.AlbumID, "link_type", link.Type)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "event gallery not loaded", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	g.mu.Lock()
	g.link = link
	g.photos = nil
	g.mu.Unlock()

	if !link.Complete() {
		g.fail(invalidEventLinkMessage)
		return ErrInvalidEventLink
	}
	g.gallery.SetTitle(Title(link.AlbumID))

	switch link.Type {
	case LinkVIP:
		if _, ok := g.session.GetToken(ctx); !ok {
			g.rememberLink(ctx)
			g.views.SwitchTo(view.Guest)
			logger.InfoContext(ctx, "guest view shown")
			return nil
		}
		return g.loadVIP(ctx, link)
	case LinkFull:
		photos, err := g.withLoading(LinkFull, func() ([]api.Photo, error) {
			return g.gateway.EventPhotos(ctx, link.Photographer, link.AlbumID)
		})
		return g.show(ctx, photos, err)
	default:
		g.fail(invalidLinkTypeMessage)
		return ErrInvalidLinkType
	}
}

func (g *EventGallery) loadVIP(ctx context.Context, link EventLink) error {
	photos, err := g.withLoading(LinkVIP, func() ([]api.Photo, error) {
		g.ensureAccess(ctx, link)
		return g.gateway.FindMyPhotos(ctx, link.Photographer, link.AlbumID)
	})
	if api.IsUnauthorized(err) {
		if clearErr := g.session.Clear(ctx); clearErr != nil {
			g.loggerWith(ctx, "Init").WarnContext(ctx, "failed to clear session", "error", clearErr)
		}
		g.rememberLink(ctx)
		g.views.SwitchTo(view.Guest)
		return nil
	}
	return g.show(ctx, photos, err)
}

// ensureAccess records the signed-in user as an attendee of the album.
// Failures only get logged; the face search decides what the user sees.
func (g *EventGallery) ensureAccess(ctx context.Context, link EventLink) {
	logger := g.loggerWith(ctx, "EnsureAccess")
	if err := g.gateway.GrantAccess(ctx, link.Photographer, link.AlbumID); err != nil {
		logger.WarnContext(ctx, "grant access failed", "error", err, "error_kind", ErrorKind(err))
		return
	}
	if err := g.session.ClearPendingAccess(ctx); err != nil {
		logger.WarnContext(ctx, "failed to clear pending access", "error", err)
	}
}

func (g *EventGallery) rememberLink(ctx context.Context) {
	link := g.Link()
	logger := g.loggerWith(ctx, "RememberLink")
	if err := g.session.SetPendingAccess(ctx, session.PendingAccess{Photographer: link.Photographer, AlbumID: link.AlbumID}); err != nil {
		logger.WarnContext(ctx, "failed to persist pending access", "error", err)
	}
	if err := g.session.SetPostLoginRedirect(ctx, link.String()); err != nil {
		logger.WarnContext(ctx, "failed to persist redirect", "error", err)
	}
}

func (g *EventGallery) show(ctx context.Context, photos []api.Photo, err error) error {
	g.views.SwitchTo(view.Gallery)
	if err != nil {
		g.gallery.ShowError(err.Error())
		g.photoGrid.Render(nil, emptyEventPhotos, collection.Actions{})
		return err
	}

	g.mu.Lock()
	g.photos = photos
	g.mu.Unlock()

	items := make([]collection.Item, 0, len(photos))
	for _, p := range photos {
		items = append(items, collection.Item{ID: p.ID, Title: p.Name, ImageURL: p.URL})
	}
	actions := collection.Actions{
		Primary:        g.activatePhoto,
		Secondary:      g.downloadFromTile,
		SecondaryLabel: "Download",
	}
	rendered := g.photoGrid.Render(items, emptyEventPhotos, actions)
	g.loggerWith(ctx, "Init").With("photo_count", rendered).InfoContext(ctx, "gallery shown")
	return nil
}

func (g *EventGallery) fail(message string) {
	g.views.SwitchTo(view.Loading)
	g.loading.ShowError(message)
}

// withLoading runs fetch while the loading view cycles through the messages
// of mode.
func (g *EventGallery) withLoading(mode string, fetch func() ([]api.Photo, error)) ([]api.Photo, error) {
	g.views.SwitchTo(view.Loading)
	anim := startLoadingAnimation(g.loading, loadingSequence(mode), g.interval)
	defer anim.Stop()
	return fetch()
}

type loadingAnimation struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func startLoadingAnimation(v ui.LoadingView, messages []string, interval time.Duration) *loadingAnimation {
	a := &loadingAnimation{stop: make(chan struct{}), done: make(chan struct{})}
	v.ShowLoading(messages[0])

	go func() {
		defer close(a.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		next := 1
		for {
			select {
			case <-a.stop:
				return
			case <-ticker.C:
				v.ShowLoading(messages[next%len(messages)])
				next++
			}
		}
	}()
	return a
}

// Stop ends the animation and waits for its goroutine. It is safe to call
// more than once.
func (a *loadingAnimation) Stop() {
	a.once.Do(func() { close(a.stop) })
	<-a.done
}

func (g *EventGallery) activatePhoto(ctx context.Context, photoID string) {
	if err := g.ActivatePhoto(ctx, photoID); err != nil {
		g.loggerWith(ctx, "ActivatePhoto", "photo_id", photoID).WarnContext(ctx, "photo activation failed",
			"error", err, "error_kind", ErrorKind(err))
	}
}

func (g *EventGallery) downloadFromTile(ctx context.Context, photoID string) {
	_, _ = g.DownloadPhoto(ctx, photoID)
}

// ActivatePhoto opens the lightbox on a photo.
func (g *EventGallery) ActivatePhoto(_ context.Context, photoID string) error {
	if _, ok := g.findPhoto(photoID); !ok {
		return ErrNotFound
	}
	g.lightbox.Open(g.Photos(), photoID)
	return nil
}

func (g *EventGallery) findPhoto(photoID string) (api.Photo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.photos {
		if p.ID == photoID {
			return p, true
		}
	}
	return api.Photo{}, false
}

// DownloadPhoto saves one photo through the backend download proxy and
// returns where it was stored.
func (g *EventGallery) DownloadPhoto(ctx context.Context, photoID string) (location string, err error) {
	photo, ok := g.findPhoto(photoID)
	if !ok {
		return "", ErrNotFound
	}
	name := photo.Name
	if name == "" {
		name = photo.ID
	}
	link := g.Link()

	logger := g.loggerWith(ctx, "DownloadPhoto", "photo_id", photo.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "download failed", "error", err, "error_kind", ErrorKind(err))
			g.notify(ui.NoticeError, fmt.Sprintf("Could not download %s.", name))
		}
	}()

	download, err := g.gateway.Download(ctx, api.PhotoKey(link.Photographer, link.AlbumID, photo.ID), name)
	if err != nil {
		return "", err
	}
	return g.save(ctx, logger, name, download)
}

// DownloadCurrent saves the photo shown in the lightbox.
func (g *EventGallery) DownloadCurrent(ctx context.Context) (string, error) {
	current, ok := g.lightbox.Current()
	if !ok {
		return "", ErrNotFound
	}
	return g.DownloadPhoto(ctx, current.Photo.ID)
}

// DownloadAll confirms and saves every shown photo as one ZIP archive. A
// declined confirmation returns an empty location and no error.
func (g *EventGallery) DownloadAll(ctx context.Context) (location string, err error) {
	photos := g.Photos()
	if len(photos) == 0 {
		g.notify(ui.NoticeWarning, noPhotosToDownload)
		return "", validationError("photos", noPhotosToDownload)
	}

	ok, err := g.confirmer.Confirm(ctx, downloadAllPrompt(len(photos)))
	if err != nil || !ok {
		return "", err
	}

	link := g.Link()
	logger := g.loggerWith(ctx, "DownloadAll", "photo_count", len(photos))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "archive download failed", "error", err, "error_kind", ErrorKind(err))
			g.notify(ui.NoticeError, errorMessage(err))
		}
	}()

	keys := make([]string, 0, len(photos))
	for _, p := range photos {
		keys = append(keys, api.PhotoKey(link.Photographer, link.AlbumID, p.ID))
	}
	filename := link.AlbumID + ".zip"
	download, err := g.gateway.DownloadZip(ctx, keys, filename)
	if err != nil {
		return "", err
	}
	return g.save(ctx, logger, filename, download)
}

func (g *EventGallery) save(ctx context.Context, logger *slog.Logger, filename string, download api.Download) (string, error) {
	defer download.Body.Close()
	if g.saver == nil {
		return "", errors.New("application: no download destination")
	}
	location, err := g.saver.Save(ctx, filename, download.Body, download.Size)
	if err != nil {
		return "", err
	}
	attrs := []any{"location", location}
	if download.Size >= 0 {
		attrs = append(attrs, "size", humanize.Bytes(uint64(download.Size)))
	}
	logger.InfoContext(ctx, "download saved", attrs...)
	return location, nil
}

// SignIn remembers the link and leaves for the login page.
func (g *EventGallery) SignIn(ctx context.Context) error {
	return g.leaveForAuth(ctx, g.loginPath)
}

// SignUp remembers the link and leaves for the sign-up page.
func (g *EventGallery) SignUp(ctx context.Context) error {
	return g.leaveForAuth(ctx, g.signupPath)
}

func (g *EventGallery) leaveForAuth(ctx context.Context, target string) error {
	if !g.Link().Complete() {
		return ErrInvalidEventLink
	}
	g.rememberLink(ctx)
	return g.navigator.Navigate(ctx, target)
}

func (g *EventGallery) notify(kind ui.NoticeKind, message string) {
	if g.notifier != nil {
		g.notifier.Notify(ui.NewNotice(kind, message))
	}
}

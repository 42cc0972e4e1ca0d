package application_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/example/eventshare/internal/api"
	"github.com/example/eventshare/internal/application"
	"github.com/example/eventshare/internal/logging"
	"github.com/example/eventshare/internal/persistence"
	"github.com/example/eventshare/internal/session"
	"github.com/example/eventshare/internal/testfixtures"
	"github.com/example/eventshare/internal/ui"
	"github.com/example/eventshare/internal/view"
)

type eventPage struct {
	gallery   *application.EventGallery
	backend   *testfixtures.Backend
	session   *session.Store
	panes     *testfixtures.Panes
	loading   *testfixtures.Loading
	header    *testfixtures.Gallery
	photos    *testfixtures.Container
	lightbox  *testfixtures.Lightbox
	notifier  *testfixtures.Notifier
	confirmer *testfixtures.Confirmer
	navigator *testfixtures.Navigator
	saver     *testfixtures.Saver
}

func newEventPage(t *testing.T, backend *testfixtures.Backend) *eventPage {
	t.Helper()

	store := session.New(persistence.NewMemoryStore(), logging.Discard())
	client := api.New(api.Options{BaseURL: backend.URL(), Tokens: store, Logger: logging.Discard()})
	p := &eventPage{
		backend:   backend,
		session:   store,
		panes:     testfixtures.NewPanes(),
		loading:   &testfixtures.Loading{},
		header:    &testfixtures.Gallery{},
		photos:    &testfixtures.Container{},
		lightbox:  &testfixtures.Lightbox{},
		notifier:  &testfixtures.Notifier{},
		confirmer: &testfixtures.Confirmer{Answer: true},
		navigator: &testfixtures.Navigator{},
		saver:     &testfixtures.Saver{},
	}
	p.gallery = application.NewEventGallery(application.EventGalleryDeps{
		Gateway:         client,
		Session:         store,
		Views:           view.NewSwitcher(p.panes.Registry(view.Loading, view.Guest, view.Gallery)),
		Loading:         p.loading,
		Gallery:         p.header,
		Photos:          p.photos,
		Lightbox:        p.lightbox,
		Scroller:        p.lightbox,
		Notifier:        p.notifier,
		Confirmer:       p.confirmer,
		Navigator:       p.navigator,
		Saver:           p.saver,
		Logger:          logging.Discard(),
		LoadingInterval: time.Hour,
	})
	return p
}

func (p *eventPage) signIn(t *testing.T, username string) {
	t.Helper()
	p.backend.AddUser(username, "pw", api.RoleAttendee)
	if err := p.session.SetSession(context.Background(), p.backend.IssueToken(username), session.Profile{Username: username, Role: api.RoleAttendee}); err != nil {
		t.Fatalf("SetSession returned error: %v", err)
	}
}

func (p *eventPage) visible(t *testing.T, want string) {
	t.Helper()
	if got := p.panes.Visible(); !reflect.DeepEqual(got, []string{want}) {
		t.Fatalf("expected only %q visible, got %v", want, got)
	}
}

func TestEventGallery_InvalidLinks(t *testing.T) {
	cases := []struct {
		name    string
		link    application.EventLink
		wantErr error
		message string
	}{
		{"missing album", application.EventLink{Photographer: "ana", Type: application.LinkVIP}, application.ErrInvalidEventLink, "Error: Invalid event link."},
		{"unknown type", application.EventLink{Photographer: "ana", AlbumID: "party", Type: "secret"}, application.ErrInvalidLinkType, "Error: Invalid link type specified."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := testfixtures.NewBackend(t)
			page := newEventPage(t, backend)

			err := page.gallery.Init(context.Background(), tc.link)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			page.visible(t, view.Loading)
			if got := page.loading.Errors(); !reflect.DeepEqual(got, []string{tc.message}) {
				t.Fatalf("unexpected loading errors %v", got)
			}
			if len(backend.Requests("")) != 0 {
				t.Fatalf("invalid links must not reach the backend")
			}
		})
	}
}

func TestEventGallery_VIPWithoutSessionShowsGuest(t *testing.T) {
	backend := testfixtures.NewBackend(t)
	page := newEventPage(t, backend)
	ctx := context.Background()
	link := application.EventLink{Photographer: "ana", AlbumID: "summer-party", Type: application.LinkVIP}

	if err := page.gallery.Init(ctx, link); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	page.visible(t, view.Guest)
	if got := page.header.Titles(); !reflect.DeepEqual(got, []string{"Summer Party"}) {
		t.Fatalf("unexpected titles %v", got)
	}
	pending, ok := page.session.PendingAccess(ctx)
	if !ok || pending.Photographer != "ana" || pending.AlbumID != "summer-party" {
		t.Fatalf("expected pending access persisted, got %#v", pending)
	}
	if len(backend.Requests("")) != 0 {
		t.Fatalf("guest view must not reach the backend")
	}

	if err := page.gallery.SignUp(ctx); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if got := page.navigator.Targets(); !reflect.DeepEqual(got, []string{application.DefaultSignupPath}) {
		t.Fatalf("unexpected navigation %v", got)
	}
	target, ok := page.session.TakePostLoginRedirect(ctx)
	if !ok || target != link.String() {
		t.Fatalf("expected redirect to the event link, got %q", target)
	}
}

func TestEventGallery_VIPWithSession(t *testing.T) {
	backend := testfixtures.NewBackend(t)
	backend.AddUser("ana", "pw", api.RolePhotographer)
	backend.AddAlbum("ana", "party", "Party", samplePhotos(3)...)
	backend.SetMatches("ana", "party",
		api.Photo{URL: "https://cdn.example/event_albums/ana/party/p1.jpg", Score: 0.91},
		api.Photo{URL: "https://cdn.example/event_albums/ana/party/p3.jpg", Score: 0.72},
	)
	page := newEventPage(t, backend)
	page.signIn(t, "bo")
	ctx := context.Background()
	_ = page.session.SetPendingAccess(ctx, session.PendingAccess{Photographer: "ana", AlbumID: "party"})

	if err := page.gallery.Init(ctx, application.EventLink{Photographer: "ana", AlbumID: "party", Type: application.LinkVIP}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	page.visible(t, view.Gallery)
	if got := backend.GrantedAlbums("bo"); !reflect.DeepEqual(got, []string{"ana/party"}) {
		t.Fatalf("expected access granted, got %v", got)
	}
	if _, ok := page.session.PendingAccess(ctx); ok {
		t.Fatalf("expected pending access cleared after grant")
	}
	if msgs := page.loading.Messages(); len(msgs) == 0 || msgs[0] != "Hang tight! We are locating your photos..." {
		t.Fatalf("expected vip loading messages, got %v", msgs)
	}

	units := page.photos.Units()
	if len(units) != 2 || units[0].Item.ID != "p1.jpg" || units[1].Item.ID != "p3.jpg" {
		t.Fatalf("unexpected matches rendered %#v", units)
	}
	if !units[0].HasSecondary() || units[0].Controls.SecondaryLabel != "Download" {
		t.Fatalf("expected download control on tiles")
	}
}

func TestEventGallery_VIPGrantFailureIsIgnored(t *testing.T) {
	backend := testfixtures.NewBackend(t)
	backend.SetMatches("ana", "party", api.Photo{URL: "https://cdn.example/p1.jpg"})
	backend.Fail(testfixtures.RouteGrantAccess, 0, http.StatusNotFound, "Album not found.")
	page := newEventPage(t, backend)
	page.signIn(t, "bo")
	ctx := context.Background()
	_ = page.session.SetPendingAccess(ctx, session.PendingAccess{Photographer: "ana", AlbumID: "party"})

	if err := page.gallery.Init(ctx, application.EventLink{Photographer: "ana", AlbumID: "party", Type: application.LinkVIP}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	page.visible(t, view.Gallery)
	if len(page.photos.Units()) != 1 {
		t.Fatalf("expected face search result despite grant failure")
	}
	if _, ok := page.session.PendingAccess(ctx); !ok {
		t.Fatalf("failed grant must keep pending access")
	}
	if len(page.notifier.Notices()) != 0 {
		t.Fatalf("grant failures must stay silent")
	}
}

func TestEventGallery_VIPExpiredSession(t *testing.T) {
	backend := testfixtures.NewBackend(t)
	backend.Fail(testfixtures.RouteFindMyPhotos, 0, http.StatusUnauthorized, "Token expired")
	page := newEventPage(t, backend)
	page.signIn(t, "bo")
	ctx := context.Background()

	if err := page.gallery.Init(ctx, application.EventLink{Photographer: "ana", AlbumID: "party", Type: application.LinkVIP}); err != nil {
		t.Fatalf("expected silent fallback to guest, got %v", err)
	}
	page.visible(t, view.Guest)
	if _, ok := page.session.GetToken(ctx); ok {
		t.Fatalf("expected token cleared")
	}
	if _, ok := page.session.PendingAccess(ctx); !ok {
		t.Fatalf("expected pending access persisted for after sign-in")
	}
}

func TestEventGallery_FullLink(t *testing.T) {
	backend := testfixtures.NewBackend(t)
	backend.AddUser("ana", "pw", api.RolePhotographer)
	backend.AddAlbum("ana", "party", "Party", samplePhotos(3)...)
	page := newEventPage(t, backend)
	ctx := context.Background()

	if err := page.gallery.Init(ctx, application.EventLink{Photographer: "ana", AlbumID: "party", Type: application.LinkFull}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	page.visible(t, view.Gallery)
	if len(page.photos.Units()) != 3 {
		t.Fatalf("expected 3 tiles, got %d", len(page.photos.Units()))
	}
	requests := backend.Requests(testfixtures.RouteEvent)
	if len(requests) != 1 || requests[0].Authorization != "" {
		t.Fatalf("expected one unauthenticated event request, got %#v", requests)
	}
	if msgs := page.loading.Messages(); msgs[0] != "Loading the full gallery..." {
		t.Fatalf("expected full loading messages, got %v", msgs)
	}

	if err := page.gallery.ActivatePhoto(ctx, "p3.jpg"); err != nil {
		t.Fatalf("ActivatePhoto returned error: %v", err)
	}
	shown, _ := page.lightbox.Last()
	if shown.Counter() != "3 of 3" || shown.HasNext {
		t.Fatalf("unexpected lightbox view %#v", shown)
	}
	if err := page.gallery.ActivatePhoto(ctx, "missing"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventGallery_FetchFailureShowsError(t *testing.T) {
	backend := testfixtures.NewBackend(t)
	backend.Fail(testfixtures.RouteEvent, 0, http.StatusInternalServerError, "Storage unavailable")
	page := newEventPage(t, backend)

	err := page.gallery.Init(context.Background(), application.EventLink{Photographer: "ana", AlbumID: "party", Type: application.LinkFull})
	if err == nil {
		t.Fatalf("expected fetch error")
	}
	page.visible(t, view.Gallery)
	if got := page.header.Errors(); !reflect.DeepEqual(got, []string{"Storage unavailable"}) {
		t.Fatalf("unexpected gallery errors %v", got)
	}
	if len(page.photos.Units()) != 0 || page.photos.Empty() == "" {
		t.Fatalf("expected empty collection")
	}
}

func TestEventGallery_Downloads(t *testing.T) {
	backend := testfixtures.NewBackend(t)
	backend.AddUser("ana", "pw", api.RolePhotographer)
	backend.AddAlbum("ana", "party", "Party", samplePhotos(2)...)
	page := newEventPage(t, backend)
	ctx := context.Background()

	if _, err := page.gallery.DownloadAll(ctx); err == nil {
		t.Fatalf("expected validation error before photos are loaded")
	}
	if got := page.notifier.Messages(ui.NoticeWarning); len(got) != 1 || got[0] != "There are no photos to download." {
		t.Fatalf("unexpected warnings %v", got)
	}

	if err := page.gallery.Init(ctx, application.EventLink{Photographer: "ana", AlbumID: "party", Type: application.LinkFull}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	page.photos.ClickSecondary(ctx, "p1.jpg")
	data, ok := page.saver.File("p1.jpg")
	if !ok || string(data) != testfixtures.PhotoContent(api.PhotoKey("ana", "party", "p1.jpg")) {
		t.Fatalf("unexpected download %q", data)
	}
	page.confirmer.Answer = false
	if location, err := page.gallery.DownloadAll(ctx); location != "" || err != nil {
		t.Fatalf("declined DownloadAll = %q, %v", location, err)
	}
	if len(backend.Requests(testfixtures.RouteDownloadZip)) != 0 {
		t.Fatalf("declined download must not reach the backend")
	}

	page.confirmer.Answer = true
	location, err := page.gallery.DownloadAll(ctx)
	if err != nil || location != "mem://party.zip" {
		t.Fatalf("DownloadAll = %q, %v", location, err)
	}
	archive, _ := page.saver.File("party.zip")
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("expected zip archive: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if !reflect.DeepEqual(names, []string{"p1.jpg", "p2.jpg"}) {
		t.Fatalf("unexpected archive entries %v", names)
	}
	entry, _ := zr.File[1].Open()
	content, _ := io.ReadAll(entry)
	_ = entry.Close()
	if string(content) != testfixtures.PhotoContent(api.PhotoKey("ana", "party", "p2.jpg")) {
		t.Fatalf("unexpected entry content %q", content)
	}
	if prompts := page.confirmer.Prompts(); len(prompts) != 2 {
		t.Fatalf("expected a confirmation per attempt, got %v", prompts)
	}
}

func TestEventGallery_DownloadFailures(t *testing.T) {
	backend := testfixtures.NewBackend(t)
	backend.AddUser("ana", "pw", api.RolePhotographer)
	backend.AddAlbum("ana", "party", "Party", samplePhotos(2)...)
	page := newEventPage(t, backend)
	ctx := context.Background()
	_ = page.gallery.Init(ctx, application.EventLink{Photographer: "ana", AlbumID: "party", Type: application.LinkFull})

	backend.Fail(testfixtures.RouteDownload, 0, http.StatusBadGateway, "upstream unavailable")
	if _, err := page.gallery.DownloadPhoto(ctx, "p2.jpg"); err == nil {
		t.Fatalf("expected download failure")
	}
	if got := page.notifier.Messages(ui.NoticeError); len(got) != 1 || got[0] != "Could not download p2.jpg." {
		t.Fatalf("unexpected error notices %v", got)
	}

	if _, err := page.gallery.DownloadCurrent(ctx); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without an open lightbox, got %v", err)
	}

	page.saver.Err = errors.New("disk full")
	backend.Fail(testfixtures.RouteDownloadZip, 0, http.StatusInternalServerError, "zip failed")
	if _, err := page.gallery.DownloadAll(ctx); err == nil {
		t.Fatalf("expected archive failure")
	}
	if got := page.notifier.Messages(ui.NoticeError); got[len(got)-1] != "Error: zip failed" {
		t.Fatalf("unexpected error notice %q", got[len(got)-1])
	}
}

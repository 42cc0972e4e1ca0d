package api_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/example/eventshare/internal/api"
	"github.com/example/eventshare/internal/logging"
	"github.com/example/eventshare/internal/testfixtures"
)

func newClient(backend *testfixtures.Backend, token string) *api.Client {
	seq := testfixtures.NewSequence("req")
	return api.New(api.Options{
		BaseURL:     backend.URL() + "/",
		FaceBaseURL: backend.URL(),
		Timeout:     5 * time.Second,
		Tokens:      api.TokenFunc(func(context.Context) string { return token }),
		Logger:      logging.Discard(),
		RequestID:   seq.Next,
	})
}

func photographerBackend(t *testing.T) (*testfixtures.Backend, string) {
	t.Helper()
	backend := testfixtures.NewBackend(t)
	backend.AddUser("ana", "secret", api.RolePhotographer)
	return backend, backend.IssueToken("ana")
}

func TestClient_Headers(t *testing.T) {
	backend, token := photographerBackend(t)
	ctx := context.Background()

	if _, err := newClient(backend, token).ListAlbums(ctx); err != nil {
		t.Fatalf("ListAlbums returned error: %v", err)
	}
	if _, err := newClient(backend, "").EventPhotos(ctx, "ana", "party"); err != nil {
		t.Fatalf("EventPhotos returned error: %v", err)
	}

	albums := backend.Requests(testfixtures.RouteAlbums)
	if len(albums) != 1 || albums[0].Authorization != "Bearer "+token {
		t.Fatalf("expected bearer header, got %#v", albums)
	}
	if albums[0].RequestID != "req-1" {
		t.Fatalf("expected request id req-1, got %q", albums[0].RequestID)
	}

	event := backend.Requests(testfixtures.RouteEvent)
	if len(event) != 1 || event[0].Authorization != "" {
		t.Fatalf("expected no authorization header for public endpoint, got %#v", event)
	}
}

func TestClient_EventPhotosNeverSendsToken(t *testing.T) {
	backend, token := photographerBackend(t)

	if _, err := newClient(backend, token).EventPhotos(context.Background(), "ana", "party"); err != nil {
		t.Fatalf("EventPhotos returned error: %v", err)
	}
	if got := backend.Requests(testfixtures.RouteEvent)[0].Authorization; got != "" {
		t.Fatalf("expected no authorization header, got %q", got)
	}
}

func TestClient_ErrorShape(t *testing.T) {
	tests := []struct {
		name    string
		inject  func(b *testfixtures.Backend)
		status  int
		message string
		code    string
	}{
		{
			name:    "error key",
			inject:  func(b *testfixtures.Backend) { b.Fail(testfixtures.RouteAlbums, 0, http.StatusInternalServerError, "Could not retrieve albums.") },
			status:  http.StatusInternalServerError,
			message: "Could not retrieve albums.",
		},
		{
			name: "message key and code",
			inject: func(b *testfixtures.Backend) {
				b.FailRaw(testfixtures.RouteAlbums, 0, http.StatusNotFound, `{"message":"gone","code":"reference_photo_missing"}`)
			},
			status:  http.StatusNotFound,
			message: "gone",
			code:    "reference_photo_missing",
		},
		{
			name:    "malformed body falls back",
			inject:  func(b *testfixtures.Backend) { b.FailRaw(testfixtures.RouteAlbums, 0, http.StatusBadGateway, "<html>oops</html>") },
			status:  http.StatusBadGateway,
			message: "Failed to fetch albums",
		},
		{
			name:    "empty body falls back",
			inject:  func(b *testfixtures.Backend) { b.FailRaw(testfixtures.RouteAlbums, 0, http.StatusServiceUnavailable, "") },
			status:  http.StatusServiceUnavailable,
			message: "Failed to fetch albums",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, token := photographerBackend(t)
			tt.inject(backend)

			_, err := newClient(backend, token).ListAlbums(context.Background())
			var apiErr *api.Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *api.Error, got %T %v", err, err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.message || apiErr.Code != tt.code {
				t.Fatalf("unexpected error: %#v", apiErr)
			}
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	backend, token := photographerBackend(t)
	client := newClient(backend, token)
	backend.Server.Close()

	_, err := client.ListAlbums(context.Background())
	if !api.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if err.Error() != api.NetworkErrorMessage {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("expected transport cause to be wrapped")
	}
}

func TestClient_VerifyAndLogin(t *testing.T) {
	backend, token := photographerBackend(t)
	backend.SetReferencePhoto("ana", "https://cdn.example.com/ana.jpg")
	ctx := context.Background()

	result, err := newClient(backend, token).Verify(ctx)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !result.Valid || result.Username != "ana" || result.Role != api.RolePhotographer || result.RefPhotoURL == "" {
		t.Fatalf("unexpected verify result: %#v", result)
	}

	_, err = newClient(backend, "stale").Verify(ctx)
	if !api.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}

	login, err := newClient(backend, "").Login(ctx, "ana", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if login.Token == "" || login.Role != api.RolePhotographer {
		t.Fatalf("unexpected login result: %#v", login)
	}
	if got := backend.Requests(testfixtures.RouteLogin)[0].Authorization; got != "" {
		t.Fatalf("login must not send a bearer header, got %q", got)
	}

	_, err = newClient(backend, "").Login(ctx, "ana", "wrong")
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("expected Invalid credentials, got %v", err)
	}
}

func TestClient_AlbumLifecycle(t *testing.T) {
	backend, token := photographerBackend(t)
	client := newClient(backend, token)
	ctx := context.Background()

	created, err := client.CreateAlbum(ctx, "Summer Party")
	if err != nil {
		t.Fatalf("CreateAlbum returned error: %v", err)
	}
	if created.ID != "summer-party" || created.Name != "Summer Party" {
		t.Fatalf("unexpected album: %#v", created)
	}

	for _, name := range []string{"a.jpg", "b.jpg"} {
		res, err := client.UploadPhoto(ctx, created.ID, api.Upload{Name: "/tmp/" + name, Content: strings.NewReader("data-" + name)})
		if err != nil {
			t.Fatalf("UploadPhoto(%s) returned error: %v", name, err)
		}
		if !res.Success || res.Name != name {
			t.Fatalf("unexpected upload result: %#v", res)
		}
	}
	upload := backend.Requests(testfixtures.RouteUpload)[0]
	if upload.Form["album"] != "summer-party" || upload.Files["file"] != "a.jpg:data-a.jpg" {
		t.Fatalf("unexpected multipart payload: %#v", upload)
	}

	albums, err := client.ListAlbums(ctx)
	if err != nil {
		t.Fatalf("ListAlbums returned error: %v", err)
	}
	if len(albums) != 1 || albums[0].PhotoCount != 2 || albums[0].Cover == "" {
		t.Fatalf("unexpected albums: %#v", albums)
	}

	photos, err := client.ListPhotos(ctx, created.ID)
	if err != nil || len(photos) != 2 {
		t.Fatalf("ListPhotos = %#v, %v", photos, err)
	}

	deleted, err := client.DeletePhotos(ctx, created.ID, []string{photos[0].ID})
	if err != nil || deleted != 1 {
		t.Fatalf("DeletePhotos = %d, %v", deleted, err)
	}
	if got := backend.Requests(testfixtures.RouteDeletePhotos)[0].JSON["photo_ids"]; got == nil {
		t.Fatalf("expected photo_ids in request body")
	}

	deleted, err = client.DeleteAlbums(ctx, []string{created.ID})
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteAlbums = %d, %v", deleted, err)
	}
	if ids := backend.AlbumIDs("ana"); len(ids) != 0 {
		t.Fatalf("expected albums to be deleted, got %v", ids)
	}
}

func TestClient_DeleteCountFallsBackToRequested(t *testing.T) {
	backend, token := photographerBackend(t)
	backend.FailRaw(testfixtures.RouteDeleteAlbums, 0, http.StatusOK, `{}`)

	deleted, err := newClient(backend, token).DeleteAlbums(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("DeleteAlbums returned error: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected requested count 2, got %d", deleted)
	}
}

func TestClient_UploadReadFailure(t *testing.T) {
	backend, token := photographerBackend(t)
	backend.AddAlbum("ana", "party", "Party")

	_, err := newClient(backend, token).UploadPhoto(context.Background(), "party", api.Upload{Name: "broken.jpg", Content: failingReader{}})
	if err == nil {
		t.Fatalf("expected upload to fail when the file cannot be read")
	}
	if photos := backend.Photos("ana", "party"); len(photos) != 0 {
		t.Fatalf("expected no stored photo, got %#v", photos)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestClient_EventEndpoints(t *testing.T) {
	backend := testfixtures.NewBackend(t)
	backend.AddUser("ana", "secret", api.RolePhotographer)
	backend.AddUser("bo", "pw", api.RoleVIPAttendee)
	backend.AddAlbum("ana", "summer-party", "Summer Party",
		api.Photo{ID: "1.jpg", URL: backend.PhotoURL("ana", "summer-party", "1.jpg"), Name: "1.jpg"},
	)
	backend.SetMatches("ana", "summer-party", api.Photo{URL: "https://cdn.example.com/x/7.jpg?sig=1", Score: 0.9})
	ctx := context.Background()

	photographer := newClient(backend, backend.IssueToken("ana"))
	links, err := photographer.ShareLinks(ctx, "ana", "summer-party")
	if err != nil {
		t.Fatalf("ShareLinks returned error: %v", err)
	}
	if !strings.HasSuffix(links.VIP, "&type=vip") || !strings.HasSuffix(links.Full, "&type=full") {
		t.Fatalf("unexpected links: %#v", links)
	}

	attendee := newClient(backend, backend.IssueToken("bo"))
	if err := attendee.GrantAccess(ctx, "ana", "summer-party"); err != nil {
		t.Fatalf("GrantAccess returned error: %v", err)
	}
	if granted := backend.GrantedAlbums("bo"); len(granted) != 1 || granted[0] != "ana/summer-party" {
		t.Fatalf("unexpected grants: %v", granted)
	}

	matches, err := attendee.FindMyPhotos(ctx, "ana", "summer-party")
	if err != nil {
		t.Fatalf("FindMyPhotos returned error: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "7.jpg" || matches[0].Name != "7.jpg" || matches[0].Score != 0.9 {
		t.Fatalf("unexpected matches: %#v", matches)
	}

	faces, err := attendee.FindSimilarFaces(ctx, api.EmbeddingFile("ana", "summer-party"), api.Upload{Name: "me.jpg", Content: strings.NewReader("face")})
	if err != nil {
		t.Fatalf("FindSimilarFaces returned error: %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("expected one face match, got %#v", faces)
	}
	if got := backend.Requests(testfixtures.RouteSimilarFaces)[0].Form["embedding_file"]; got != "ana-summer-party_embeddings.json" {
		t.Fatalf("unexpected embedding file %q", got)
	}
}

func TestClient_Downloads(t *testing.T) {
	backend, token := photographerBackend(t)
	client := newClient(backend, token)
	ctx := context.Background()
	key := api.PhotoKey("ana", "party", "1.jpg")

	single, err := client.Download(ctx, key, "1.jpg")
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	body, _ := io.ReadAll(single.Body)
	_ = single.Body.Close()
	if string(body) != testfixtures.PhotoContent(key) {
		t.Fatalf("unexpected body %q", body)
	}

	archive, err := client.DownloadZip(ctx, []string{key, api.PhotoKey("ana", "party", "2.jpg")}, "party.zip")
	if err != nil {
		t.Fatalf("DownloadZip returned error: %v", err)
	}
	payload, _ := io.ReadAll(archive.Body)
	_ = archive.Body.Close()

	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	if len(zr.File) != 2 || zr.File[0].Name != "1.jpg" {
		t.Fatalf("unexpected zip entries: %d", len(zr.File))
	}
}

func TestClient_CheckAlbumPassword(t *testing.T) {
	backend, _ := photographerBackend(t)
	backend.AddAlbum("ana", "party", "Party")
	backend.SetAlbumPassword("ana", "party", "letmein")
	client := newClient(backend, "")
	ctx := context.Background()

	if err := client.CheckAlbumPassword(ctx, "party", "letmein"); err != nil {
		t.Fatalf("expected password to be accepted, got %v", err)
	}
	if err := client.CheckAlbumPassword(ctx, "party", "nope"); !api.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestClient_SignupAndReferencePhoto(t *testing.T) {
	backend := testfixtures.NewBackend(t)
	ctx := context.Background()

	msg, err := newClient(backend, "").Signup(ctx, "cy", "pw", api.Upload{Name: "me.jpg", Content: strings.NewReader("me")})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if msg != "User registered successfully!" {
		t.Fatalf("unexpected message %q", msg)
	}

	_, err = newClient(backend, "").Signup(ctx, "cy", "pw", api.Upload{Name: "me.jpg", Content: strings.NewReader("me")})
	if !api.IsStatus(err, http.StatusConflict) {
		t.Fatalf("expected conflict on duplicate signup, got %v", err)
	}

	client := newClient(backend, backend.IssueToken("cy"))
	if err := client.UpdateReferencePhoto(ctx, api.Upload{Name: "new.jpg", Content: strings.NewReader("new")}); err != nil {
		t.Fatalf("UpdateReferencePhoto returned error: %v", err)
	}
	verify, err := client.Verify(ctx)
	if err != nil || !strings.HasSuffix(verify.RefPhotoURL, "/updated") {
		t.Fatalf("expected updated reference photo, got %#v %v", verify, err)
	}
}
